package models

import (
	"fmt"
)

type ModelConfig struct {
	Algorithm  string
	Ranking    string
	Attributes []string
}

func CreateModel(config ModelConfig) (Model, error) {
	switch config.Algorithm {
	case "", "id3", "tree":
		ranking, err := ParseRanking(config.Ranking)
		if err != nil {
			return nil, err
		}

		var attrs []Attribute
		for _, name := range config.Attributes {
			a, err := ParseAttribute(name)
			if err != nil {
				return nil, err
			}
			if !a.IsContinuous() {
				return nil, fmt.Errorf("%w: %s", ErrNotContinuous, a)
			}
			attrs = append(attrs, a)
		}

		return NewDecisionTree(Builder{Ranking: ranking, Attributes: attrs}), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func DefaultConfig() ModelConfig {
	return ModelConfig{
		Algorithm: "id3",
		Ranking:   RankAscendingGain.String(),
	}
}
