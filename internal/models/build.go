package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var ErrEmptyTrainingSet = errors.New("training set is empty")

// Ranking decides which attribute a node splits on, given each attribute's
// best-split gain.
type Ranking int

const (
	// RankAscendingGain splits on the attribute with the smallest gain.
	// This is the default and the behaviour existing trees were built with.
	RankAscendingGain Ranking = iota
	// RankDescendingGain splits on the attribute with the largest gain,
	// as textbook ID3 does.
	RankDescendingGain
)

func (r Ranking) String() string {
	switch r {
	case RankAscendingGain:
		return "ascending"
	case RankDescendingGain:
		return "descending"
	default:
		return fmt.Sprintf("Ranking(%d)", int(r))
	}
}

func ParseRanking(s string) (Ranking, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascending", "min", "min-gain":
		return RankAscendingGain, nil
	case "descending", "max", "max-gain":
		return RankDescendingGain, nil
	default:
		return 0, fmt.Errorf("unknown ranking: %q", s)
	}
}

// prefers reports whether gain a should replace the current pick b.
// Equal gains keep the earlier attribute.
func (r Ranking) prefers(a, b float64) bool {
	if r == RankDescendingGain {
		return a > b
	}
	return a < b
}

// Builder induces a tree from labeled instances.
type Builder struct {
	Ranking Ranking
	// Attributes restricts the attributes available at the root. Empty
	// means all continuous attributes.
	Attributes []Attribute
}

// Build induces a tree with the default Builder.
func Build(instances []Instance) (*Tree, error) {
	return Builder{}.Build(instances)
}

func (b Builder) Build(instances []Instance) (*Tree, error) {
	if len(instances) == 0 {
		return nil, ErrEmptyTrainingSet
	}

	attrs := ContinuousAttributes()
	if len(b.Attributes) > 0 {
		for _, a := range b.Attributes {
			if !a.IsContinuous() {
				return nil, fmt.Errorf("%w: %s", ErrNotContinuous, a)
			}
		}
		attrs = slices.Clone(b.Attributes)
	}

	return &Tree{Root: b.grow(instances, attrs, nil, Branch{})}, nil
}

func (b Builder) grow(instances []Instance, attrs []Attribute, parent []Instance, incoming Branch) Node {
	if len(instances) == 0 {
		return &Leaf{Incoming: incoming, Answer: majority(parent)}
	}

	if class, ok := pureClass(instances); ok {
		return &Leaf{Incoming: incoming, Answer: class}
	}

	if len(attrs) == 0 {
		return &Leaf{Incoming: incoming, Answer: majority(instances)}
	}

	chosen := 0
	split := BestSplit(instances, attrs[0])
	for i := 1; i < len(attrs); i++ {
		s := BestSplit(instances, attrs[i])
		if b.Ranking.prefers(s.Gain, split.Gain) {
			chosen, split = i, s
		}
	}
	attr := attrs[chosen]

	remaining := make([]Attribute, 0, len(attrs)-1)
	remaining = append(remaining, attrs[:chosen]...)
	remaining = append(remaining, attrs[chosen+1:]...)

	var left, right []Instance
	for _, inst := range instances {
		if inst.Value(attr).LessThanOrEqual(split.Threshold) {
			left = append(left, inst)
		} else {
			right = append(right, inst)
		}
	}

	return &Internal{
		Incoming:  incoming,
		Attribute: attr,
		Threshold: split.Threshold,
		Left:      b.grow(left, slices.Clone(remaining), instances, LessOrEqual(split.Threshold)),
		Right:     b.grow(right, slices.Clone(remaining), instances, Greater(split.Threshold)),
	}
}

func pureClass(instances []Instance) (SeverityClass, bool) {
	first := instances[0].Class
	for _, inst := range instances[1:] {
		if inst.Class != first {
			return 0, false
		}
	}
	return first, true
}

// majority returns the most frequent class, preferring the earliest class
// in Severities() on ties. An empty slice yields SeverityOne.
func majority(instances []Instance) SeverityClass {
	counts := countClasses(instances)

	maxCount := 0
	result := SeverityOne
	for _, class := range Severities() {
		if count := counts[class.index()]; count > maxCount {
			maxCount = count
			result = class
		}
	}
	return result
}
