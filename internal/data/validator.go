package data

import (
	"errors"
	"fmt"

	"github.com/gkum4/vital-signs-decision-tree/internal/models"
	"github.com/shopspring/decimal"
)

var ErrEmptyDataset = errors.New("dataset is empty")

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateTraining(instances []models.Instance) error {
	if len(instances) == 0 {
		return ErrEmptyDataset
	}

	seen := make(map[int]int, len(instances))
	for i, inst := range instances {
		if prev, ok := seen[inst.ID]; ok {
			return fmt.Errorf("duplicate id %d at records %d and %d", inst.ID, prev, i)
		}
		seen[inst.ID] = i

		if !inst.Class.Valid() {
			return fmt.Errorf("record %d: %w: %d", i, models.ErrUnknownSeverity, inst.Class.Code())
		}
	}

	return nil
}

func (dv *DataValidator) ValidateTest(instances []models.UnlabeledInstance) error {
	if len(instances) == 0 {
		return ErrEmptyDataset
	}

	seen := make(map[int]int, len(instances))
	for i, inst := range instances {
		if prev, ok := seen[inst.ID]; ok {
			return fmt.Errorf("duplicate id %d at records %d and %d", inst.ID, prev, i)
		}
		seen[inst.ID] = i
	}

	return nil
}

type AttributeStats struct {
	Attribute models.Attribute
	Min       decimal.Decimal
	Max       decimal.Decimal
	Mean      decimal.Decimal
}

type ClassCount struct {
	Class models.SeverityClass
	Count int
}

type DatasetStats struct {
	Samples           int
	ClassDistribution []ClassCount
	Attributes        []AttributeStats
}

// GetDatasetStats summarises instances. Classes and attributes come out in
// canonical order; classes with no instances are still listed.
func (dv *DataValidator) GetDatasetStats(instances []models.Instance) DatasetStats {
	stats := DatasetStats{Samples: len(instances)}

	counts := make(map[models.SeverityClass]int)
	for _, inst := range instances {
		counts[inst.Class]++
	}
	for _, class := range models.Severities() {
		stats.ClassDistribution = append(stats.ClassDistribution, ClassCount{Class: class, Count: counts[class]})
	}

	if len(instances) == 0 {
		return stats
	}

	for _, attr := range models.ContinuousAttributes() {
		values := make([]decimal.Decimal, len(instances))
		for i, inst := range instances {
			values[i] = inst.Value(attr)
		}
		stats.Attributes = append(stats.Attributes, AttributeStats{
			Attribute: attr,
			Min:       findMin(values),
			Max:       findMax(values),
			Mean:      calculateMean(values),
		})
	}

	return stats
}

func findMin(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Min(values[0], values[1:]...)
}

func findMax(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Max(values[0], values[1:]...)
}

func calculateMean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values))))
}
