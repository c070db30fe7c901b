package evaluation

import (
	"github.com/gkum4/vital-signs-decision-tree/internal/models"
)

// LookupResult is the outcome of scoring predictions by id against a
// labeled reference set.
type LookupResult struct {
	Correct  int     `yaml:"correct"`
	Total    int     `yaml:"total"`
	Missing  int     `yaml:"missing"`
	Accuracy float64 `yaml:"accuracy"`
}

// LookupAccuracy scores each prediction by finding its id in reference.
// Ids absent from reference count as wrong. The drivers pass the training
// set as reference, which is how the vital-signs harness has always been
// scored; see evaluation.holdout for an honest estimate.
func LookupAccuracy(predictions []models.Prediction, reference []models.Instance) LookupResult {
	labels := indexByID(reference)

	res := LookupResult{Total: len(predictions)}
	for _, p := range predictions {
		class, ok := labels[p.ID]
		if !ok {
			res.Missing++
			continue
		}
		if class == p.Class {
			res.Correct++
		}
	}
	res.Accuracy = safeDivide(float64(res.Correct), float64(res.Total))
	return res
}

// PairByID lines predictions up with reference labels, skipping ids the
// reference does not know. The result feeds CalculateMetrics.
func PairByID(predictions []models.Prediction, reference []models.Instance) (yTrue, yPred []models.SeverityClass) {
	labels := indexByID(reference)
	for _, p := range predictions {
		class, ok := labels[p.ID]
		if !ok {
			continue
		}
		yTrue = append(yTrue, class)
		yPred = append(yPred, p.Class)
	}
	return yTrue, yPred
}

func indexByID(instances []models.Instance) map[int]models.SeverityClass {
	labels := make(map[int]models.SeverityClass, len(instances))
	for _, inst := range instances {
		if _, ok := labels[inst.ID]; !ok {
			labels[inst.ID] = inst.Class
		}
	}
	return labels
}
