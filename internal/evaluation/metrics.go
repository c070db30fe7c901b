package evaluation

import (
	"fmt"
	"math"

	"github.com/gkum4/vital-signs-decision-tree/internal/models"
)

type ClassificationMetrics struct {
	Accuracy          float64                              `json:"accuracy" yaml:"accuracy"`
	BalancedAccuracy  float64                              `json:"balanced_accuracy" yaml:"balanced_accuracy"`
	MacroPrecision    float64                              `json:"macro_precision" yaml:"macro_precision"`
	MacroRecall       float64                              `json:"macro_recall" yaml:"macro_recall"`
	MacroF1           float64                              `json:"macro_f1" yaml:"macro_f1"`
	WeightedPrecision float64                              `json:"weighted_precision" yaml:"weighted_precision"`
	WeightedRecall    float64                              `json:"weighted_recall" yaml:"weighted_recall"`
	WeightedF1        float64                              `json:"weighted_f1" yaml:"weighted_f1"`
	PerClassMetrics   map[models.SeverityClass]ClassMetrics `json:"per_class_metrics" yaml:"per_class_metrics"`
	ConfusionMatrix   [][]int                              `json:"confusion_matrix" yaml:"confusion_matrix"`
	NumSamples        int                                  `json:"num_samples" yaml:"num_samples"`
}

type ClassMetrics struct {
	Precision   float64 `json:"precision" yaml:"precision"`
	Recall      float64 `json:"recall" yaml:"recall"`
	F1Score     float64 `json:"f1_score" yaml:"f1_score"`
	Specificity float64 `json:"specificity" yaml:"specificity"`
	Support     int     `json:"support" yaml:"support"`
}

// CalculateMetrics compares yPred against yTrue over every severity class.
// Rows of the confusion matrix are true classes and columns are predicted
// classes, both in models.Severities() order. Macro averages only count
// classes that occur in yTrue.
func CalculateMetrics(yTrue, yPred []models.SeverityClass) (*ClassificationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("label count mismatch: %d true vs %d predicted", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("no samples to evaluate")
	}

	classes := models.Severities()
	confusionMatrix := buildConfusionMatrix(yTrue, yPred, classes)

	perClass := make(map[models.SeverityClass]ClassMetrics, len(classes))
	var macroPrec, macroRec, macroF1 float64
	var weightedPrec, weightedRec, weightedF1 float64
	present := 0

	for i, class := range classes {
		tp := confusionMatrix[i][i]
		fp, fn, tn := 0, 0, 0
		for j := range classes {
			if j == i {
				continue
			}
			fp += confusionMatrix[j][i]
			fn += confusionMatrix[i][j]
			for k := range classes {
				if k != i {
					tn += confusionMatrix[j][k]
				}
			}
		}

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		f1 := safeDivide(2*precision*recall, precision+recall)
		support := tp + fn

		perClass[class] = ClassMetrics{
			Precision:   precision,
			Recall:      recall,
			F1Score:     f1,
			Specificity: safeDivide(float64(tn), float64(tn+fp)),
			Support:     support,
		}

		if support == 0 {
			continue
		}
		present++
		macroPrec += precision
		macroRec += recall
		macroF1 += f1
		weightedPrec += precision * float64(support)
		weightedRec += recall * float64(support)
		weightedF1 += f1 * float64(support)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	n := float64(len(yTrue))

	return &ClassificationMetrics{
		Accuracy:          float64(correct) / n,
		BalancedAccuracy:  safeDivide(macroRec, float64(present)),
		MacroPrecision:    safeDivide(macroPrec, float64(present)),
		MacroRecall:       safeDivide(macroRec, float64(present)),
		MacroF1:           safeDivide(macroF1, float64(present)),
		WeightedPrecision: weightedPrec / n,
		WeightedRecall:    weightedRec / n,
		WeightedF1:        weightedF1 / n,
		PerClassMetrics:   perClass,
		ConfusionMatrix:   confusionMatrix,
		NumSamples:        len(yTrue),
	}, nil
}

func buildConfusionMatrix(yTrue, yPred []models.SeverityClass, classes []models.SeverityClass) [][]int {
	matrix := make([][]int, len(classes))
	for i := range matrix {
		matrix[i] = make([]int, len(classes))
	}

	classToIdx := make(map[models.SeverityClass]int, len(classes))
	for i, class := range classes {
		classToIdx[class] = i
	}

	for i := range yTrue {
		trueIdx, trueOk := classToIdx[yTrue[i]]
		predIdx, predOk := classToIdx[yPred[i]]
		if trueOk && predOk {
			matrix[trueIdx][predIdx]++
		}
	}

	return matrix
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}

func (m *ClassificationMetrics) FormatMetrics() string {
	result := fmt.Sprintf("Accuracy: %.4f\n", m.Accuracy)
	result += fmt.Sprintf("Balanced Accuracy: %.4f\n", m.BalancedAccuracy)
	result += fmt.Sprintf("Macro Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		m.MacroPrecision, m.MacroRecall, m.MacroF1)
	result += fmt.Sprintf("Weighted Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		m.WeightedPrecision, m.WeightedRecall, m.WeightedF1)
	return result
}
