package experiment

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gkum4/vital-signs-decision-tree/internal/config"
	"github.com/gkum4/vital-signs-decision-tree/internal/evaluation"
	"github.com/gkum4/vital-signs-decision-tree/internal/models"
)

// ExperimentRunner compares attribute-ranking policies on seeded
// stratified holdout splits of one training set.
type ExperimentRunner struct {
	Config     config.ExperimentConfig
	Attributes []string
}

func NewRunner(cfg config.Config) *ExperimentRunner {
	return &ExperimentRunner{
		Config:     cfg.Experiment,
		Attributes: cfg.Model.Attributes,
	}
}

type ExperimentResult struct {
	Ranking        string
	Holdout        float64
	Seed           int64
	TrainSize      int
	TestSize       int
	Accuracy       float64
	Precision      float64
	Recall         float64
	F1Score        float64
	Depth          int
	Leaves         int
	RootAttribute  string
	TrainingTimeMs int64
}

// RunAllExperiments evaluates every ranking x holdout x seed combination.
func (r *ExperimentRunner) RunAllExperiments(instances []models.Instance) ([]ExperimentResult, error) {
	var results []ExperimentResult

	for _, ranking := range r.Config.Rankings {
		for _, holdout := range r.Config.HoldoutSizes {
			for _, seed := range r.Config.Seeds {
				result, err := r.evaluate(instances, ranking, holdout, seed)
				if err != nil {
					return nil, fmt.Errorf("ranking=%s holdout=%.2f seed=%d: %w", ranking, holdout, seed, err)
				}
				slog.Debug("experiment finished",
					"ranking", ranking, "holdout", holdout, "seed", seed, "accuracy", result.Accuracy)
				results = append(results, result)
			}
		}
	}

	return results, nil
}

func (r *ExperimentRunner) evaluate(instances []models.Instance, ranking string, holdout float64, seed int64) (ExperimentResult, error) {
	result := ExperimentResult{Ranking: ranking, Holdout: holdout, Seed: seed}

	splitter := evaluation.NewTrainTestSplitter(holdout, seed, true)
	train, test, err := splitter.StratifiedSplit(instances)
	if err != nil {
		return result, err
	}
	result.TrainSize = len(train)
	result.TestSize = len(test)

	model, err := models.CreateModel(models.ModelConfig{
		Algorithm:  "id3",
		Ranking:    ranking,
		Attributes: r.Attributes,
	})
	if err != nil {
		return result, err
	}
	dt := model.(*models.DecisionTree)

	startTime := time.Now()
	if err := dt.Fit(train); err != nil {
		return result, err
	}
	result.TrainingTimeMs = time.Since(startTime).Milliseconds()

	predictions, err := dt.Predict(evaluation.Unlabeled(test))
	if err != nil {
		return result, err
	}

	yTrue, yPred := evaluation.PairByID(predictions, test)
	metrics, err := evaluation.CalculateMetrics(yTrue, yPred)
	if err != nil {
		return result, err
	}

	result.Accuracy = metrics.Accuracy
	result.Precision = metrics.MacroPrecision
	result.Recall = metrics.MacroRecall
	result.F1Score = metrics.MacroF1
	result.Depth = dt.Tree.Depth()
	result.Leaves = dt.Tree.LeafCount()
	if in, ok := dt.Tree.Root.(*models.Internal); ok {
		result.RootAttribute = in.Attribute.String()
	} else {
		result.RootAttribute = models.Class.String()
	}

	return result, nil
}

// Summary averages accuracy per ranking, in the order rankings first appear.
func Summary(results []ExperimentResult) []RankingSummary {
	var order []string
	sums := make(map[string]*RankingSummary)
	for _, res := range results {
		s, ok := sums[res.Ranking]
		if !ok {
			s = &RankingSummary{Ranking: res.Ranking}
			sums[res.Ranking] = s
			order = append(order, res.Ranking)
		}
		s.Runs++
		s.MeanAccuracy += res.Accuracy
		s.MeanF1 += res.F1Score
	}

	out := make([]RankingSummary, 0, len(order))
	for _, name := range order {
		s := sums[name]
		s.MeanAccuracy /= float64(s.Runs)
		s.MeanF1 /= float64(s.Runs)
		out = append(out, *s)
	}
	return out
}

type RankingSummary struct {
	Ranking      string
	Runs         int
	MeanAccuracy float64
	MeanF1       float64
}

func (r *ExperimentRunner) ExportResults(results []ExperimentResult, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	writer.Write([]string{
		"Ranking", "Holdout", "Seed", "TrainSize", "TestSize",
		"Accuracy", "Precision", "Recall", "F1Score",
		"Depth", "Leaves", "RootAttribute", "TrainingTimeMs",
	})

	for _, result := range results {
		writer.Write([]string{
			result.Ranking,
			fmt.Sprintf("%.2f", result.Holdout),
			fmt.Sprintf("%d", result.Seed),
			fmt.Sprintf("%d", result.TrainSize),
			fmt.Sprintf("%d", result.TestSize),
			fmt.Sprintf("%.4f", result.Accuracy),
			fmt.Sprintf("%.4f", result.Precision),
			fmt.Sprintf("%.4f", result.Recall),
			fmt.Sprintf("%.4f", result.F1Score),
			fmt.Sprintf("%d", result.Depth),
			fmt.Sprintf("%d", result.Leaves),
			result.RootAttribute,
			fmt.Sprintf("%d", result.TrainingTimeMs),
		})
	}

	writer.Flush()
	return writer.Error()
}
