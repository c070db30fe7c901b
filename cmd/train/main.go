package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gkum4/vital-signs-decision-tree/internal/config"
	"github.com/gkum4/vital-signs-decision-tree/internal/data"
	"github.com/gkum4/vital-signs-decision-tree/internal/evaluation"
	"github.com/gkum4/vital-signs-decision-tree/internal/experiment"
	"github.com/gkum4/vital-signs-decision-tree/internal/logging"
	"github.com/gkum4/vital-signs-decision-tree/internal/models"
	"github.com/gkum4/vital-signs-decision-tree/internal/persistence"
	"github.com/gkum4/vital-signs-decision-tree/internal/report"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML configuration file")
	trainFile := flag.String("train", "", "Path to labelled training file")
	testFile := flag.String("test", "", "Path to unlabelled test file")
	ranking := flag.String("ranking", "", "Attribute ranking (ascending|descending)")
	holdout := flag.Float64("holdout", 0, "Fraction held out for honest metrics (0 disables)")
	seed := flag.Int64("seed", 1, "Random seed for the holdout split")
	outputDir := flag.String("output", "", "Directory for run bundles")
	runExperiment := flag.Bool("experiment", false, "Compare rankings over holdout splits instead")
	logLevel := flag.String("log-level", "", "Log level (debug|info|warn|error)")
	noColor := flag.Bool("no-color", false, "Disable colored output")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fatal("failed to load config", err)
	}

	// flags only override what was passed explicitly
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "train":
			cfg.Data.TrainPath = *trainFile
		case "test":
			cfg.Data.TestPath = *testFile
		case "ranking":
			cfg.Model.Ranking = *ranking
		case "holdout":
			cfg.Evaluation.Holdout = *holdout
		case "seed":
			cfg.Evaluation.Seed = *seed
		case "output":
			cfg.Output.Dir = *outputDir
		case "log-level":
			cfg.Log.Level = *logLevel
		case "no-color":
			cfg.Output.NoColor = *noColor
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	logging.Init(cfg.Log.Format, logging.ParseLevel(cfg.Log.Level))
	printer := report.NewPrinter(os.Stdout, !cfg.Output.NoColor)

	training, err := loadTraining(cfg.Data.TrainPath)
	if err != nil {
		fatal("failed to load training data", err, "path", cfg.Data.TrainPath)
	}
	slog.Info("training data loaded", "path", cfg.Data.TrainPath, "instances", len(training))

	if *runExperiment {
		runExperiments(cfg, training)
		return
	}

	runSingleTraining(cfg, training, printer)
}

func fatal(msg string, err error, args ...any) {
	slog.Error(msg, append(args, "err", err)...)
	os.Exit(1)
}

func loadTraining(path string) ([]models.Instance, error) {
	instances, err := data.NewCSVReader(path).LoadTraining()
	if err != nil {
		return nil, err
	}
	if err := data.NewDataValidator().ValidateTraining(instances); err != nil {
		return nil, err
	}
	return instances, nil
}

func newTree(cfg config.Config) *models.DecisionTree {
	model, err := models.CreateModel(cfg.ModelConfig())
	if err != nil {
		fatal("failed to create model", err)
	}
	return model.(*models.DecisionTree)
}

func runSingleTraining(cfg config.Config, training []models.Instance, printer *report.Printer) {
	dt := newTree(cfg)

	startTime := time.Now()
	if err := dt.Fit(training); err != nil {
		fatal("training failed", err)
	}
	trainingTime := time.Since(startTime)
	slog.Info("tree built",
		"ranking", dt.Builder.Ranking,
		"depth", dt.Tree.Depth(),
		"leaves", dt.Tree.LeafCount(),
		"duration", trainingTime)

	printer.Tree(dt.Tree)

	var predictions []models.Prediction
	err := data.ProcessTestFile(cfg.Data.TestPath, cfg.Data.BatchSize, func(batch []models.UnlabeledInstance) error {
		out, err := dt.Predict(batch)
		if err != nil {
			return err
		}
		predictions = append(predictions, out...)
		slog.Debug("batch classified", "size", len(batch), "total", len(predictions))
		return nil
	})
	if err != nil {
		fatal("classification failed", err, "path", cfg.Data.TestPath)
	}
	slog.Info("test data classified", "path", cfg.Data.TestPath, "predictions", len(predictions))

	lookup := evaluation.LookupAccuracy(predictions, training)
	printer.Lookup(lookup)
	if lookup.Missing > 0 {
		slog.Warn("predicted ids missing from training set", "missing", lookup.Missing)
	}

	bundle := persistence.NewRunBundle(dt)
	bundle.Metadata.TrainPath = cfg.Data.TrainPath
	bundle.Metadata.TestPath = cfg.Data.TestPath
	bundle.Metadata.TrainingTime = trainingTime
	bundle.Metadata.TrainingSize = len(training)
	bundle.Metadata.Lookup = &lookup
	bundle.DescribeTree(dt.Tree)
	bundle.AddPredictions(predictions)

	if cfg.Evaluation.Holdout > 0 {
		metrics, err := holdoutMetrics(cfg, training)
		if err != nil {
			slog.Error("holdout evaluation failed", "err", err)
		} else {
			printer.Metrics(fmt.Sprintf("Holdout (%.0f%%, seed %d)", cfg.Evaluation.Holdout*100, cfg.Evaluation.Seed), metrics)
			bundle.Metadata.Holdout = metrics
		}
	}

	runDir, err := bundle.Save(cfg.Output.Dir)
	if err != nil {
		fatal("failed to save run", err)
	}
	slog.Info("run saved", "id", bundle.ID, "dir", runDir)
}

// holdoutMetrics trains a second tree on a stratified split and scores it
// on the part it never saw.
func holdoutMetrics(cfg config.Config, training []models.Instance) (*evaluation.ClassificationMetrics, error) {
	splitter := evaluation.NewTrainTestSplitter(cfg.Evaluation.Holdout, cfg.Evaluation.Seed, true)
	train, test, err := splitter.StratifiedSplit(training)
	if err != nil {
		return nil, err
	}

	dt := newTree(cfg)
	if err := dt.Fit(train); err != nil {
		return nil, err
	}
	predictions, err := dt.Predict(evaluation.Unlabeled(test))
	if err != nil {
		return nil, err
	}

	yTrue, yPred := evaluation.PairByID(predictions, test)
	return evaluation.CalculateMetrics(yTrue, yPred)
}

func runExperiments(cfg config.Config, training []models.Instance) {
	slog.Info("running ranking comparison",
		"rankings", cfg.Experiment.Rankings,
		"holdout_sizes", cfg.Experiment.HoldoutSizes,
		"seeds", cfg.Experiment.Seeds)

	runner := experiment.NewRunner(cfg)
	results, err := runner.RunAllExperiments(training)
	if err != nil {
		fatal("experiment failed", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	expDir := filepath.Join(cfg.Output.Dir, fmt.Sprintf("experiment_%s", timestamp))
	if err := os.MkdirAll(expDir, 0o755); err != nil {
		fatal("failed to create experiment directory", err)
	}

	resultsFile := filepath.Join(expDir, "experiment_results.csv")
	if err := runner.ExportResults(results, resultsFile); err != nil {
		slog.Error("failed to export results", "err", err)
	} else {
		slog.Info("experiment results saved", "path", resultsFile)
	}

	fmt.Printf("\nExperiment Summary:\n")
	fmt.Printf("Total experiments: %d\n", len(results))
	for _, s := range experiment.Summary(results) {
		fmt.Printf("  %-10s runs %-3d mean accuracy %.4f  mean F1 %.4f\n",
			s.Ranking, s.Runs, s.MeanAccuracy, s.MeanF1)
	}
}
