package commander

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gkum4/vital-signs-decision-tree/internal/config"
	"github.com/gkum4/vital-signs-decision-tree/internal/data"
	"github.com/gkum4/vital-signs-decision-tree/internal/evaluation"
	"github.com/gkum4/vital-signs-decision-tree/internal/jobs"
	"github.com/gkum4/vital-signs-decision-tree/internal/models"
	"github.com/gkum4/vital-signs-decision-tree/internal/persistence"
	"github.com/gkum4/vital-signs-decision-tree/internal/report"
)

var (
	errNoTraining = errors.New("no training data loaded (use: load <file>)")
	errNoTest     = errors.New("no test data loaded (use: load-test <file>)")
	errNoModel    = errors.New("no tree trained (use: train [ranking])")
	errNoRun      = errors.New("nothing classified yet (use: classify)")
)

// Commander is the interactive shell. It keeps one training set, one test
// set and the latest tree in memory.
type Commander struct {
	cfg        config.Config
	in         io.Reader
	out        io.Writer
	printer    *report.Printer
	jobManager *jobs.Manager

	training     []models.Instance
	trainPath    string
	test         []models.UnlabeledInstance
	testPath     string
	model        *models.DecisionTree
	trainingTime time.Duration
	predictions  []models.Prediction
	lookup       *evaluation.LookupResult

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
}

func NewCommander(cfg config.Config) *Commander {
	return newCommander(cfg, os.Stdin, os.Stdout)
}

func newCommander(cfg config.Config, in io.Reader, out io.Writer) *Commander {
	c := &Commander{
		cfg:        cfg,
		in:         in,
		out:        out,
		printer:    report.NewPrinter(out, !cfg.Output.NoColor),
		jobManager: jobs.NewManager(),
	}
	colors := []*color.Color{
		color.New(color.FgGreen),
		color.New(color.FgRed),
		color.New(color.FgYellow),
		color.New(color.FgCyan),
	}
	if cfg.Output.NoColor {
		for _, col := range colors {
			col.DisableColor()
		}
	}
	c.green = colors[0].SprintFunc()
	c.red = colors[1].SprintFunc()
	c.yellow = colors[2].SprintFunc()
	c.cyan = colors[3].SprintFunc()
	return c
}

func (c *Commander) Start() {
	c.printWelcome()
	scanner := bufio.NewScanner(c.in)

	for {
		fmt.Fprint(c.out, c.yellow("\nvitals> "))
		if !scanner.Scan() {
			if scanner.Err() != nil {
				fmt.Fprintf(c.out, "\n%s Scanner error: %v\n", c.red("✗"), scanner.Err())
			}
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		if !c.ExecuteCommand(strings.ToLower(parts[0]), parts[1:]) {
			break
		}
	}
}

// ExecuteCommand runs one shell command and reports whether the shell
// should keep reading.
func (c *Commander) ExecuteCommand(command string, args []string) bool {
	var err error
	switch command {
	case "help", "h":
		c.showHelp()
	case "load":
		err = c.loadTraining(argOr(args, c.cfg.Data.TrainPath))
	case "load-test":
		err = c.loadTest(argOr(args, c.cfg.Data.TestPath))
	case "info":
		err = c.showDataInfo()
	case "train":
		err = c.train(argOr(args, c.cfg.Model.Ranking))
	case "tree":
		err = c.showTree()
	case "classify":
		err = c.classify()
	case "accuracy":
		err = c.accuracy()
	case "save":
		err = c.save(argOr(args, c.cfg.Output.Dir))
	case "history":
		err = c.history(args)
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, c.cyan("Bye."))
		return false
	default:
		fmt.Fprintf(c.out, "%s Unknown command: %s (type 'help')\n", c.red("✗"), command)
	}

	if err != nil {
		fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
	}
	return true
}

func argOr(args []string, fallback string) string {
	if len(args) > 0 {
		return args[0]
	}
	return fallback
}

func (c *Commander) printWelcome() {
	fmt.Fprintln(c.out, c.cyan("Vital signs decision tree"))
	fmt.Fprintln(c.out, "Type 'help' for the list of commands.")
}

func (c *Commander) showHelp() {
	fmt.Fprintln(c.out, c.cyan("Commands:"))
	help := [][2]string{
		{"load [file]", "load the labelled training file"},
		{"load-test [file]", "load the unlabelled test file"},
		{"info", "show training set statistics"},
		{"train [ranking]", "build the tree (ascending | descending)"},
		{"tree", "print the tree level by level"},
		{"classify", "classify the test set"},
		{"accuracy", "score predictions against the training labels"},
		{"save [dir]", "write the run bundle and predictions"},
		{"history [id]", "list runs, or show the log of one"},
		{"quit", "leave the shell"},
	}
	for _, h := range help {
		fmt.Fprintf(c.out, "  %-18s %s\n", c.yellow(h[0]), h[1])
	}
}

func (c *Commander) loadTraining(filename string) error {
	_, err := c.jobManager.Track("load", filename, func(job *jobs.Job) (any, error) {
		instances, err := data.NewCSVReader(filename).LoadTraining()
		if err != nil {
			return nil, err
		}
		if err := data.NewDataValidator().ValidateTraining(instances); err != nil {
			return nil, err
		}
		job.AddLog(fmt.Sprintf("loaded %d labelled instances", len(instances)))

		c.training = instances
		c.trainPath = filename
		if c.model != nil {
			c.model.Reset()
		}
		c.predictions = nil
		c.lookup = nil
		return len(instances), nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s Loaded %d training instances from %s\n", c.green("✓"), len(c.training), filename)
	return nil
}

func (c *Commander) loadTest(filename string) error {
	_, err := c.jobManager.Track("load-test", filename, func(job *jobs.Job) (any, error) {
		instances, err := data.NewCSVReader(filename).LoadTest()
		if err != nil {
			return nil, err
		}
		if err := data.NewDataValidator().ValidateTest(instances); err != nil {
			return nil, err
		}
		job.AddLog(fmt.Sprintf("loaded %d unlabelled instances", len(instances)))

		c.test = instances
		c.testPath = filename
		c.predictions = nil
		c.lookup = nil
		return len(instances), nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s Loaded %d test instances from %s\n", c.green("✓"), len(c.test), filename)
	return nil
}

func (c *Commander) showDataInfo() error {
	if c.training == nil {
		return errNoTraining
	}
	c.printer.Stats(data.NewDataValidator().GetDatasetStats(c.training))
	if c.test != nil {
		fmt.Fprintf(c.out, "Test instances: %d (%s)\n", len(c.test), c.testPath)
	}
	return nil
}

func (c *Commander) train(ranking string) error {
	if c.training == nil {
		return errNoTraining
	}

	modelCfg := c.cfg.ModelConfig()
	modelCfg.Ranking = ranking
	model, err := models.CreateModel(modelCfg)
	if err != nil {
		return err
	}
	dt := model.(*models.DecisionTree)

	_, err = c.jobManager.Track("train", dt.Builder.Ranking.String(), func(job *jobs.Job) (any, error) {
		start := time.Now()
		if err := dt.Fit(c.training); err != nil {
			return nil, err
		}
		c.trainingTime = time.Since(start)
		job.AddLog(fmt.Sprintf("depth %d, %d leaves in %v", dt.Tree.Depth(), dt.Tree.LeafCount(), c.trainingTime))
		return dt.Tree, nil
	})
	if err != nil {
		return err
	}

	c.model = dt
	c.predictions = nil
	c.lookup = nil
	slog.Debug("tree built", "ranking", dt.Builder.Ranking, "depth", dt.Tree.Depth())
	fmt.Fprintf(c.out, "%s Built tree (%s ranking): depth %d, %d leaves, %v\n",
		c.green("✓"), dt.Builder.Ranking, dt.Tree.Depth(), dt.Tree.LeafCount(), c.trainingTime)
	return nil
}

// trained reports whether a tree exists for the current training set.
func (c *Commander) trained() bool {
	return c.model != nil && c.model.Tree != nil
}

func (c *Commander) showTree() error {
	if !c.trained() {
		return errNoModel
	}
	c.printer.Tree(c.model.Tree)
	return nil
}

func (c *Commander) classify() error {
	if !c.trained() {
		return errNoModel
	}
	if c.test == nil {
		return errNoTest
	}

	_, err := c.jobManager.Track("classify", c.testPath, func(job *jobs.Job) (any, error) {
		predictions, err := c.model.Predict(c.test)
		if err != nil {
			return nil, err
		}
		job.AddLog(fmt.Sprintf("classified %d instances", len(predictions)))
		c.predictions = predictions
		c.lookup = nil
		return len(predictions), nil
	})
	if err != nil {
		return err
	}
	c.printer.Predictions(c.predictions)
	return nil
}

func (c *Commander) accuracy() error {
	if c.predictions == nil {
		return errNoRun
	}
	res := evaluation.LookupAccuracy(c.predictions, c.training)
	c.lookup = &res
	c.printer.Lookup(res)
	return nil
}

func (c *Commander) save(dir string) error {
	if c.predictions == nil {
		return errNoRun
	}

	bundle := persistence.NewRunBundle(c.model)
	bundle.Metadata.TrainPath = c.trainPath
	bundle.Metadata.TestPath = c.testPath
	bundle.Metadata.TrainingTime = c.trainingTime
	bundle.Metadata.TrainingSize = len(c.training)
	bundle.Metadata.Lookup = c.lookup
	bundle.DescribeTree(c.model.Tree)
	bundle.AddPredictions(c.predictions)

	job, err := c.jobManager.Track("save", dir, func(job *jobs.Job) (any, error) {
		runDir, err := bundle.Save(dir)
		if err != nil {
			return nil, err
		}
		job.AddLog("wrote " + runDir)
		return runDir, nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s Run saved to %s\n", c.green("✓"), job.Result)
	return nil
}

func (c *Commander) history(args []string) error {
	if len(args) > 0 {
		job, err := c.jobManager.FindJob(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s %s %s\n", c.cyan(job.ID), job.Type, job.GetStatus())
		for _, line := range job.GetLogs() {
			fmt.Fprintln(c.out, "  "+line)
		}
		if job.Error != nil {
			fmt.Fprintf(c.out, "  %s\n", c.red(job.Error.Error()))
		}
		return nil
	}

	list := c.jobManager.ListJobs()
	if len(list) == 0 {
		fmt.Fprintln(c.out, "No runs yet.")
		return nil
	}
	for _, job := range list {
		status := string(job.GetStatus())
		if job.GetStatus() == jobs.JobFailed {
			status = c.red(status)
		} else {
			status = c.green(status)
		}
		fmt.Fprintf(c.out, "%s  %-9s %-10s %-8v %s\n",
			job.ID[:8], job.Type, status, job.Duration().Round(time.Millisecond), job.Description)
	}
	return nil
}
