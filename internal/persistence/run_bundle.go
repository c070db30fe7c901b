package persistence

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gkum4/vital-signs-decision-tree/internal/evaluation"
	"github.com/gkum4/vital-signs-decision-tree/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// RunBundle records one train-and-classify run. The tree itself is not
// stored; only its shape is summarised.
type RunBundle struct {
	ID          string             `yaml:"id"`
	CreatedAt   time.Time          `yaml:"created_at"`
	Metadata    RunMetadata        `yaml:"metadata"`
	Predictions []PredictionRecord `yaml:"predictions"`
}

type RunMetadata struct {
	ModelName     string                            `yaml:"model"`
	TrainPath     string                            `yaml:"train"`
	TestPath      string                            `yaml:"test"`
	Parameters    map[string]any                    `yaml:"parameters"`
	TrainingTime  time.Duration                     `yaml:"training_time"`
	TrainingSize  int                               `yaml:"training_size"`
	RootAttribute string                            `yaml:"root_attribute"`
	Depth         int                               `yaml:"depth"`
	Leaves        int                               `yaml:"leaves"`
	Lookup        *evaluation.LookupResult          `yaml:"lookup,omitempty"`
	Holdout       *evaluation.ClassificationMetrics `yaml:"holdout,omitempty"`
}

type PredictionRecord struct {
	ID    int `yaml:"id"`
	Class int `yaml:"class"`
}

func NewRunBundle(model models.Model) *RunBundle {
	return &RunBundle{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Metadata: RunMetadata{
			ModelName:  model.GetName(),
			Parameters: model.GetParams(),
		},
	}
}

// DescribeTree fills in the tree summary fields.
func (rb *RunBundle) DescribeTree(tree *models.Tree) {
	rb.Metadata.Depth = tree.Depth()
	rb.Metadata.Leaves = tree.LeafCount()
	switch root := tree.Root.(type) {
	case *models.Internal:
		rb.Metadata.RootAttribute = root.Attribute.String()
	case *models.Leaf:
		rb.Metadata.RootAttribute = models.Class.String()
	}
}

func (rb *RunBundle) AddPredictions(predictions []models.Prediction) {
	for _, p := range predictions {
		rb.Predictions = append(rb.Predictions, PredictionRecord{ID: p.ID, Class: p.Class.Code()})
	}
}

// Save writes run.yaml and predictions.csv into dir/<id>/ and returns that
// directory.
func (rb *RunBundle) Save(dir string) (string, error) {
	runDir := filepath.Join(dir, rb.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	raw, err := yaml.Marshal(rb)
	if err != nil {
		return "", fmt.Errorf("failed to encode bundle: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "run.yaml"), raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write bundle: %w", err)
	}

	if err := rb.SavePredictions(filepath.Join(runDir, "predictions.csv")); err != nil {
		return "", err
	}
	return runDir, nil
}

func (rb *RunBundle) SavePredictions(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Write([]string{"id", "class"})
	for _, p := range rb.Predictions {
		writer.Write([]string{strconv.Itoa(p.ID), strconv.Itoa(p.Class)})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to write predictions: %w", err)
	}
	return nil
}

func LoadRunBundle(filename string) (*RunBundle, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	var bundle RunBundle
	if err := yaml.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}
	return &bundle, nil
}
