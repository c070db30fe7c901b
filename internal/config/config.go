package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gkum4/vital-signs-decision-tree/internal/models"
	"gopkg.in/yaml.v3"
)

// Config holds all settings for the vital-signs tools.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Model      ModelConfig      `yaml:"model"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
	Experiment ExperimentConfig `yaml:"experiment"`
}

type DataConfig struct {
	TrainPath string `yaml:"train"`
	TestPath  string `yaml:"test"`
	BatchSize int    `yaml:"batch_size"`
}

type ModelConfig struct {
	Algorithm  string   `yaml:"algorithm"`
	Ranking    string   `yaml:"ranking"`    // "ascending" (default) or "descending"
	Attributes []string `yaml:"attributes"` // empty means all continuous attributes
}

type EvaluationConfig struct {
	Holdout float64 `yaml:"holdout"` // 0 disables the holdout report
	Seed    int64   `yaml:"seed"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	NoColor bool   `yaml:"no_color"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

type ExperimentConfig struct {
	Rankings     []string  `yaml:"rankings"`
	HoldoutSizes []float64 `yaml:"holdout_sizes"`
	Seeds        []int64   `yaml:"seeds"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Data: DataConfig{
			TrainPath: "data/treino_sinais_vitais_com_label.txt",
			TestPath:  "data/treino_sinais_vitais_sem_label.txt",
			BatchSize: 1000,
		},
		Model: ModelConfig{
			Algorithm: "id3",
			Ranking:   "ascending",
		},
		Evaluation: EvaluationConfig{
			Seed: 1,
		},
		Output: OutputConfig{
			Dir: "runs",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Experiment: ExperimentConfig{
			Rankings:     []string{"ascending", "descending"},
			HoldoutSizes: []float64{0.2, 0.3},
			Seeds:        []int64{1, 2, 3},
		},
	}
}

// Load starts from Default, overlays the YAML file at path (skipped when
// path is empty) and then VITALTREE_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Data.TrainPath = getenv("VITALTREE_TRAIN", cfg.Data.TrainPath)
	cfg.Data.TestPath = getenv("VITALTREE_TEST", cfg.Data.TestPath)
	cfg.Data.BatchSize = getenvInt("VITALTREE_BATCH_SIZE", cfg.Data.BatchSize)
	cfg.Model.Ranking = getenv("VITALTREE_RANKING", cfg.Model.Ranking)
	if v := os.Getenv("VITALTREE_ATTRIBUTES"); v != "" {
		cfg.Model.Attributes = splitList(v)
	}
	cfg.Evaluation.Holdout = getenvFloat("VITALTREE_HOLDOUT", cfg.Evaluation.Holdout)
	cfg.Evaluation.Seed = int64(getenvInt("VITALTREE_SEED", int(cfg.Evaluation.Seed)))
	cfg.Output.Dir = getenv("VITALTREE_OUTPUT_DIR", cfg.Output.Dir)
	cfg.Output.NoColor = getenvBool("VITALTREE_NO_COLOR", cfg.Output.NoColor)
	cfg.Log.Level = getenv("VITALTREE_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv("VITALTREE_LOG_FORMAT", cfg.Log.Format)
}

// Validate rejects settings the tools cannot act on.
func (c Config) Validate() error {
	if _, err := models.ParseRanking(c.Model.Ranking); err != nil {
		return fmt.Errorf("model.ranking: %w", err)
	}
	for _, name := range c.Model.Attributes {
		a, err := models.ParseAttribute(name)
		if err != nil {
			return fmt.Errorf("model.attributes: %w", err)
		}
		if !a.IsContinuous() {
			return fmt.Errorf("model.attributes: %w: %s", models.ErrNotContinuous, a)
		}
	}
	if c.Evaluation.Holdout < 0 || c.Evaluation.Holdout >= 1 {
		return fmt.Errorf("evaluation.holdout must be in [0, 1), got %v", c.Evaluation.Holdout)
	}
	for _, r := range c.Experiment.Rankings {
		if _, err := models.ParseRanking(r); err != nil {
			return fmt.Errorf("experiment.rankings: %w", err)
		}
	}
	for _, h := range c.Experiment.HoldoutSizes {
		if h <= 0 || h >= 1 {
			return fmt.Errorf("experiment.holdout_sizes must be in (0, 1), got %v", h)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// ModelConfig converts the model section for models.CreateModel.
func (c Config) ModelConfig() models.ModelConfig {
	return models.ModelConfig{
		Algorithm:  c.Model.Algorithm,
		Ranking:    c.Model.Ranking,
		Attributes: c.Model.Attributes,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
