// Package config loads the benchmark settings file into explicit structs.
// Every field has a statically declared default; the TOML file and then the
// MQMBENCH_* environment overlay on top of those defaults, resolved once at
// load time. The resulting value is passed down into the pipeline — there is
// no ambient settings global.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config is the root benchmark configuration.
type Config struct {
	Data     DataConfig     `toml:"data"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Database DatabaseConfig `toml:"database"`
	Report   ReportConfig   `toml:"report"`
}

// DataConfig locates the annotation inputs and result outputs.
type DataConfig struct {
	AnnotationsDir string `toml:"annotations_dir" envconfig:"MQMBENCH_ANNOTATIONS_DIR"`
	OutputDir      string `toml:"output_dir" envconfig:"MQMBENCH_OUTPUT_DIR"`
	// TiersFile optionally overrides the built-in resource tier map with a
	// YAML file mapping tier name → language codes.
	TiersFile string `toml:"tiers_file" envconfig:"MQMBENCH_TIERS_FILE"`
}

// MetricsConfig selects which metrics run and carries one sub-record per
// metric that needs options. Absent sub-records mean built-in defaults.
type MetricsConfig struct {
	// Run lists the metrics to compute. Valid names: bleu, chrf,
	// bertscore, comet, xcomet.
	Run      []string `toml:"run"`
	RunGemba bool     `toml:"run_gemba" envconfig:"MQMBENCH_RUN_GEMBA"`

	BERTScore ModelConfig `toml:"bertscore"`
	Comet     ModelConfig `toml:"comet"`
	XComet    ModelConfig `toml:"xcomet"`
	Gemba     GembaConfig `toml:"gemba"`
}

// ModelConfig configures a model-backed metric served over HTTP.
type ModelConfig struct {
	Model     string `toml:"model"`
	Endpoint  string `toml:"endpoint"`
	BatchSize int    `toml:"batch_size"`
	GPUs      int    `toml:"gpus"`
}

// GembaConfig configures the GEMBA-MQM LLM judge.
type GembaConfig struct {
	// Model has no default: GEMBA is unusable without an explicit model
	// identifier, and requesting it without one is a configuration error.
	Model     string `toml:"model" envconfig:"MQMBENCH_GEMBA_MODEL"`
	Endpoint  string `toml:"endpoint" envconfig:"MQMBENCH_GEMBA_ENDPOINT"`
	BatchSize int    `toml:"batch_size"`
}

// DatabaseConfig controls result persistence in SQLite.
type DatabaseConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path" envconfig:"MQMBENCH_DB_PATH"`
}

// ReportConfig controls chart generation.
type ReportConfig struct {
	HTML  bool `toml:"html"`
	Plots bool `toml:"plots"`
}

var validMetrics = map[string]bool{
	"bleu": true, "chrf": true, "bertscore": true, "comet": true, "xcomet": true,
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			AnnotationsDir: "data/annotations",
			OutputDir:      "results",
		},
		Metrics: MetricsConfig{
			Run: []string{"bleu", "chrf"},
			BERTScore: ModelConfig{
				Model:     "microsoft/mdeberta-v3-base",
				Endpoint:  "http://localhost:8190",
				BatchSize: 32,
			},
			Comet: ModelConfig{
				Model:     "Unbabel/wmt22-comet-da",
				Endpoint:  "http://localhost:8191",
				BatchSize: 16,
			},
			XComet: ModelConfig{
				Model:     "Unbabel/XCOMET-XL",
				Endpoint:  "http://localhost:8191",
				BatchSize: 8,
			},
			Gemba: GembaConfig{
				Endpoint:  "http://localhost:8192/v1/chat/completions",
				BatchSize: 4,
			},
		},
		Database: DatabaseConfig{
			Enabled: true,
			Path:    "results/mqmbench.db",
		},
		Report: ReportConfig{
			HTML: true,
		},
	}
}

// Load reads the TOML settings file at path, applies environment overrides,
// and validates the result. Fields absent from the file keep their defaults,
// so partial settings files are safe.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("read settings file: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse settings file %s: %w", cleanPath, err)
	}

	if err := envconfig.Process("mqmbench", &cfg); err != nil {
		return Config{}, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	if c.Data.AnnotationsDir == "" {
		return fmt.Errorf("data.annotations_dir must not be empty")
	}
	if c.Data.OutputDir == "" {
		return fmt.Errorf("data.output_dir must not be empty")
	}
	for _, m := range c.Metrics.Run {
		if !validMetrics[m] {
			return fmt.Errorf("unknown metric %q in metrics.run", m)
		}
	}
	if c.Metrics.RunGemba && c.Metrics.Gemba.Model == "" {
		return fmt.Errorf("metrics.run_gemba requires metrics.gemba.model")
	}
	if c.Database.Enabled && c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty when database.enabled")
	}
	return nil
}

// WantsMetric reports whether the named metric is selected in metrics.run.
func (c Config) WantsMetric(name string) bool {
	for _, m := range c.Metrics.Run {
		if m == name {
			return true
		}
	}
	return false
}
