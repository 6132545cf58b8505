// Package config loads the YAML configuration shared by the service and the trainer.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config captures every runtime knob.
type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Model struct {
		Path      string `yaml:"path"`
		CacheSize int    `yaml:"cache_size"`
	} `yaml:"model"`
	Training struct {
		Epochs       int     `yaml:"epochs"`
		Samples      int     `yaml:"samples"`
		LearningRate float64 `yaml:"learning_rate"`
		LogEvery     int     `yaml:"log_every"`
		Seed         int64   `yaml:"seed"`
	} `yaml:"training"`
	Log struct {
		Level      string `yaml:"level"`
		Format     string `yaml:"format"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Overrides captures CLI supplied values. Zero values leave the config untouched;
// Seed is a pointer because 0 is a valid seed.
type Overrides struct {
	Port         int
	ModelPath    string
	Epochs       int
	LearningRate float64
	Seed         *int64
	LogLevel     string
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Http.Port = 8000
	cfg.Http.Timeout = 30 * time.Second
	cfg.Http.AllowedOrigins = []string{"*"}
	cfg.Http.MaxBodyBytes = 1 << 20
	cfg.Model.Path = "fight_model.db"
	cfg.Model.CacheSize = 1024
	cfg.Training.Epochs = 50
	cfg.Training.Samples = 500
	cfg.Training.LearningRate = 0.01
	cfg.Training.LogEvery = 10
	cfg.Training.Seed = 1
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Log.MaxSizeMB = 100
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 28
	return cfg
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when path does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Port > 0 {
		c.Http.Port = o.Port
	}
	if o.ModelPath != "" {
		c.Model.Path = o.ModelPath
	}
	if o.Epochs > 0 {
		c.Training.Epochs = o.Epochs
	}
	if o.LearningRate > 0 {
		c.Training.LearningRate = o.LearningRate
	}
	if o.Seed != nil {
		c.Training.Seed = *o.Seed
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port must be in 1..65535 (got %d)", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be > 0 (got %s)", c.Http.Timeout)
	}
	if c.Model.Path == "" {
		return errors.New("model.path is required")
	}
	if c.Model.CacheSize < 0 {
		return fmt.Errorf("model.cache_size must be >= 0 (got %d)", c.Model.CacheSize)
	}
	if c.Training.Epochs <= 0 {
		return fmt.Errorf("training.epochs must be > 0 (got %d)", c.Training.Epochs)
	}
	if c.Training.Samples <= 0 {
		return fmt.Errorf("training.samples must be > 0 (got %d)", c.Training.Samples)
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be > 0 (got %g)", c.Training.LearningRate)
	}
	if c.Training.LogEvery <= 0 {
		c.Training.LogEvery = 10
	}
	if c.Http.MaxBodyBytes <= 0 {
		c.Http.MaxBodyBytes = 1 << 20
	}
	return nil
}
