// Package config resolves where local state lives and how the engine is
// tuned. Backend choice and data locations are configuration, never engine
// logic: the engine receives resolved values and stays path-agnostic.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/BlackVectorOps/filesentry/pkg/heuristics"
	"github.com/BlackVectorOps/filesentry/pkg/models"
)

// Env variable names. The config file itself can be relocated, so the file
// path override has to live in the environment.
const (
	EnvConfigPath = "FILESENTRY_CONFIG"
	EnvDataDir    = "FILESENTRY_DATA_DIR"
	EnvLogLevel   = "FILESENTRY_LOG_LEVEL"
)

// Config is the full tunable surface. Every field has a working default;
// a missing config file is not an error.
type Config struct {
	DataDir    string     `yaml:"data_dir"`
	Storage    string     `yaml:"storage"`
	LogLevel   string     `yaml:"log_level"`
	Heuristics Heuristics `yaml:"heuristics"`
}

// Heuristics tunes the analyzer without code changes. Only the entropy
// threshold is exposed; rule weights stay fixed so risk scores remain
// comparable across installations.
type Heuristics struct {
	EntropyThreshold float64 `yaml:"entropy_threshold"`
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		Storage:  models.BackendJSON,
		LogLevel: "warning",
		Heuristics: Heuristics{
			EntropyThreshold: heuristics.DefaultEntropyThreshold,
		},
	}
}

// Load reads the config file if one exists and layers env overrides on top.
// Resolution order per field: environment > file > default.
func Load() (*Config, error) {
	cfg := Default()

	path := configPath()
	if raw, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config file %s is not valid YAML: %w", path, err)
		}
		if cfg.DataDir == "" {
			cfg.DataDir = defaultDataDir()
		}
		if cfg.Storage == "" {
			cfg.Storage = models.BackendJSON
		}
		if cfg.Heuristics.EntropyThreshold == 0 {
			cfg.Heuristics.EntropyThreshold = heuristics.DefaultEntropyThreshold
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if env := os.Getenv(EnvDataDir); env != "" {
		cfg.DataDir = env
	}
	if env := os.Getenv(EnvLogLevel); env != "" {
		cfg.LogLevel = env
	}
	return cfg, nil
}

// Analyzer builds the heuristic analyzer from the tuned threshold.
func (c *Config) Analyzer() *heuristics.Analyzer {
	a := heuristics.NewAnalyzer()
	if c.Heuristics.EntropyThreshold > 0 {
		a.EntropyThreshold = c.Heuristics.EntropyThreshold
	}
	return a
}

func configPath() string {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".filesentry", "config.yaml")
	}
	return filepath.Join(".filesentry", "config.yaml")
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".filesentry")
	}
	return ".filesentry"
}
