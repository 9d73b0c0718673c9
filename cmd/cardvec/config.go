package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/poiesic/cardvec"
	"github.com/poiesic/cardvec/ai"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML file named by --config. Values apply only
// to flags that were not set on the command line or through the environment.
type fileConfig struct {
	Base      string        `yaml:"base"`
	Provider  string        `yaml:"provider"`
	Model     string        `yaml:"model"`
	BatchSize int           `yaml:"batch_size"`
	Pause     time.Duration `yaml:"pause"`
	Timeout   time.Duration `yaml:"timeout"`
	BadgerDir string        `yaml:"badger_dir"`
}

// loadFileConfig reads the YAML config at path.
func loadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &fc, nil
}

// buildConfig assembles the run configuration. Precedence is flag or
// environment, then config file, then built-in default.
func buildConfig(c *cli.Context) (*cardvec.Config, error) {
	fc := &fileConfig{}
	if path := c.String("config"); path != "" {
		loaded, err := loadFileConfig(path)
		if err != nil {
			return nil, err
		}
		fc = loaded
	}

	cfg := cardvec.DefaultConfig()
	cfg.AI.APIKey = strings.TrimSpace(os.Getenv(ai.EnvAPIKey))
	cfg.AI.BaseURL = pickString(c, "base", fc.Base)
	cfg.AI.Provider = pickString(c, "provider", fc.Provider)
	cfg.AI.Model = pickString(c, "model", fc.Model)
	cfg.AI.Timeout = pickDuration(c, "timeout", fc.Timeout)
	cfg.Embed.BatchSize = pickInt(c, "batch-size", fc.BatchSize)
	cfg.Embed.Pause = pickDuration(c, "pause", fc.Pause)
	cfg.BadgerDir = pickString(c, "badger-dir", fc.BadgerDir)

	return cfg, nil
}

func pickString(c *cli.Context, name, fromFile string) string {
	if c.IsSet(name) || fromFile == "" {
		return c.String(name)
	}
	return fromFile
}

func pickInt(c *cli.Context, name string, fromFile int) int {
	if c.IsSet(name) || fromFile == 0 {
		return c.Int(name)
	}
	return fromFile
}

func pickDuration(c *cli.Context, name string, fromFile time.Duration) time.Duration {
	if c.IsSet(name) || fromFile == 0 {
		return c.Duration(name)
	}
	return fromFile
}
