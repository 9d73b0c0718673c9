// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cardvec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/cardvec/ai"
	"github.com/poiesic/cardvec/core"
	"github.com/poiesic/cardvec/embed"
)

const (
	// DefaultInputFile is the catalog source, relative to Root.
	DefaultInputFile = "model-data.js"

	// DefaultOutputFile is the lookup file, relative to Root.
	DefaultOutputFile = "model-embeddings.json"
)

// Config holds everything a generation run needs.
type Config struct {
	// Root is the project directory that relative paths are resolved against.
	Root string

	// InputFile is the catalog source to extract records from.
	InputFile string

	// OutputFile is where the lookup file is written.
	OutputFile string

	// BadgerDir optionally names a directory for the vector index.
	// Empty disables the index.
	BadgerDir string

	AI    *ai.Config
	Embed *embed.Config
}

// DefaultConfig returns a Config rooted at the working directory.
// AI.APIKey is left empty and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		Root:       ".",
		InputFile:  DefaultInputFile,
		OutputFile: DefaultOutputFile,
		AI:         ai.DefaultConfig(),
		Embed:      embed.DefaultConfig(),
	}
}

// InputPath returns the resolved catalog source path.
func (c *Config) InputPath() string {
	return c.resolve(c.InputFile)
}

// OutputPath returns the resolved lookup file path.
func (c *Config) OutputPath() string {
	return c.resolve(c.OutputFile)
}

// IndexPath returns the resolved index directory, or "" if the index is disabled.
func (c *Config) IndexPath() string {
	if strings.TrimSpace(c.BadgerDir) == "" {
		return ""
	}
	return c.resolve(c.BadgerDir)
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}

// Validate checks the whole configuration. The credential is checked first so
// that a missing key is reported before anything else.
func (c *Config) Validate() error {
	if c.AI == nil {
		return fmt.Errorf("%w: ai config is required", core.ErrInvalidConfig)
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if c.Embed == nil {
		return fmt.Errorf("%w: embed config is required", core.ErrInvalidConfig)
	}
	if err := c.Embed.Validate(); err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}
	return c.validatePaths()
}

// validatePaths checks only the file locations, for commands that never
// contact the embedding service.
func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.InputFile) == "" {
		return fmt.Errorf("%w: InputFile is required", core.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.OutputFile) == "" {
		return fmt.Errorf("%w: OutputFile is required", core.ErrInvalidConfig)
	}
	return nil
}
