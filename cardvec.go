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


// Package cardvec generates card embeddings for a model catalog.
//
// A run extracts model records from the catalog source, builds a card text
// for each, embeds the texts in batches through the configured embedding
// service and writes the name to vector lookup file. Stored results can be
// queried for similar models without contacting the service.
package cardvec

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/cardvec/ai"
	"github.com/poiesic/cardvec/ai/i3"
	"github.com/poiesic/cardvec/ai/openai"
	"github.com/poiesic/cardvec/core"
	"github.com/poiesic/cardvec/embed"
	"github.com/poiesic/cardvec/extract"
	"github.com/poiesic/cardvec/search"
	"github.com/poiesic/cardvec/storage"
	"github.com/poiesic/cardvec/storage/badger"
	"github.com/poiesic/cardvec/storage/jsonfile"
)

// Summary describes a completed run.
type Summary struct {
	RunID      string
	Records    int
	Batches    int
	OutputPath string
	IndexPath  string
	Elapsed    time.Duration
}

// Pipeline runs extraction, card building, embedding and writing in sequence.
type Pipeline struct {
	config   *Config
	embedder ai.Embedder
	throttle embed.Throttle
	progress io.Writer
	logger   *slog.Logger
	runID    string
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithEmbedder uses embedder instead of building one from the AI config.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(p *Pipeline) error {
		if embedder == nil {
			return embed.ErrEmbedderRequired
		}
		p.embedder = embedder
		return nil
	}
}

// WithProgress sets where the human-readable progress lines go.
// Default is io.Discard.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		if w == nil {
			w = io.Discard
		}
		p.progress = w
		return nil
	}
}

// WithThrottle overrides the pause between batches.
func WithThrottle(t embed.Throttle) Option {
	return func(p *Pipeline) error {
		p.throttle = t
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// New validates cfg and creates a pipeline. A missing credential fails here
// with core.ErrMissingAPIKey, before any file is read or request is sent.
func New(cfg *Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:   cfg,
		progress: io.Discard,
		logger:   slog.Default(),
		runID:    uuid.NewString(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "cardvec", "run_id", p.runID)

	if p.embedder == nil {
		embedder, err := NewEmbedder(cfg.AI)
		if err != nil {
			return nil, err
		}
		p.embedder = embedder
	}

	return p, nil
}

// NewEmbedder builds the embedding client for the configured provider.
func NewEmbedder(cfg *ai.Config) (ai.Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderOpenAI:
		return openai.NewEmbedder(cfg)
	default:
		return i3.NewEmbedder(cfg)
	}
}

// RunID returns the identifier attached to this pipeline's log lines.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Run executes one generation. Nothing is written unless every batch succeeds.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	inputPath := p.config.InputPath()
	outputPath := p.config.OutputPath()

	// 1. Extract records
	extractor := extract.NewExtractor(extract.WithLogger(p.logger))
	set, err := extractor.ExtractFile(inputPath)
	if err != nil {
		p.logger.Error("extraction failed", "path", inputPath, "err", err)
		return nil, err
	}
	fmt.Fprintf(p.progress, "Parsed %d models from %s\n", set.Len(), inputPath)

	// 2. Build card texts
	items := core.BuildCardItems(set.Records())

	// 3. Embed in batches
	runnerOpts := []embed.Option{
		embed.WithProgress(p.progress),
		embed.WithLogger(p.logger),
	}
	if p.throttle != nil {
		runnerOpts = append(runnerOpts, embed.WithThrottle(p.throttle))
	}
	runner, err := embed.NewRunner(p.embedder, p.config.Embed, runnerOpts...)
	if err != nil {
		return nil, err
	}

	results, err := runner.Run(ctx, items)
	if err != nil {
		return nil, err
	}

	// 4. Write outputs
	if err := jsonfile.NewWriter(outputPath).WriteResults(ctx, results); err != nil {
		return nil, err
	}

	indexPath := p.config.IndexPath()
	if indexPath != "" {
		if err := writeIndex(ctx, indexPath, results); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(p.progress, "Wrote %s items: %d\n", outputPath, len(results))

	summary := &Summary{
		RunID:      p.runID,
		Records:    set.Len(),
		Batches:    runner.BatchCount(len(items)),
		OutputPath: outputPath,
		IndexPath:  indexPath,
		Elapsed:    time.Since(start),
	}
	p.logger.Info("generation complete", "records", summary.Records, "batches", summary.Batches, "elapsed", summary.Elapsed)
	return summary, nil
}

func writeIndex(ctx context.Context, path string, results []core.EmbeddingResult) error {
	idx, err := badger.NewIndex(path)
	if err != nil {
		return err
	}
	if err := idx.WriteResults(ctx, results); err != nil {
		idx.Close()
		return fmt.Errorf("failed to write index: %w", err)
	}
	return idx.Close()
}

// NewSearcher opens the stored results described by cfg for similarity
// queries: the index when BadgerDir is set, the lookup file otherwise.
// No credential is needed. The returned closer must be called when done.
func NewSearcher(cfg *Config, opts ...search.Option) (*search.Searcher, io.Closer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validatePaths(); err != nil {
		return nil, nil, err
	}

	var (
		reader storage.ResultReader
		closer io.Closer = nopCloser{}
	)
	if indexPath := cfg.IndexPath(); indexPath != "" {
		idx, err := badger.NewIndex(indexPath)
		if err != nil {
			return nil, nil, err
		}
		reader, closer = idx, idx
	} else {
		reader = jsonfile.NewReader(cfg.OutputPath())
	}

	s, err := search.NewSearcher(reader, opts...)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return s, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
