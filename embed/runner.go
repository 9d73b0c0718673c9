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


package embed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/cardvec/ai"
	"github.com/poiesic/cardvec/core"
	"github.com/tmc/langchaingo/embeddings"
)

const (
	// DefaultBatchSize is the number of texts sent per embedding request.
	DefaultBatchSize = 64

	// DefaultPause is the delay between consecutive batch requests.
	DefaultPause = 100 * time.Millisecond
)

// Config holds configuration for the embedding run.
type Config struct {
	// BatchSize is the number of texts to send in each request
	BatchSize int

	// Pause is the delay between consecutive batches
	Pause time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize: DefaultBatchSize,
		Pause:     DefaultPause,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.Pause < 0 {
		return ErrInvalidPause
	}
	return nil
}

// Option configures a Runner.
type Option func(*Runner)

// WithThrottle overrides the pause strategy derived from Config.Pause.
func WithThrottle(t Throttle) Option {
	return func(r *Runner) {
		r.throttle = t
	}
}

// WithProgress sets where progress lines are written.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner embeds an ordered list of card items batch by batch.
type Runner struct {
	config    *Config
	processor *BatchProcessor
	throttle  Throttle
	progress  io.Writer
	logger    *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(embedder ai.Embedder, config *Config, opts ...Option) (*Runner, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrInvalidConfig, err)
	}

	r := &Runner{
		config:    config,
		processor: NewBatchProcessor(embedder),
		progress:  io.Discard,
		logger:    slog.Default().With("component", "embed"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.throttle == nil {
		if config.Pause > 0 {
			r.throttle = FixedDelay(config.Pause)
		} else {
			r.throttle = NoDelay{}
		}
	}
	return r, nil
}

// Run embeds every item and returns one result per item in input order.
// Batches are sent sequentially with the throttle consulted between them.
// The first failed batch aborts the run; partial results are discarded.
func (r *Runner) Run(ctx context.Context, items []core.CardItem) ([]core.EmbeddingResult, error) {
	total := len(items)
	if total == 0 {
		return []core.EmbeddingResult{}, nil
	}

	texts := make([]string, total)
	for i, item := range items {
		texts[i] = item.Text
	}
	batches := embeddings.BatchTexts(texts, r.config.BatchSize)

	r.logger.Debug("starting embedding run", "items", total, "batches", len(batches), "batch_size", r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, total)
	tracker.Start()

	results := make([]core.EmbeddingResult, 0, total)
	offset := 0
	for i, batch := range batches {
		if i > 0 {
			if err := r.throttle.Wait(ctx); err != nil {
				return nil, err
			}
		}

		out, err := r.processor.Process(ctx, offset, items[offset:offset+len(batch)])
		if err != nil {
			r.logger.Error("batch failed", "batch", i, "offset", offset, "err", err)
			return nil, fmt.Errorf("failed to process batch %d: %w", i, err)
		}
		results = append(results, out...)

		offset += len(batch)
		tracker.Update(offset)
	}

	r.logger.Debug("embedding run complete", "items", total, "elapsed", tracker.Elapsed())
	return results, nil
}

// BatchCount returns the number of requests needed for n items.
func (r *Runner) BatchCount(n int) int {
	if n <= 0 {
		return 0
	}
	return (n + r.config.BatchSize - 1) / r.config.BatchSize
}
