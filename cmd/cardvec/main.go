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


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/cardvec"
	"github.com/poiesic/cardvec/ai"
	"github.com/poiesic/cardvec/core"
	"github.com/poiesic/cardvec/embed"
	"github.com/poiesic/cardvec/search"
	"github.com/urfave/cli/v2"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp()
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.Run(args); err != nil {
		if errors.Is(err, core.ErrMissingAPIKey) {
			fmt.Fprintln(stderr, "Missing I3_API_KEY")
			return 1
		}
		log.New(stderr, "", log.LstdFlags).Print(err)
		return 1
	}
	return 0
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cardvec",
		Usage: "Generate card embeddings for the model catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Optional YAML file supplying defaults for unset flags",
			},
			&cli.StringFlag{
				Name:    "base",
				Usage:   "Embedding proxy base URL",
				EnvVars: []string{ai.EnvBaseURL},
				Value:   ai.DefaultBaseURL,
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Embedding wire protocol (" + strings.Join(ai.Providers, ", ") + ")",
				Value: ai.ProviderI3,
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Embedding model name",
				Value: ai.DefaultModel,
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of card texts sent per request",
				Value: embed.DefaultBatchSize,
			},
			&cli.DurationFlag{
				Name:  "pause",
				Usage: "Delay between consecutive batch requests",
				Value: embed.DefaultPause,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request timeout (0 disables)",
			},
			&cli.StringFlag{
				Name:  "badger-dir",
				Usage: "Also write vectors to a BadgerDB index in this directory",
			},
		},
		Before: setupLogger,
		Action: generateCommand,
		Commands: []*cli.Command{
			{
				Name:   "similar",
				Usage:  "List the models whose cards are closest to a given model",
				Action: similarCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Model name to compare against",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of models to list",
						Value: 5,
					},
					&cli.Float64Flag{
						Name:  "min-score",
						Usage: "Hide models scoring below this cosine similarity",
					},
				},
			},
		},
	}
}

func generateCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}
	// Checked before anything touches the catalog or the network
	if cfg.AI.APIKey == "" {
		return core.ErrMissingAPIKey
	}

	pipeline, err := cardvec.New(cfg, cardvec.WithProgress(c.App.Writer))
	if err != nil {
		return err
	}

	slog.Debug("starting generation",
		"run_id", pipeline.RunID(),
		"base", cfg.AI.BaseURL,
		"provider", cfg.AI.Provider,
		"batch_size", cfg.Embed.BatchSize)

	_, err = pipeline.Run(ctx)
	return err
}

func similarCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := buildConfig(c)
	if err != nil {
		return err
	}

	var opts []search.Option
	if c.IsSet("min-score") {
		opts = append(opts, search.WithMinSimilarity(float32(c.Float64("min-score"))))
	}

	searcher, closer, err := cardvec.NewSearcher(cfg, opts...)
	if err != nil {
		return err
	}
	defer closer.Close()

	name := c.String("name")
	hits, err := searcher.Similar(ctx, name, c.Int("top"))
	if err != nil {
		return fmt.Errorf("similar to %q: %w", name, err)
	}

	if len(hits) == 0 {
		fmt.Fprintf(c.App.Writer, "No models similar to %s\n", name)
		return nil
	}
	for i, hit := range hits {
		fmt.Fprintf(c.App.Writer, "%d. %s (%.4f)\n", i+1, hit.Name, hit.Score)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
