package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/cardvec/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const threeModels = `const MODEL_DATA = {
  "Alpha": {"purpose": "Reads text", "useCase": "Chat", "category": "NLP", "industry": "Tech"},
  "Beta": {"purpose": "Reads more text", "useCase": "Chat", "category": "NLP", "industry": "Tech"},
  "Gamma": {"purpose": "Looks at images", "useCase": "Vision", "category": "CV", "industry": "Retail"}
};`

func findFlag(t *testing.T, flags []cli.Flag, name string) cli.Flag {
	t.Helper()
	for _, f := range flags {
		for _, n := range f.Names() {
			if n == name {
				return f
			}
		}
	}
	t.Fatalf("flag %q not found", name)
	return nil
}

// projectDir switches into a temp project holding source as the catalog.
func projectDir(t *testing.T, source string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model-data.js"), []byte(source), 0o644))
	t.Chdir(dir)
	return dir
}

// proxyServer answers every request with one vector per input. Vectors for
// cards mentioning "text" point one way, everything else points the other.
func proxyServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var items []string
		for i, text := range req.Input {
			vec := "[0.1, 1.0]"
			if strings.Contains(text, "text") {
				vec = fmt.Sprintf("[1.0, %.2f]", 0.1*float64(i))
			}
			items = append(items, `{"embedding": `+vec+`}`)
		}
		fmt.Fprintf(w, `{"success": true, "data": {"data": [%s]}}`, strings.Join(items, ","))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func restoreDefaultLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	t.Run("base defaults to local proxy and reads env", func(t *testing.T) {
		flag, ok := findFlag(t, app.Flags, "base").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, "http://localhost:8000", flag.Value)
		assert.Equal(t, []string{"I3_PROXY_BASE"}, flag.EnvVars)
	})

	t.Run("batch-size default", func(t *testing.T) {
		flag, ok := findFlag(t, app.Flags, "batch-size").(*cli.IntFlag)
		require.True(t, ok)
		assert.Equal(t, 64, flag.Value)
	})

	t.Run("pause default", func(t *testing.T) {
		flag, ok := findFlag(t, app.Flags, "pause").(*cli.DurationFlag)
		require.True(t, ok)
		assert.Equal(t, 100*time.Millisecond, flag.Value)
	})

	t.Run("timeout disabled by default", func(t *testing.T) {
		flag, ok := findFlag(t, app.Flags, "timeout").(*cli.DurationFlag)
		require.True(t, ok)
		assert.Zero(t, flag.Value)
	})

	t.Run("provider default", func(t *testing.T) {
		flag, ok := findFlag(t, app.Flags, "provider").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, ai.ProviderI3, flag.Value)
	})

	t.Run("log-level alias", func(t *testing.T) {
		flag, ok := findFlag(t, app.Flags, "l").(*cli.StringFlag)
		require.True(t, ok)
		assert.Equal(t, "log-level", flag.Name)
		assert.Equal(t, "info", flag.Value)
	})

	t.Run("similar requires name", func(t *testing.T) {
		cmd := app.Command("similar")
		require.NotNil(t, cmd)
		flag, ok := findFlag(t, cmd.Flags, "name").(*cli.StringFlag)
		require.True(t, ok)
		assert.True(t, flag.Required)

		top, ok := findFlag(t, cmd.Flags, "top").(*cli.IntFlag)
		require.True(t, ok)
		assert.Equal(t, 5, top.Value)
	})
}

func TestSetupLogger(t *testing.T) {
	restoreDefaultLogger(t)

	tests := []struct {
		level    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"Info", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			app := &cli.App{
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "log-level", Value: "info"},
				},
				Before: setupLogger,
				Action: func(c *cli.Context) error {
					return nil
				},
			}
			app.ErrWriter = &bytes.Buffer{}

			err := app.Run([]string{"test", "--log-level", tt.level})
			require.NoError(t, err)
			assert.True(t, slog.Default().Enabled(context.Background(), tt.expected))
		})
	}

	t.Run("invalid level", func(t *testing.T) {
		app := &cli.App{
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "trace"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestRun_MissingAPIKey(t *testing.T) {
	restoreDefaultLogger(t)
	var calls atomic.Int32
	srv := proxyServer(t, &calls)
	dir := projectDir(t, threeModels)
	t.Setenv("I3_API_KEY", "")

	var stdout, stderr bytes.Buffer
	code := run([]string{"cardvec", "--base", srv.URL}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Equal(t, "Missing I3_API_KEY\n", stderr.String())
	assert.Empty(t, stdout.String(), "nothing parsed before the key check")
	assert.Zero(t, calls.Load())
	assert.NoFileExists(t, filepath.Join(dir, "model-embeddings.json"))
}

func TestRun_Generate(t *testing.T) {
	restoreDefaultLogger(t)
	var calls atomic.Int32
	srv := proxyServer(t, &calls)
	dir := projectDir(t, threeModels)
	t.Setenv("I3_API_KEY", "secret")

	var stdout, stderr bytes.Buffer
	code := run([]string{"cardvec", "--base", srv.URL, "--pause", "0s"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, int32(1), calls.Load())
	out := stdout.String()
	assert.Contains(t, out, "Parsed 3 models from model-data.js\n")
	assert.Contains(t, out, "Embedded 3 / 3\n")
	assert.Contains(t, out, "Wrote model-embeddings.json items: 3\n")

	data, err := os.ReadFile(filepath.Join(dir, "model-embeddings.json"))
	require.NoError(t, err)
	var results []struct {
		Name      string    `json:"name"`
		Embedding []float32 `json:"embedding"`
	}
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 3)
	assert.Equal(t, "Alpha", results[0].Name)
	assert.Equal(t, "Gamma", results[2].Name)
}

func TestRun_BatchSizeFlag(t *testing.T) {
	restoreDefaultLogger(t)
	var calls atomic.Int32
	srv := proxyServer(t, &calls)
	projectDir(t, threeModels)
	t.Setenv("I3_API_KEY", "secret")

	var stdout, stderr bytes.Buffer
	code := run([]string{"cardvec", "--base", srv.URL, "--pause", "0s", "--batch-size", "2"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, int32(2), calls.Load())
	assert.Contains(t, stdout.String(), "Embedded 2 / 3\n")
	assert.Contains(t, stdout.String(), "Embedded 3 / 3\n")
}

func TestRun_ConfigFile(t *testing.T) {
	restoreDefaultLogger(t)
	var calls atomic.Int32
	srv := proxyServer(t, &calls)
	dir := projectDir(t, threeModels)
	t.Setenv("I3_API_KEY", "secret")

	configPath := filepath.Join(dir, "cardvec.yaml")
	yaml := fmt.Sprintf("base: %s\nbatch_size: 1\npause: 0s\nbadger_dir: index\n", srv.URL)
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"cardvec", "--config", configPath}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	assert.Equal(t, int32(3), calls.Load(), "batch_size from file")
	assert.DirExists(t, filepath.Join(dir, "index"))

	t.Run("flag overrides file", func(t *testing.T) {
		calls.Store(0)
		stdout.Reset()
		code := run([]string{"cardvec", "--config", configPath, "--batch-size", "64"}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestRun_BadConfigFile(t *testing.T) {
	restoreDefaultLogger(t)
	projectDir(t, threeModels)
	t.Setenv("I3_API_KEY", "secret")

	var stdout, stderr bytes.Buffer
	code := run([]string{"cardvec", "--config", "missing.yaml"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "failed to read config")
}

func TestRun_Similar(t *testing.T) {
	restoreDefaultLogger(t)
	var calls atomic.Int32
	srv := proxyServer(t, &calls)
	projectDir(t, threeModels)
	t.Setenv("I3_API_KEY", "secret")

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"cardvec", "--base", srv.URL, "--pause", "0s"}, &stdout, &stderr), stderr.String())

	t.Run("from lookup file without key", func(t *testing.T) {
		t.Setenv("I3_API_KEY", "")
		stdout.Reset()
		code := run([]string{"cardvec", "similar", "--name", "Alpha", "--top", "1"}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
		assert.True(t, strings.HasPrefix(stdout.String(), "1. Beta ("), stdout.String())
		assert.NotContains(t, stdout.String(), "Gamma")
	})

	t.Run("min-score filters hits", func(t *testing.T) {
		stdout.Reset()
		code := run([]string{"cardvec", "similar", "--name", "Alpha", "--min-score", "0.9"}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
		assert.Contains(t, stdout.String(), "Beta")
		assert.NotContains(t, stdout.String(), "Gamma")
	})

	t.Run("unknown model", func(t *testing.T) {
		stderr.Reset()
		code := run([]string{"cardvec", "similar", "--name", "Nope"}, &stdout, &stderr)
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr.String(), "model not found")
	})

	t.Run("from index", func(t *testing.T) {
		stdout.Reset()
		code := run([]string{"cardvec", "--base", srv.URL, "--pause", "0s", "--badger-dir", "index"}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())

		stdout.Reset()
		code = run([]string{"cardvec", "--badger-dir", "index", "similar", "--name", "Gamma"}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		assert.Len(t, lines, 2)
	})
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("parses all fields", func(t *testing.T) {
		path := filepath.Join(dir, "full.yaml")
		content := `base: http://proxy:9000
provider: openai
model: text-embed
batch_size: 16
pause: 250ms
timeout: 30s
badger_dir: /var/lib/cardvec
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		fc, err := loadFileConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "http://proxy:9000", fc.Base)
		assert.Equal(t, "openai", fc.Provider)
		assert.Equal(t, "text-embed", fc.Model)
		assert.Equal(t, 16, fc.BatchSize)
		assert.Equal(t, 250*time.Millisecond, fc.Pause)
		assert.Equal(t, 30*time.Second, fc.Timeout)
		assert.Equal(t, "/var/lib/cardvec", fc.BadgerDir)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadFileConfig(filepath.Join(dir, "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("batch_size: [oops"), 0o644))
		_, err := loadFileConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config")
	})
}
