package embed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/cardvec/ai/mock"
	"github.com/poiesic/cardvec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingThrottle records how many times Wait was called.
type countingThrottle struct {
	waits int
	err   error
}

func (c *countingThrottle) Wait(ctx context.Context) error {
	c.waits++
	return c.err
}

func makeItems(n int) []core.CardItem {
	items := make([]core.CardItem, n)
	for i := range items {
		items[i] = core.CardItem{
			Name: fmt.Sprintf("model-%03d", i),
			Text: fmt.Sprintf("text %d", i),
		}
	}
	return items
}

func TestRunner_Run(t *testing.T) {
	tests := []struct {
		name        string
		items       int
		batchSize   int
		wantBatches int
		wantWaits   int
	}{
		{"single item", 1, 64, 1, 0},
		{"exact batch", 64, 64, 1, 0},
		{"one over", 65, 64, 2, 1},
		{"many batches", 10, 3, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := mock.NewMockEmbedder()
			throttle := &countingThrottle{}
			var buf bytes.Buffer

			runner, err := NewRunner(embedder, &Config{BatchSize: tt.batchSize}, WithThrottle(throttle), WithProgress(&buf))
			require.NoError(t, err)

			items := makeItems(tt.items)
			results, err := runner.Run(context.Background(), items)
			require.NoError(t, err)
			require.Len(t, results, tt.items)

			assert.Equal(t, tt.wantBatches, embedder.CallCount())
			assert.Equal(t, tt.wantBatches, runner.BatchCount(tt.items))
			assert.Equal(t, tt.wantWaits, throttle.waits, "throttle runs between batches only")

			for i, result := range results {
				assert.Equal(t, items[i].Name, result.Name)
				assert.Equal(t, mock.DeterministicVector(items[i].Text, mock.DefaultDimension), result.Embedding)
			}

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			assert.Len(t, lines, tt.wantBatches, "one progress line per batch")
			assert.Equal(t, fmt.Sprintf("Embedded %d / %d", tt.items, tt.items), lines[len(lines)-1])
		})
	}
}

func TestRunner_BatchContents(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	runner, err := NewRunner(embedder, &Config{BatchSize: 2})
	require.NoError(t, err)

	items := makeItems(5)
	_, err = runner.Run(context.Background(), items)
	require.NoError(t, err)

	batches := embedder.Batches()
	require.Len(t, batches, 3)
	assert.Equal(t, []string{"text 0", "text 1"}, batches[0])
	assert.Equal(t, []string{"text 2", "text 3"}, batches[1])
	assert.Equal(t, []string{"text 4"}, batches[2])
}

func TestRunner_ProgressLines(t *testing.T) {
	var buf bytes.Buffer
	runner, err := NewRunner(mock.NewMockEmbedder(), &Config{BatchSize: 2}, WithProgress(&buf))
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), makeItems(5))
	require.NoError(t, err)

	assert.Equal(t, "Embedded 2 / 5\nEmbedded 4 / 5\nEmbedded 5 / 5\n", buf.String())
}

func TestRunner_Mismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if strings.HasPrefix(texts[0], "text 2") {
			return [][]float32{{0.1}}, nil
		}
		out := make([][]float32, len(texts))
		for i := range texts {
			out[i] = []float32{0.5}
		}
		return out, nil
	}

	runner, err := NewRunner(embedder, &Config{BatchSize: 2})
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), makeItems(6))
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, core.ErrBatchSizeMismatch)

	var mismatch *core.BatchSizeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 2, mismatch.Offset)
	assert.Equal(t, 2, mismatch.Expected)
	assert.Equal(t, 1, mismatch.Got)

	assert.Equal(t, 2, embedder.CallCount(), "no batch is sent after the mismatch")
}

func TestRunner_EmbedderError(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, &core.NetworkError{StatusCode: 500, Body: "boom"}
	}

	runner, err := NewRunner(embedder, &Config{BatchSize: 2})
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), makeItems(4))
	require.Error(t, err)
	assert.Nil(t, results)
	assert.ErrorIs(t, err, core.ErrNetwork)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestRunner_Empty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	runner, err := NewRunner(embedder, nil)
	require.NoError(t, err)

	results, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 0, embedder.CallCount())
	assert.Equal(t, 0, runner.BatchCount(0))
}

func TestRunner_ThrottleCancellation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	throttle := &countingThrottle{err: context.Canceled}

	runner, err := NewRunner(embedder, &Config{BatchSize: 1}, WithThrottle(throttle))
	require.NoError(t, err)

	_, err = runner.Run(context.Background(), makeItems(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewRunner(mock.NewMockEmbedder(), &Config{BatchSize: 0})
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = NewRunner(mock.NewMockEmbedder(), &Config{BatchSize: 1, Pause: -time.Second})
	assert.ErrorIs(t, err, ErrInvalidPause)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Pause)
	assert.NoError(t, cfg.Validate())
}

func TestNewRunner_DefaultThrottle(t *testing.T) {
	runner, err := NewRunner(mock.NewMockEmbedder(), &Config{BatchSize: 1, Pause: 5 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, FixedDelay(5*time.Millisecond), runner.throttle)

	runner, err = NewRunner(mock.NewMockEmbedder(), &Config{BatchSize: 1})
	require.NoError(t, err)
	assert.Equal(t, NoDelay{}, runner.throttle)
}
