package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Default(t *testing.T) {
	m := NewMockEmbedder()
	ctx := context.Background()

	vectors, err := m.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Len(t, vectors[0], DefaultDimension)
	assert.NotEqual(t, vectors[0], vectors[1])

	single, err := m.EmbedText(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, vectors[0], single, "same text gives same vector")

	assert.Equal(t, 2, m.CallCount())
	assert.Equal(t, [][]string{{"a", "b"}}, m.Batches())
}

func TestMockEmbedder_CustomFunc(t *testing.T) {
	m := NewMockEmbedder()
	want := errors.New("boom")
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, want
	}

	_, err := m.EmbedTexts(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, want)
	assert.Len(t, m.Batches(), 1, "failed calls are still recorded")
}

func TestMockEmbedder_Reset(t *testing.T) {
	m := NewMockEmbedder()
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("boom")
	}
	m.EmbedTexts(context.Background(), []string{"x"})

	m.Reset()

	assert.Zero(t, m.CallCount())
	assert.Empty(t, m.Batches())
	_, err := m.EmbedTexts(context.Background(), []string{"x"})
	assert.NoError(t, err)
}
