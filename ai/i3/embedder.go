package i3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/poiesic/cardvec/ai"
	"github.com/poiesic/cardvec/core"
	"github.com/tmc/langchaingo/embeddings"
)

// maxErrorBody caps how much of a failed response body is kept in the error.
const maxErrorBody = 64 * 1024

// Embedder implements ai.Embedder against the I3 embedding proxy.
//
// Requests are sent as POST {BaseURL}/embeddings with the API key in a
// custom header. The proxy wraps the OpenAI-style payload in its own
// envelope, so vectors are read from data.data[].embedding.
type Embedder struct {
	client   *http.Client
	endpoint string
	apiKey   string
	header   string
	model    string
	logger   *slog.Logger
}

var (
	_ ai.Embedder               = (*Embedder)(nil)
	_ embeddings.EmbedderClient = (*Embedder)(nil)
)

// Option configures an Embedder.
type Option func(*Embedder)

// WithHTTPClient replaces the HTTP client used for requests.
// The config Timeout is not applied to a client supplied this way.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Embedder) {
		if client != nil {
			e.client = client
		}
	}
}

// embeddingRequest is the request body sent to the proxy.
type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// proxyResponse is the proxy envelope: { success, data: { data: [ { embedding } ] } }.
type proxyResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	} `json:"data"`
}

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config, opts ...Option) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Embedder{
		client:   &http.Client{Timeout: config.Timeout},
		endpoint: config.BaseURL + "/embeddings",
		apiKey:   config.APIKey,
		header:   config.APIKeyHeader,
		model:    config.Model,
		logger:   slog.Default().With("component", "i3-embedder"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// NewEmbedder creates a new proxy embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config, opts ...Option) (ai.Embedder, error) {
	return newEmbedder(config, opts...)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}
	return vectors[0], nil
}

// EmbedTexts sends texts in a single request and returns the vectors in
// response order. A response without the expected envelope yields an empty
// slice rather than an error, and an item without a vector yields an empty vector.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("requesting embeddings", "count", len(texts), "endpoint", e.endpoint)

	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(e.header, e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("embedding request failed", "err", err)
		return nil, &core.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e.logger.Error("embedding service returned error status", "status", resp.StatusCode)
		return nil, &core.NetworkError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}

	var parsed proxyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		if errors.Is(err, io.EOF) {
			return [][]float32{}, nil
		}
		return nil, &core.NetworkError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	if parsed.Data == nil {
		e.logger.Warn("response is missing the data envelope")
		return [][]float32{}, nil
	}

	vectors := make([][]float32, len(parsed.Data.Data))
	for i, item := range parsed.Data.Data {
		vectors[i] = item.Embedding
		if vectors[i] == nil {
			vectors[i] = []float32{}
		}
	}
	return vectors, nil
}

// CreateEmbedding implements langchaingo's embeddings.EmbedderClient so the
// proxy can back a langchaingo embeddings.Embedder.
func (e *Embedder) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedTexts(ctx, texts)
}
