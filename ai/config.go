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


package ai

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/cardvec/core"
)

// Config holds configuration for the embedding service client.
type Config struct {
	// Provider selects the wire protocol: ProviderI3 or ProviderOpenAI.
	Provider string

	// BaseURL is the base URL of the embedding service.
	// Example: "http://localhost:8000" for a local I3 proxy
	BaseURL string

	// APIKey is the credential sent with every request. Required.
	APIKey string

	// APIKeyHeader is the request header carrying APIKey for ProviderI3.
	// ProviderOpenAI always uses a bearer token.
	APIKeyHeader string

	// Model is the model identifier sent with every request.
	Model string

	// Timeout bounds a single embedding request. Zero means no timeout,
	// leaving the request to the transport's own limits.
	Timeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the provider name.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithBaseURL sets the embedding service base URL.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithAPIKey sets the service credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithAPIKeyHeader sets the header used to send the credential.
func WithAPIKeyHeader(header string) ConfigOption {
	return func(c *Config) {
		c.APIKeyHeader = header
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// DefaultConfig returns a Config for a local I3 proxy. APIKey is left empty
// and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		Provider:     ProviderI3,
		BaseURL:      DefaultBaseURL,
		APIKeyHeader: DefaultAPIKeyHeader,
		Model:        DefaultModel,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBaseURL("http://proxy:8000"),
//	    WithAPIKey(os.Getenv(EnvAPIKey)),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize puts the configuration in canonical form.
// Trailing slashes are removed from BaseURL. For ProviderOpenAI the /v1
// suffix required by OpenAI-compatible servers is added when missing.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.APIKey = strings.TrimSpace(c.APIKey)

	if c.Provider == ProviderOpenAI && c.BaseURL != "" && !strings.HasSuffix(c.BaseURL, "/v1") {
		c.BaseURL = c.BaseURL + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration first. A missing APIKey is reported as
// core.ErrMissingAPIKey; every other problem wraps core.ErrInvalidConfig.
func (c *Config) Validate() error {
	c.Normalize()

	if c.APIKey == "" {
		return core.ErrMissingAPIKey
	}
	if !slices.Contains(Providers, c.Provider) {
		return fmt.Errorf("%w: unknown provider %q (want one of %s)", core.ErrInvalidConfig, c.Provider, strings.Join(Providers, ", "))
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%w: ai config: BaseURL is required", core.ErrInvalidConfig)
	}
	if c.Model == "" {
		return fmt.Errorf("%w: ai config: Model is required", core.ErrInvalidConfig)
	}
	if c.Provider == ProviderI3 && c.APIKeyHeader == "" {
		return fmt.Errorf("%w: ai config: APIKeyHeader is required", core.ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: ai config: Timeout cannot be negative", core.ErrInvalidConfig)
	}
	return nil
}
