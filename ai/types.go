package ai

// Provider names accepted by Config.Provider.
const (
	// ProviderI3 talks to the I3 embedding proxy and its nested response envelope.
	ProviderI3 = "i3"
	// ProviderOpenAI talks to any OpenAI-compatible /v1/embeddings endpoint.
	ProviderOpenAI = "openai"
)

// Providers lists the valid provider names.
var Providers = []string{
	ProviderI3,
	ProviderOpenAI,
}

// Defaults for the embedding service.
const (
	DefaultBaseURL      = "http://localhost:8000"
	DefaultModel        = "i3-embedding"
	DefaultAPIKeyHeader = "I3-API-Key"
)

// Environment variables read by the command line front end.
const (
	EnvBaseURL = "I3_PROXY_BASE"
	EnvAPIKey  = "I3_API_KEY"
)
