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


// Package ai provides the embedding service abstraction used by cardvec.
//
// The package defines the Embedder interface and the Config shared by its
// implementations. Business logic depends on the interface; concrete clients
// live in sub-packages.
//
// # Implementation Packages
//
//   - ai/i3: Client for the I3 embedding proxy (custom API key header and
//     a doubly nested "data" response envelope)
//   - ai/openai: Client for OpenAI-compatible APIs built on langchaingo
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (i3.NewEmbedder, openai.NewEmbedder) return the
// ai.Embedder interface. Test utility constructors (mock.NewMockEmbedder)
// return concrete types so tests can inspect recorded calls.
//
// # Usage Example
//
//	cfg := ai.NewConfig(
//	    ai.WithBaseURL("http://localhost:8000"),
//	    ai.WithAPIKey(os.Getenv(ai.EnvAPIKey)),
//	)
//	embedder, err := i3.NewEmbedder(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vectors, err := embedder.EmbedTexts(ctx, []string{"ModelX\nDoes X"})
//
// # Error Reporting
//
// Implementations report transport failures and non-2xx responses as
// *core.NetworkError, which matches core.ErrNetwork with errors.Is. They
// never retry.
package ai
