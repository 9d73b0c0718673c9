// Package i3 implements ai.Embedder for the I3 embedding proxy.
//
// Wire contract:
//
//	POST {base}/embeddings
//	Content-Type: application/json
//	I3-API-Key: <key>
//
//	{"model": "i3-embedding", "input": ["...", "..."]}
//
// Response:
//
//	{"success": true, "data": {"data": [{"embedding": [0.1, 0.2]}, ...]}}
//
// The doubly nested data field is the proxy's envelope around an
// OpenAI-style embeddings payload and is matched exactly. Non-2xx responses
// and transport failures are returned as *core.NetworkError; nothing is
// retried.
package i3
