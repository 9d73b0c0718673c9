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


// Package storage provides the persistence abstraction for embedding results.
//
// This package defines the sink and source interfaces that decouple the
// generation pipeline from where vectors end up. Two backends exist:
//
//   - jsonfile: the lookup file consumed by downstream tools
//   - badger: an optional BadgerDB index keyed by model name
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces so callers do not couple to a
// particular backend:
//
//	idx, err := badger.NewIndex(path)  // returns storage.Index
//
// Internal constructors (newIndex, newWriter, etc.) may return concrete types
// since they're only used within the implementation package.
//
// # Write Semantics
//
// Every WriteResults call replaces whatever the sink held before. Results are
// never merged with a previous run, and a failed write must not leave a
// partially written artifact behind.
//
// # Usage
//
//	w := jsonfile.NewWriter("model-embeddings.json")
//	if err := w.WriteResults(ctx, results); err != nil {
//	    log.Fatal(err)
//	}
//
// Use in tests with in-memory storage:
//
//	idx, err := badger.NewMemoryIndex()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer idx.Close()
package storage
