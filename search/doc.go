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


// Package search ranks models by the similarity of their card embeddings.
//
// The Searcher works over any storage.ResultReader. When the reader is also a
// storage.Index the ranking is delegated to the index; otherwise all results
// are loaded and compared in memory by cosine similarity.
//
// No embedding service is contacted: queries are existing model names whose
// vectors are already stored.
package search
