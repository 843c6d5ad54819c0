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


// Package ai provides abstractions for AI services used in Notefind.
//
// This package defines interfaces for AI operations including text embeddings
// and query-intent classification. It follows the dependency inversion
// principle, allowing the core domain and business logic to depend on
// abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around three key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - QueryClassifier: Turns free-form queries into structured intents
//   - AIProvider: Aggregates AI services for convenient initialization
//
// Both services are treated as fallible external oracles. Classifier output
// is never trusted: every predicate it emits is validated against the field
// whitelist downstream, and callers fall back to plain semantic retrieval
// when classification fails.
//
// # Implementation Packages
//
// The ai package includes two implementation sub-packages:
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// interface types to enforce abstraction and prevent accidental coupling to
// concrete implementations. Mock constructors return concrete types so tests
// can inject behavior and assert call counts.
//
// # Usage Example
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "plan the launch party")
//	intent, err := provider.QueryClassifier().ClassifyQuery(ctx, "overdue urgent tasks", time.Now())
package ai
