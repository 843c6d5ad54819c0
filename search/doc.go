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


// Package search implements hybrid retrieval over stored tasks and notes.
//
// A free-form query is answered in three stages:
//
//  1. Classification. An LLM turns the query into a retrieval intent:
//     structured (exact filters only), semantic (similarity only), or hybrid
//     (filter, then rank candidates by similarity). Classification is bounded
//     by a timeout and treated as an optimization: any failure falls back to
//     a plain semantic search over all records.
//
//  2. Compilation. Classifier predicates are untrusted. Compile checks every
//     field against the per-kind whitelist and every operator against the
//     fixed operator set, parses date literals, and drops anything invalid.
//     Values survive only as typed literals; no query text is ever built.
//
//  3. Execution and fusion. Structured plans fetch and cap at
//     core.MaxStructuredResults, ordered by ID. Semantic and hybrid plans
//     rank by dot product over unit embeddings and cap at
//     core.MaxSemanticResults. A hybrid plan whose filters match nothing
//     returns an empty result; it never falls back to pure similarity.
package search
