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


// Package storage provides the storage abstraction layer for notefind.
//
// The RecordStore interface decouples business logic from the storage
// implementation, allowing different backends (BadgerDB, in-memory, etc.) to
// be used interchangeably.
//
// # Records and embeddings
//
// Records are serialized with the MUS format. Embeddings are kept out of the
// record bytes and stored in a side table keyed by (kind, record ID) as raw
// little-endian float32 values; the record carries a digest of the text its
// embedding was derived from, so indexing can detect stale or missing
// embeddings without reading the vector itself.
//
// # Filtering
//
// Filtered fetches receive validated, typed filter clauses (core.Filter).
// The store evaluates them directly against decoded records: field and
// operator names come from a fixed whitelist and values are compared as
// opaque typed literals. No textual query language exists anywhere in this
// layer, so filter values cannot alter query structure.
//
// # Constructor Return Type Pattern
//
// Public constructors return the RecordStore interface to keep callers
// decoupled from BadgerDB specifics:
//
//	store, err := badger.NewRecordStore(backend)
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
