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


// Package index maintains the embedding side table on the record write path.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/notefind/ai"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/storage"
)

var (
	// ErrRecordStoreRequired is returned when a record store is not provided.
	ErrRecordStoreRequired = errors.New("record store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")
)

// Indexer computes and stores record embeddings.
// The digest of the embedded text is kept on the record, making Index
// idempotent: unchanged text is never re-embedded.
type Indexer struct {
	store    storage.RecordStore
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		ix.logger = logger
		return nil
	}
}

// NewIndexer creates a new indexer.
func NewIndexer(store storage.RecordStore, provider ai.AIProvider, opts ...Option) (*Indexer, error) {
	if store == nil {
		return nil, ErrRecordStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	ix := &Indexer{
		store:    store,
		embedder: provider.Embedder(),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	return ix, nil
}

// Index brings the stored embedding for a record in line with its current
// text. Empty derived text removes any stored embedding; unchanged text is a
// no-op; otherwise the text is embedded and the side table and record digest
// are updated. The record must already be persisted.
func (ix *Indexer) Index(ctx context.Context, record *core.Record) error {
	text := record.DerivedText()

	if text == "" {
		if err := ix.store.DeleteEmbedding(ctx, record.Kind, record.Id); err != nil {
			return err
		}
		if record.TextDigest != 0 {
			record.TextDigest = 0
			if _, err := ix.store.UpdateRecords(ctx, record); err != nil {
				return err
			}
		}
		return nil
	}

	digest := core.TextDigest(text)
	if digest == record.TextDigest {
		return nil
	}

	vector, err := ix.embedder.EmbedText(ctx, text)
	if err != nil {
		return err
	}
	if len(vector) != core.EmbeddingDims {
		return fmt.Errorf("embedder returned %d dimensions, want %d", len(vector), core.EmbeddingDims)
	}
	normalize(vector)

	if err := ix.store.PutEmbedding(ctx, record.Kind, record.Id, vector); err != nil {
		return err
	}

	// Persist the digest only after the embedding is in place, so a failed
	// write is retried on the next pass instead of skipped.
	record.TextDigest = digest
	_, err = ix.store.UpdateRecords(ctx, record)
	return err
}

// Save validates and persists a record, then indexes it inline. A record
// with a zero ID is added, anything else updated.
//
// An indexing failure does not fail the save: the record is durable and its
// embedding is at worst stale until the next index pass.
func (ix *Indexer) Save(ctx context.Context, record *core.Record) error {
	if err := core.ValidateRecord(record); err != nil {
		return err
	}

	if record.Id == 0 {
		if _, err := ix.store.AddRecords(ctx, record); err != nil {
			return err
		}
	} else {
		if _, err := ix.store.UpdateRecords(ctx, record); err != nil {
			return err
		}
	}

	if err := ix.Index(ctx, record); err != nil {
		ix.logger.Warn("record saved but indexing failed, embedding is stale until reindex",
			"kind", record.Kind, "id", record.Id, "err", err)
	}
	return nil
}

// normalize scales a vector to unit length in place.
func normalize(vector []float32) {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares == 0 {
		return
	}
	norm := float32(1.0 / math.Sqrt(sumSquares))
	for i := range vector {
		vector[i] *= norm
	}
}
