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


// Package notefind is an embedded hybrid retrieval engine for personal tasks
// and notes. Records are kept in a local BadgerDB store; free-form queries
// are classified by an LLM into structured, semantic, or hybrid retrieval
// plans and answered from exact filters, vector similarity, or both.
package notefind

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/notefind/ai"
	"github.com/poiesic/notefind/ai/openai"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/index"
	"github.com/poiesic/notefind/reindex"
	"github.com/poiesic/notefind/search"
	"github.com/poiesic/notefind/storage"
	"github.com/poiesic/notefind/storage/badger"
)

// Database bundles the record store and the AI services behind one handle.
type Database struct {
	backend  *badger.Backend
	store    storage.RecordStore
	provider ai.AIProvider
	aiConfig *ai.Config
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig   *ai.Config
	aiProvider ai.AIProvider
}

// WithAIConfig sets the configuration for the default OpenAI-compatible
// provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider, bypassing the default
// OpenAI-compatible one. Used by tests to supply mocks.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiProvider = provider
	}
}

// NewDatabase opens (or creates) a database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create record store
	store, err := badger.NewRecordStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings unless one was injected
	provider := options.aiProvider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:  backend,
		store:    store,
		provider: provider,
		aiConfig: options.aiConfig,
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider, the record store, and the backend.
func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing record store", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// RecordStore returns the underlying record store.
func (db *Database) RecordStore() storage.RecordStore {
	return db.store
}

// NewSearcher creates a searcher over this database. The classifier timeout
// defaults to the AI configuration's value.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	if db.aiConfig != nil && db.aiConfig.ClassifierTimeout > 0 {
		opts = append([]search.Option{search.WithClassifierTimeout(db.aiConfig.ClassifierTimeout)}, opts...)
	}
	return search.NewSearcher(db.store, db.provider, opts...)
}

// NewIndexer creates an indexer for the record write path.
func (db *Database) NewIndexer(opts ...index.Option) (*index.Indexer, error) {
	return index.NewIndexer(db.store, db.provider, opts...)
}

// NewReindexer creates a bulk reindexer writing progress to the given writer.
func (db *Database) NewReindexer(config *reindex.Config, progress io.Writer) (*reindex.Reindexer, error) {
	return reindex.NewReindexer(db.store, db.provider, config, progress)
}

// HybridSearch answers a free-form query against the database. It is a
// convenience wrapper that builds a one-shot searcher.
func (db *Database) HybridSearch(ctx context.Context, query string, now time.Time) ([]core.RankedResult, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return searcher.Search(ctx, query, now)
}
