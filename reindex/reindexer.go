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


package reindex

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/notefind/ai"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of records to process in each batch
	BatchSize int

	// Concurrency is the number of batches processed in parallel.
	// Defaults to runtime.NumCPU() / 2, with a minimum of 1.
	Concurrency int

	// ReportInterval is how often to report progress (number of records)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	concurrency := runtime.NumCPU() / 2
	if concurrency < 1 {
		concurrency = 1
	}
	return &Config{
		BatchSize:      100,
		Concurrency:    concurrency,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer re-embeds every task and note in a database, typically after the
// embedding model changed. Batches are dispatched to a bounded worker pool.
type Reindexer struct {
	store     storage.RecordStore
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *RecordIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(store storage.RecordStore, provider ai.AIProvider, config *Config, progress io.Writer) (*Reindexer, error) {
	if store == nil {
		return nil, ErrRecordStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}

	return &Reindexer{
		store:     store,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(store, provider.Embedder(), config.MaxRetries, config.RetryDelay),
		iterator:  NewRecordIterator(store, config.BatchSize),
	}, nil
}

// Run executes the reindexing operation. Every stored task and note is
// re-embedded with the configured embedder; progress is reported to the
// configured writer. The first batch error cancels the remaining work.
func (r *Reindexer) Run(ctx context.Context) error {
	total, err := r.iterator.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if total == 0 {
		fmt.Fprintf(r.progress, "No records found in database (0 records)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindexing of %d records (batch size: %d, workers: %d)\n",
		total, r.config.BatchSize, r.config.Concurrency)

	pool, err := ants.NewPool(r.config.Concurrency)
	if err != nil {
		return err
	}
	defer pool.Release()

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	err = r.iterator.ForEach(runCtx, func(batch []*core.Record) error {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := r.processor.Process(runCtx, batch); err != nil {
				fail(fmt.Errorf("failed to process batch: %w", err))
				return
			}
			tracker.Increment(len(batch))
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
		return nil
	})

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindexing complete. Processed %d records in %v (%.1f records/sec)\n",
		total, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
