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

	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/storage"
)

const (
	// DefaultBatchSize is the default number of records per batch
	DefaultBatchSize = 100
)

// RecordIterator iterates over all stored tasks and notes in batches.
type RecordIterator struct {
	store     storage.RecordStore
	batchSize int
}

// NewRecordIterator creates a new record iterator.
// batchSize: number of records in each batch (must be > 0)
func NewRecordIterator(store storage.RecordStore, batchSize int) *RecordIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &RecordIterator{
		store:     store,
		batchSize: batchSize,
	}
}

// Count returns the total number of records across both kinds.
func (it *RecordIterator) Count(ctx context.Context) (int, error) {
	total := 0
	for _, kind := range []core.Kind{core.KindTask, core.KindNote} {
		records, err := it.store.GetAllRecords(ctx, kind)
		if err != nil {
			return 0, err
		}
		total += len(records)
	}
	return total, nil
}

// ForEach iterates over all tasks and notes, calling fn for each batch.
// Iteration stops on first error from fn or when all records are processed.
// Context cancellation is checked between batches.
func (it *RecordIterator) ForEach(ctx context.Context, fn func([]*core.Record) error) error {
	for _, kind := range []core.Kind{core.KindTask, core.KindNote} {
		records, err := it.store.GetAllRecords(ctx, kind)
		if err != nil {
			return err
		}

		for i := 0; i < len(records); i += it.batchSize {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			end := i + it.batchSize
			if end > len(records) {
				end = len(records)
			}

			if err := fn(records[i:end]); err != nil {
				return err
			}
		}
	}

	return nil
}
