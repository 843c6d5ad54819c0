package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/storage"
)

// RecordStore implements storage.RecordStore for BadgerDB.
type RecordStore struct {
	backend *Backend
	taskSeq *badger.Sequence
	noteSeq *badger.Sequence
}

var _ storage.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates a new RecordStore.
// Returns the storage.RecordStore interface to keep callers decoupled from
// BadgerDB specifics.
func NewRecordStore(backend *Backend) (storage.RecordStore, error) {
	taskSeq, err := backend.GetSequence(taskIDSeq)
	if err != nil {
		return nil, err
	}
	noteSeq, err := backend.GetSequence(noteIDSeq)
	if err != nil {
		taskSeq.Release()
		return nil, err
	}

	return &RecordStore{
		backend: backend,
		taskSeq: taskSeq,
		noteSeq: noteSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *RecordStore) Close() error {
	if err := r.taskSeq.Release(); err != nil {
		return err
	}
	return r.noteSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *RecordStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *RecordStore) FindSimilar(ctx context.Context, kind core.Kind, vector []float32, candidates []core.ID, limit int) ([]core.SimilarityMatch, error) {
	return r.backend.FindSimilar(ctx, kind, vector, candidates, limit)
}

// nextID draws the next identifier from the kind's sequence.
func (r *RecordStore) nextID(kind core.Kind) (core.ID, error) {
	seq := r.taskSeq
	if kind == core.KindNote {
		seq = r.noteSeq
	}
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// AddRecords adds one or more records to storage.
func (r *RecordStore) AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			if err := core.ValidateKind(record.Kind); err != nil {
				return err
			}

			id, err := r.nextID(record.Kind)
			if err != nil {
				return err
			}
			record.Id = id

			record.CreatedAt = time.Now().UTC()
			record.UpdatedAt = record.CreatedAt

			key := makeRecordKey(record.Kind, record.Id)
			if err := tx.Set(key, storage.MarshalRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// UpdateRecords updates existing records.
func (r *RecordStore) UpdateRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeRecordKey(record.Kind, record.Id)

			old, err := r.readRecord(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			record.CreatedAt = old.CreatedAt
			record.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// DeleteRecords removes records and their stored embeddings.
func (r *RecordStore) DeleteRecords(ctx context.Context, kind core.Kind, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeRecordKey(kind, id)

			record, err := r.readRecord(tx, key)
			if err != nil {
				return err
			}
			if record == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(makeEmbeddingKey(kind, id)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRecord retrieves a single record by kind and ID.
func (r *RecordStore) GetRecord(ctx context.Context, kind core.Kind, id core.ID) (*core.Record, error) {
	var result *core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readRecord(tx, makeRecordKey(kind, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecords retrieves multiple records of one kind by their IDs.
func (r *RecordStore) GetRecords(ctx context.Context, kind core.Kind, ids ...core.ID) ([]*core.Record, error) {
	var result []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readRecord(tx, makeRecordKey(kind, id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetAllRecords retrieves every record of the given kind, ordered by
// ascending ID.
func (r *RecordStore) GetAllRecords(ctx context.Context, kind core.Kind) ([]*core.Record, error) {
	return r.Filter(ctx, kind, nil)
}

// Filter retrieves the records of one kind matching every filter clause,
// ordered by ascending ID. A nil or empty filter list matches everything.
func (r *RecordStore) Filter(ctx context.Context, kind core.Kind, filters []core.Filter) ([]*core.Record, error) {
	kinds := []core.Kind{kind}
	if kind == core.KindAny {
		kinds = []core.Kind{core.KindTask, core.KindNote}
	}

	var results []*core.Record
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, k := range kinds {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = []byte(recordPrefix(k) + ":")
			iter := tx.NewIterator(opts)

			for iter.Rewind(); iter.Valid(); iter.Next() {
				var record *core.Record
				err := iter.Item().Value(func(val []byte) error {
					var err error
					record, err = storage.UnmarshalRecord(val)
					return err
				})
				if err != nil {
					iter.Close()
					return err
				}
				if record == nil {
					continue
				}

				if matchRecord(record, filters) {
					results = append(results, record)
				}
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sortRecordsByID(results)
	return results, nil
}

// PutEmbedding stores the embedding for a record in the side table.
func (r *RecordStore) PutEmbedding(ctx context.Context, kind core.Kind, id core.ID, vector []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(kind, id), storage.PackVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEmbedding retrieves the stored embedding for a record.
func (r *RecordStore) GetEmbedding(ctx context.Context, kind core.Kind, id core.ID) ([]float32, error) {
	var vector []float32
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(kind, id))
		if err == badger.ErrKeyNotFound {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vector, err = storage.UnpackVector(val)
			return err
		})
	}, false)
	return vector, err
}

// DeleteEmbedding removes the stored embedding for a record.
func (r *RecordStore) DeleteEmbedding(ctx context.Context, kind core.Kind, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeEmbeddingKey(kind, id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// readRecord reads and deserializes a record, returning nil if absent.
func (r *RecordStore) readRecord(tx *badger.Txn, key []byte) (*core.Record, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record *core.Record
	err = item.Value(func(val []byte) error {
		record, err = storage.UnmarshalRecord(val)
		return err
	})
	return record, err
}

// sortRecordsByID orders records by ascending identifier for deterministic
// structured results. Record keys are string-formatted, so iteration order
// is lexicographic, not numeric.
func sortRecordsByID(records []*core.Record) {
	slices.SortFunc(records, func(a, b *core.Record) int {
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return 0
	})
}
