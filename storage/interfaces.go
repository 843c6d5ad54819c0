package storage

import (
	"context"

	"github.com/poiesic/notefind/core"
)

// RecordStore provides storage for task and note records plus their
// embedding side table. Implementations must be thread-safe and support
// concurrent access; searches may run concurrently with writes and may
// briefly observe a stale embedding after an update.
type RecordStore interface {
	// AddRecords adds one or more records to storage.
	// Generates IDs from the per-kind sequence and sets CreatedAt/UpdatedAt.
	// Returns the records with generated IDs and timestamps populated.
	AddRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// UpdateRecords updates existing records.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any record doesn't exist.
	UpdateRecords(ctx context.Context, records ...*core.Record) ([]*core.Record, error)

	// DeleteRecords removes records by kind and IDs, along with any stored
	// embeddings. Returns ErrNotFound if any record doesn't exist.
	DeleteRecords(ctx context.Context, kind core.Kind, ids ...core.ID) error

	// GetRecord retrieves a single record by kind and ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, kind core.Kind, id core.ID) (*core.Record, error)

	// GetRecords retrieves multiple records of one kind by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, kind core.Kind, ids ...core.ID) ([]*core.Record, error)

	// GetAllRecords retrieves every record of the given kind,
	// ordered by ascending ID. KindAny retrieves tasks then notes.
	GetAllRecords(ctx context.Context, kind core.Kind) ([]*core.Record, error)

	// Filter retrieves the records of one kind matching every filter clause,
	// ordered by ascending ID. Filter values are opaque literals; the store
	// compares them with typed operations and never assembles query text.
	Filter(ctx context.Context, kind core.Kind, filters []core.Filter) ([]*core.Record, error)

	// PutEmbedding stores the embedding for a record as raw little-endian
	// float32 bytes in the side table, replacing any previous value.
	PutEmbedding(ctx context.Context, kind core.Kind, id core.ID, vector []float32) error

	// GetEmbedding retrieves the stored embedding for a record.
	// Returns ErrNotFound if no embedding is stored.
	GetEmbedding(ctx context.Context, kind core.Kind, id core.ID) ([]float32, error)

	// DeleteEmbedding removes the stored embedding for a record.
	// Deleting a missing embedding is not an error.
	DeleteEmbedding(ctx context.Context, kind core.Kind, id core.ID) error

	// FindSimilar scores stored embeddings of the given kind against the
	// query vector by cosine similarity over unit vectors. If candidates is
	// non-nil only those IDs are scored; otherwise every record with a
	// stored embedding is scored. Results are ordered by descending score,
	// ties broken by ascending ID, capped at limit.
	FindSimilar(ctx context.Context, kind core.Kind, vector []float32, candidates []core.ID, limit int) ([]core.SimilarityMatch, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}
