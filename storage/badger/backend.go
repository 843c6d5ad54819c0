package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/storage"
)

const (
	defaultSequenceBandwidth = 100
)

// Backend wraps a BadgerDB instance and provides low-level operations.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// GetSequence returns a BadgerDB sequence for generating sequential IDs.
func (b *Backend) GetSequence(name string) (*badger.Sequence, error) {
	return b.db.GetSequence([]byte(name), defaultSequenceBandwidth)
}

// WithTransaction executes a function within a transaction.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// FindSimilar scores stored embeddings of the given kind against the query
// vector. Cosine similarity over unit-normalized vectors reduces to the dot
// product. Results are ordered by descending score, ties broken by ascending
// record ID, and capped at limit.
func (b *Backend) FindSimilar(ctx context.Context, kind core.Kind, vector []float32, candidates []core.ID, limit int) ([]core.SimilarityMatch, error) {
	var results []core.SimilarityMatch

	kinds := []core.Kind{kind}
	if kind == core.KindAny {
		kinds = []core.Kind{core.KindTask, core.KindNote}
	}

	err := b.WithTx(func(tx *badger.Txn) error {
		for _, k := range kinds {
			var err error
			if candidates != nil {
				results, err = b.scoreCandidates(tx, k, vector, candidates, results)
			} else {
				results, err = b.scanEmbeddings(tx, k, vector, results)
			}
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		// Deterministic tie-break on ID, then kind
		if a.Id < b.Id {
			return -1
		}
		if a.Id > b.Id {
			return 1
		}
		return int(a.Kind) - int(b.Kind)
	})

	if limit >= 0 && len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// scanEmbeddings scores every stored embedding of one kind.
func (b *Backend) scanEmbeddings(tx *badger.Txn, kind core.Kind, vector []float32, results []core.SimilarityMatch) ([]core.SimilarityMatch, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(embeddingPrefix(kind) + ":")
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		id, ok := embeddingKeyID(item.Key())
		if !ok {
			b.logger.Warn("skipping malformed embedding key", "key", string(item.Key()))
			continue
		}

		var stored []float32
		err := item.Value(func(val []byte) error {
			var err error
			stored, err = storage.UnpackVector(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		if len(stored) == 0 {
			continue
		}

		results = append(results, core.SimilarityMatch{
			Id:    id,
			Kind:  kind,
			Score: dotProduct(vector, stored),
		})
	}

	return results, nil
}

// scoreCandidates scores only the supplied candidate IDs. Candidates without
// a stored embedding are skipped.
func (b *Backend) scoreCandidates(tx *badger.Txn, kind core.Kind, vector []float32, candidates []core.ID, results []core.SimilarityMatch) ([]core.SimilarityMatch, error) {
	for _, id := range candidates {
		item, err := tx.Get(makeEmbeddingKey(kind, id))
		if err == badger.ErrKeyNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}

		var stored []float32
		err = item.Value(func(val []byte) error {
			var err error
			stored, err = storage.UnpackVector(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		if len(stored) == 0 {
			continue
		}

		results = append(results, core.SimilarityMatch{
			Id:    id,
			Kind:  kind,
			Score: dotProduct(vector, stored),
		})
	}

	return results, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
