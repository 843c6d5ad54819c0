package reindex

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/poiesic/notefind/ai"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/storage"
)

// BatchProcessor re-embeds batches of records.
// Unlike the inline write path, reindexing is unconditional: every record
// with derived text is re-embedded even when its digest is unchanged, since
// the operation exists to migrate stored vectors to a new model.
type BatchProcessor struct {
	store          storage.RecordStore
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(store storage.RecordStore, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process re-embeds a batch of records and updates the embedding side table.
// Records without derived text have their stored embedding removed instead.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.Record) error {
	if len(records) == 0 {
		return nil
	}

	embeddable := make([]*core.Record, 0, len(records))
	texts := make([]string, 0, len(records))
	for _, record := range records {
		text := record.DerivedText()
		if text == "" {
			if err := bp.store.DeleteEmbedding(ctx, record.Kind, record.Id); err != nil {
				return err
			}
			if record.TextDigest != 0 {
				record.TextDigest = 0
				if _, err := bp.store.UpdateRecords(ctx, record); err != nil {
					return err
				}
			}
			continue
		}
		embeddable = append(embeddable, record)
		texts = append(texts, text)
	}

	if len(embeddable) == 0 {
		return nil
	}

	// Generate embeddings with retry
	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(vectors) != len(embeddable) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(embeddable), len(vectors))
	}

	for i, record := range embeddable {
		vector := vectors[i]
		if len(vector) != core.EmbeddingDims {
			return fmt.Errorf("embedder returned %d dimensions, want %d", len(vector), core.EmbeddingDims)
		}
		normalize(vector)

		if err := bp.store.PutEmbedding(ctx, record.Kind, record.Id, vector); err != nil {
			return err
		}

		record.TextDigest = core.TextDigest(texts[i])
		if _, err := bp.store.UpdateRecords(ctx, record); err != nil {
			return err
		}
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
