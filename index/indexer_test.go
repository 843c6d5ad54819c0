package index

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/notefind/ai/mock"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/storage"
	"github.com/poiesic/notefind/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type indexFixture struct {
	indexer  *Indexer
	store    storage.RecordStore
	embedder *mock.MockEmbedder
}

func newIndexFixture(t *testing.T) *indexFixture {
	t.Helper()

	store, backend, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockQueryClassifier())

	indexer, err := NewIndexer(store, provider)
	require.NoError(t, err)

	return &indexFixture{indexer: indexer, store: store, embedder: embedder}
}

func TestNewIndexer_Validation(t *testing.T) {
	_, err := NewIndexer(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrRecordStoreRequired)

	store, backend, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer func() {
		store.Close()
		backend.Close()
	}()

	_, err = NewIndexer(store, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)
}

func TestSave_NewRecordIsIndexed(t *testing.T) {
	f := newIndexFixture(t)
	ctx := context.Background()

	record := &core.Record{Kind: core.KindTask, Title: "Plan launch", Body: "book the venue"}
	require.NoError(t, f.indexer.Save(ctx, record))

	assert.NotZero(t, record.Id)
	assert.Equal(t, core.TextDigest("Plan launch book the venue"), record.TextDigest)

	vector, err := f.store.GetEmbedding(ctx, core.KindTask, record.Id)
	require.NoError(t, err)
	assert.Len(t, vector, core.EmbeddingDims)

	stored, err := f.store.GetRecord(ctx, core.KindTask, record.Id)
	require.NoError(t, err)
	assert.Equal(t, record.TextDigest, stored.TextDigest)
}

func TestSave_InvalidRecordRejected(t *testing.T) {
	f := newIndexFixture(t)

	err := f.indexer.Save(context.Background(), &core.Record{Kind: core.KindTask})
	assert.ErrorIs(t, err, core.ErrEmptyTitle)
	assert.Zero(t, f.embedder.CallCount())
}

func TestSave_EmbeddingFailureDoesNotFailSave(t *testing.T) {
	f := newIndexFixture(t)
	ctx := context.Background()

	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}

	record := &core.Record{Kind: core.KindNote, Title: "Kyoto trip"}
	require.NoError(t, f.indexer.Save(ctx, record))

	// The record made it to storage
	stored, err := f.store.GetRecord(ctx, core.KindNote, record.Id)
	require.NoError(t, err)
	assert.Zero(t, stored.TextDigest)

	// but no embedding did
	_, err = f.store.GetEmbedding(ctx, core.KindNote, record.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIndex_UnchangedTextIsNoOp(t *testing.T) {
	f := newIndexFixture(t)
	ctx := context.Background()

	record := &core.Record{Kind: core.KindTask, Title: "stable"}
	require.NoError(t, f.indexer.Save(ctx, record))
	calls := f.embedder.CallCount()

	require.NoError(t, f.indexer.Index(ctx, record))
	assert.Equal(t, calls, f.embedder.CallCount())
}

func TestIndex_ChangedTextReEmbeds(t *testing.T) {
	f := newIndexFixture(t)
	ctx := context.Background()

	record := &core.Record{Kind: core.KindTask, Title: "before"}
	require.NoError(t, f.indexer.Save(ctx, record))
	before, err := f.store.GetEmbedding(ctx, core.KindTask, record.Id)
	require.NoError(t, err)

	record.Title = "after, something quite different"
	require.NoError(t, f.indexer.Save(ctx, record))
	after, err := f.store.GetEmbedding(ctx, core.KindTask, record.Id)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
	assert.Equal(t, core.TextDigest("after, something quite different"), record.TextDigest)
}

func TestIndex_EmptyTextRemovesEmbedding(t *testing.T) {
	f := newIndexFixture(t)
	ctx := context.Background()

	record := &core.Record{Kind: core.KindNote, Title: "temporary"}
	require.NoError(t, f.indexer.Save(ctx, record))

	// Notes only require a title on save; blank both fields and index
	// directly to exercise the removal path.
	record.Title = "  "
	record.Body = ""
	require.NoError(t, f.indexer.Index(ctx, record))

	assert.Zero(t, record.TextDigest)
	_, err := f.store.GetEmbedding(ctx, core.KindNote, record.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	stored, err := f.store.GetRecord(ctx, core.KindNote, record.Id)
	require.NoError(t, err)
	assert.Zero(t, stored.TextDigest)
}

func TestIndex_StoredVectorIsUnitLength(t *testing.T) {
	f := newIndexFixture(t)
	ctx := context.Background()

	record := &core.Record{Kind: core.KindTask, Title: "unit length check"}
	require.NoError(t, f.indexer.Save(ctx, record))

	vector, err := f.store.GetEmbedding(ctx, core.KindTask, record.Id)
	require.NoError(t, err)

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, sumSquares, 1e-4)
}
