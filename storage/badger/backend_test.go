package badger

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/notefind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())

	err = backend.Close()
	require.NoError(t, err)

	assert.True(t, backend.IsClosed())
}

func TestFindSimilar_NoEmbeddings(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	results, err := backend.FindSimilar(context.Background(), core.KindTask, []float32{1, 0, 0}, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_DescendingOrder(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer func() {
		store.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Unit vectors with cosine similarities 0.9, 0.5 and 0.1 to the query.
	require.NoError(t, store.PutEmbedding(ctx, core.KindTask, 1, unitWithSimilarity(0.5)))
	require.NoError(t, store.PutEmbedding(ctx, core.KindTask, 2, unitWithSimilarity(0.9)))
	require.NoError(t, store.PutEmbedding(ctx, core.KindTask, 3, unitWithSimilarity(0.1)))

	query := []float32{1, 0}
	results, err := backend.FindSimilar(ctx, core.KindTask, query, nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, core.ID(2), results[0].Id)
	assert.Equal(t, core.ID(1), results[1].Id)
	assert.Equal(t, core.ID(3), results[2].Id)

	assert.InDelta(t, 0.9, results[0].Score, 1e-5)
	assert.InDelta(t, 0.5, results[1].Score, 1e-5)
	assert.InDelta(t, 0.1, results[2].Score, 1e-5)
}

func TestFindSimilar_TieBreakAscendingID(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer func() {
		store.Close()
		backend.Close()
	}()

	ctx := context.Background()
	same := []float32{0, 1}
	require.NoError(t, store.PutEmbedding(ctx, core.KindNote, 9, same))
	require.NoError(t, store.PutEmbedding(ctx, core.KindNote, 3, same))
	require.NoError(t, store.PutEmbedding(ctx, core.KindNote, 6, same))

	results, err := backend.FindSimilar(ctx, core.KindNote, []float32{0, 1}, nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, core.ID(3), results[0].Id)
	assert.Equal(t, core.ID(6), results[1].Id)
	assert.Equal(t, core.ID(9), results[2].Id)
}

func TestFindSimilar_CandidateRestriction(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer func() {
		store.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, store.PutEmbedding(ctx, core.KindTask, 1, unitWithSimilarity(0.9)))
	require.NoError(t, store.PutEmbedding(ctx, core.KindTask, 2, unitWithSimilarity(0.8)))
	require.NoError(t, store.PutEmbedding(ctx, core.KindTask, 3, unitWithSimilarity(0.7)))

	results, err := backend.FindSimilar(ctx, core.KindTask, []float32{1, 0}, []core.ID{1, 3}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.ID(1), results[0].Id)
	assert.Equal(t, core.ID(3), results[1].Id)
}

func TestFindSimilar_CandidateWithoutEmbeddingSkipped(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer func() {
		store.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, store.PutEmbedding(ctx, core.KindTask, 1, []float32{1, 0}))

	results, err := backend.FindSimilar(ctx, core.KindTask, []float32{1, 0}, []core.ID{1, 42}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.ID(1), results[0].Id)
}

func TestFindSimilar_Limit(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer func() {
		store.Close()
		backend.Close()
	}()

	ctx := context.Background()
	for i := 1; i <= 15; i++ {
		require.NoError(t, store.PutEmbedding(ctx, core.KindNote, core.ID(i), []float32{1, 0}))
	}

	results, err := backend.FindSimilar(ctx, core.KindNote, []float32{1, 0}, nil, core.MaxSemanticResults)
	require.NoError(t, err)
	assert.Len(t, results, core.MaxSemanticResults)
}

func TestFindSimilar_KindAnySpansTasksAndNotes(t *testing.T) {
	store, backend, err := NewMemoryStore()
	require.NoError(t, err)
	defer func() {
		store.Close()
		backend.Close()
	}()

	ctx := context.Background()
	require.NoError(t, store.PutEmbedding(ctx, core.KindTask, 1, unitWithSimilarity(0.9)))
	require.NoError(t, store.PutEmbedding(ctx, core.KindNote, 1, unitWithSimilarity(0.4)))

	results, err := backend.FindSimilar(ctx, core.KindAny, []float32{1, 0}, nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.KindTask, results[0].Kind)
	assert.Equal(t, core.KindNote, results[1].Kind)
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 1.0, dotProduct([]float32{1, 0}, []float32{1, 0}), 1e-6)
	assert.InDelta(t, 0.0, dotProduct([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, dotProduct([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	// Mismatched lengths only use the shared prefix
	assert.InDelta(t, 0.5, dotProduct([]float32{0.5}, []float32{1, 1, 1}), 1e-6)
}

// unitWithSimilarity builds a 2-dimensional unit vector whose dot product
// with (1, 0) equals cos.
func unitWithSimilarity(cos float64) []float32 {
	sin := 1 - cos*cos
	if sin < 0 {
		sin = 0
	}
	return []float32{float32(cos), float32(math.Sqrt(sin))}
}
