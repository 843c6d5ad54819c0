package mock

import (
	"context"
	"time"

	"github.com/poiesic/notefind/core"
)

// MockQueryClassifier is a test double for ai.QueryClassifier.
// It allows custom behavior injection via function fields.
type MockQueryClassifier struct {
	// ClassifyQueryFunc is called by ClassifyQuery if set.
	// If nil, every query classifies as a plain semantic search.
	ClassifyQueryFunc func(ctx context.Context, query string, now time.Time) (*core.QueryIntent, error)

	callCount int
}

// NewMockQueryClassifier creates a mock classifier with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockClassifier().
func NewMockQueryClassifier() *MockQueryClassifier {
	return &MockQueryClassifier{}
}

// ClassifyQuery returns the injected intent, or the semantic default.
func (m *MockQueryClassifier) ClassifyQuery(ctx context.Context, query string, now time.Time) (*core.QueryIntent, error) {
	m.callCount++

	if m.ClassifyQueryFunc != nil {
		return m.ClassifyQueryFunc(ctx, query, now)
	}

	return core.DefaultIntent(query), nil
}

// CallCount returns the number of times ClassifyQuery was called.
func (m *MockQueryClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockQueryClassifier) Reset() {
	m.callCount = 0
	m.ClassifyQueryFunc = nil
}
