package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/notefind/ai"
	"github.com/poiesic/notefind/core"
	"github.com/poiesic/notefind/storage"
)

const defaultClassifierTimeout = 10 * time.Second

// Searcher answers free-form queries over stored tasks and notes.
// A query is first classified into an intent, then routed to exact filtering,
// vector similarity, or a hybrid of both.
type Searcher struct {
	store             storage.RecordStore
	embedder          ai.Embedder
	classifier        ai.QueryClassifier
	classifierTimeout time.Duration
	logger            *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClassifierTimeout bounds a single classification call. When the
// deadline expires the query falls back to plain semantic retrieval.
func WithClassifierTimeout(timeout time.Duration) Option {
	return func(s *Searcher) error {
		if timeout <= 0 {
			return fmt.Errorf("classifier timeout must be positive")
		}
		s.classifierTimeout = timeout
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.RecordStore, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrRecordStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		store:             store,
		embedder:          provider.Embedder(),
		classifier:        provider.QueryClassifier(),
		classifierTimeout: defaultClassifierTimeout,
		logger:            slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search answers a free-form query. The now timestamp anchors relative date
// expressions during classification.
//
// Structured intents return up to core.MaxStructuredResults unscored records
// ordered by ID; semantic and hybrid intents return up to
// core.MaxSemanticResults records ranked by similarity. An unreachable
// embedding service yields ErrSearchUnavailable; storage errors propagate
// unchanged.
func (s *Searcher) Search(ctx context.Context, query string, now time.Time) ([]core.RankedResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []core.RankedResult{}, nil
	}

	intent := s.classify(ctx, query, now)

	s.logger.Debug("routing query",
		"type", intent.Type,
		"kind", intent.Kind,
		"filters", len(intent.Filters))

	switch intent.Type {
	case core.QueryStructured:
		return s.searchStructured(ctx, intent)
	case core.QueryHybrid:
		return s.searchHybrid(ctx, intent, query)
	default:
		return s.searchSemantic(ctx, intent, query)
	}
}

// classify obtains a retrieval intent for the query. Classification is an
// optimization, never a gate: any oracle failure, timeout, or schema
// violation falls back to a plain semantic search over all records.
func (s *Searcher) classify(ctx context.Context, query string, now time.Time) *core.QueryIntent {
	ctx, cancel := context.WithTimeout(ctx, s.classifierTimeout)
	defer cancel()

	intent, err := s.classifier.ClassifyQuery(ctx, query, now)
	if err != nil {
		s.logger.Warn("query classification failed, falling back to semantic search",
			"query", query, "err", err)
		return core.DefaultIntent(query)
	}
	if intent == nil || !intent.Type.IsValid() {
		s.logger.Warn("classifier returned invalid intent, falling back to semantic search",
			"query", query)
		return core.DefaultIntent(query)
	}

	// Structured and hybrid plans are meaningless without a concrete kind:
	// the field whitelist is kind-specific.
	if intent.Type != core.QuerySemantic && core.ValidateKind(intent.Kind) != nil {
		s.logger.Warn("classifier returned filtered intent without a kind, falling back to semantic search",
			"query", query, "type", intent.Type)
		return core.DefaultIntent(query)
	}

	return intent
}

// searchStructured answers the query with exact filters only.
func (s *Searcher) searchStructured(ctx context.Context, intent *core.QueryIntent) ([]core.RankedResult, error) {
	filters := s.compileFilters(intent)

	records, err := s.store.Filter(ctx, intent.Kind, filters)
	if err != nil {
		return nil, err
	}

	if len(records) > core.MaxStructuredResults {
		records = records[:core.MaxStructuredResults]
	}

	results := make([]core.RankedResult, 0, len(records))
	for _, record := range records {
		results = append(results, core.RankedResult{Record: record})
	}
	return results, nil
}

// searchSemantic answers the query with vector similarity over all records
// of the intent's kind.
func (s *Searcher) searchSemantic(ctx context.Context, intent *core.QueryIntent, query string) ([]core.RankedResult, error) {
	text := embeddableText(intent, query)
	if text == "" {
		return []core.RankedResult{}, nil
	}

	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		s.logger.Error("error generating query embedding", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	matches, err := s.store.FindSimilar(ctx, intent.Kind, vector, nil, core.MaxSemanticResults)
	if err != nil {
		return nil, err
	}

	results := make([]core.RankedResult, 0, len(matches))
	for _, match := range matches {
		record, err := s.store.GetRecord(ctx, match.Kind, match.Id)
		if errors.Is(err, storage.ErrNotFound) {
			// Orphaned embedding, the record is gone
			s.logger.Warn("dropping match without a record", "kind", match.Kind, "id", match.Id)
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, core.RankedResult{
			Record: record,
			Score:  match.Score,
			Scored: true,
		})
	}
	return results, nil
}

// searchHybrid filters first, then ranks the surviving candidates by
// similarity. An empty candidate set is an answer in itself: the exact
// constraints matched nothing, so there is no semantic fallback.
func (s *Searcher) searchHybrid(ctx context.Context, intent *core.QueryIntent, query string) ([]core.RankedResult, error) {
	filters := s.compileFilters(intent)

	candidates, err := s.store.Filter(ctx, intent.Kind, filters)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []core.RankedResult{}, nil
	}

	text := embeddableText(intent, query)
	if text == "" {
		return []core.RankedResult{}, nil
	}

	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		s.logger.Error("error generating query embedding", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	byID := make(map[core.ID]*core.Record, len(candidates))
	ids := make([]core.ID, 0, len(candidates))
	for _, record := range candidates {
		byID[record.Id] = record
		ids = append(ids, record.Id)
	}

	matches, err := s.store.FindSimilar(ctx, intent.Kind, vector, ids, core.MaxSemanticResults)
	if err != nil {
		return nil, err
	}

	results := make([]core.RankedResult, 0, len(matches))
	for _, match := range matches {
		record, ok := byID[match.Id]
		if !ok {
			continue
		}
		results = append(results, core.RankedResult{
			Record: record,
			Score:  match.Score,
			Scored: true,
		})
	}
	return results, nil
}

// compileFilters validates the intent's raw predicates. Dropped predicates
// are logged, not fatal: the rest of the plan still executes.
func (s *Searcher) compileFilters(intent *core.QueryIntent) []core.Filter {
	filters, diags := Compile(intent.Kind, intent.Filters)
	for _, diag := range diags {
		s.logger.Warn("dropping classifier predicate", "kind", intent.Kind, "err", diag)
	}
	return filters
}

// embeddableText selects the text to embed for similarity search: the
// classifier's semantic remainder when present, the raw query otherwise.
func embeddableText(intent *core.QueryIntent, query string) string {
	if terms := strings.TrimSpace(intent.SearchTerms); terms != "" {
		return terms
	}
	return strings.TrimSpace(query)
}
