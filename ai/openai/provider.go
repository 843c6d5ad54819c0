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


package openai

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/notefind/ai"
	"github.com/poiesic/notefind/core"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
//
// The underlying model clients are created lazily on first use, guarded by a
// sync.Once so concurrent first callers share a single initialization. This
// keeps opening a database cheap when the AI services are never reached.
type Provider struct {
	config *ai.Config
	logger *slog.Logger

	initOnce   sync.Once
	initErr    error
	embedder   *Embedder
	classifier *QueryClassifier
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use; the remote clients are
// not contacted until the first embedding or classification call.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Provider{
		config: config,
		logger: slog.Default().With("component", "openai-provider"),
	}, nil
}

// init builds the concrete services exactly once.
func (p *Provider) init() error {
	p.initOnce.Do(func() {
		embedder, err := newEmbedder(p.config)
		if err != nil {
			p.initErr = err
			return
		}
		classifier, err := newQueryClassifier(p.config)
		if err != nil {
			p.initErr = err
			return
		}
		p.embedder = embedder
		p.classifier = classifier
	})
	return p.initErr
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return &lazyEmbedder{provider: p}
}

// QueryClassifier returns the query classification service.
func (p *Provider) QueryClassifier() ai.QueryClassifier {
	return &lazyClassifier{provider: p}
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}

// lazyEmbedder defers client construction to the first call.
type lazyEmbedder struct {
	provider *Provider
}

func (l *lazyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := l.provider.init(); err != nil {
		return nil, err
	}
	return l.provider.embedder.EmbedText(ctx, text)
}

func (l *lazyEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if err := l.provider.init(); err != nil {
		return nil, err
	}
	return l.provider.embedder.EmbedTexts(ctx, texts)
}

// lazyClassifier defers client construction to the first call.
type lazyClassifier struct {
	provider *Provider
}

func (l *lazyClassifier) ClassifyQuery(ctx context.Context, query string, now time.Time) (*core.QueryIntent, error) {
	if err := l.provider.init(); err != nil {
		return nil, err
	}
	return l.provider.classifier.ClassifyQuery(ctx, query, now)
}
