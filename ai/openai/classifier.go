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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/notefind/ai"
	"github.com/poiesic/notefind/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// QueryClassifier implements ai.QueryClassifier using OpenAI-compatible chat APIs.
type QueryClassifier struct {
	client llms.Model
	logger *slog.Logger
}

// intent is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type intent struct {
	Type        string           `json:"type"`
	Kind        string           `json:"kind"`
	Filters     []core.Predicate `json:"filters"`
	SearchTerms string           `json:"searchTerms"`
}

// newQueryClassifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newQueryClassifier(config *ai.Config) (*QueryClassifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/classification
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken("none"),
		openai.WithModel(config.ClassifierModel),
	)
	if err != nil {
		return nil, err
	}

	return &QueryClassifier{
		client: client,
		logger: slog.Default().With("component", "openai-classifier"),
	}, nil
}

// NewQueryClassifier creates a new query classifier using the provided configuration.
//
// Returns ai.QueryClassifier interface to enforce abstraction.
func NewQueryClassifier(config *ai.Config) (ai.QueryClassifier, error) {
	return newQueryClassifier(config)
}

// ClassifyQuery asks the LLM how a free-form query should be answered.
// The returned intent is untrusted; its predicates must still be compiled
// against the field whitelist before they reach storage.
func (c *QueryClassifier) ClassifyQuery(ctx context.Context, query string, now time.Time) (*core.QueryIntent, error) {
	systemPrompt := buildClassifierPrompt(now)
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(query),
			},
		},
	}

	// Try up to 3 times in case of malformed or schema-violating JSON
	var result intent
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := c.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			c.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			c.logger.Debug("no choices returned from model")
			return nil, fmt.Errorf("classifier returned no choices")
		}

		responseText := stripCodeFences(response.Choices[0].Content)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			c.logger.Warn("error parsing classifier response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		if !core.QueryType(result.Type).IsValid() {
			lastErr = fmt.Errorf("classifier returned unknown query type %q", result.Type)
			c.logger.Warn("classifier schema violation",
				"attempt", attempt+1,
				"type", result.Type)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		c.logger.Error("failed to parse classifier response after retries", "err", lastErr)
		return nil, lastErr
	}

	classified := &core.QueryIntent{
		Type:        core.QueryType(result.Type),
		Kind:        core.KindFromString(result.Kind),
		Filters:     result.Filters,
		SearchTerms: strings.TrimSpace(result.SearchTerms),
	}

	c.logger.Debug("classified query",
		"type", classified.Type,
		"kind", classified.Kind,
		"filters", len(classified.Filters))

	return classified, nil
}

// stripCodeFences removes markdown code fences some models wrap JSON in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
