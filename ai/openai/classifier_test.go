package openai

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/poiesic/notefind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain json", `{"type":"semantic"}`, `{"type":"semantic"}`},
		{"json fence", "```json\n{\"type\":\"semantic\"}\n```", `{"type":"semantic"}`},
		{"bare fence", "```\n{\"type\":\"semantic\"}\n```", `{"type":"semantic"}`},
		{"surrounding whitespace", "  \n{\"type\":\"semantic\"}\n  ", `{"type":"semantic"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFences(tt.input))
		})
	}
}

func TestRepairJSON(t *testing.T) {
	t.Run("missing opening quote on key", func(t *testing.T) {
		broken := `{type": "semantic", kind": "any"}`
		repaired := repairJSON(broken)

		var parsed map[string]any
		err := json.Unmarshal([]byte(repaired), &parsed)
		require.NoError(t, err)
		assert.Equal(t, "semantic", parsed["type"])
		assert.Equal(t, "any", parsed["kind"])
	})

	t.Run("valid json unchanged", func(t *testing.T) {
		valid := `{"type": "hybrid", "filters": []}`
		assert.Equal(t, valid, repairJSON(valid))
	})
}

func TestIntentUnmarshal(t *testing.T) {
	raw := `{
	  "type": "hybrid",
	  "kind": "task",
	  "filters": [
	    {"field":"priority","operator":"=","value":"High"},
	    {"field":"tags","operator":"IN","value":["work","errands"]}
	  ],
	  "searchTerms": "Apollo launch"
	}`

	var parsed intent
	require.NoError(t, json.Unmarshal([]byte(raw), &parsed))

	assert.Equal(t, "hybrid", parsed.Type)
	assert.Equal(t, "task", parsed.Kind)
	assert.Equal(t, "Apollo launch", parsed.SearchTerms)
	require.Len(t, parsed.Filters, 2)
	assert.Equal(t, "priority", parsed.Filters[0].Field)
	assert.Equal(t, "High", parsed.Filters[0].Value)

	list, ok := parsed.Filters[1].Value.([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)
}

func TestBuildClassifierPrompt(t *testing.T) {
	now := time.Date(2025, 8, 15, 10, 0, 0, 0, time.UTC)
	prompt := buildClassifierPrompt(now)

	// The whitelists, operator set and current time must all reach the model.
	assert.Contains(t, prompt, "2025-08-15T10:00:00Z")
	assert.Contains(t, prompt, string(core.FieldDueDate))
	assert.Contains(t, prompt, string(core.FieldContent))
	assert.Contains(t, prompt, "NOT IN")
	assert.Contains(t, prompt, `"structured", "semantic", "hybrid"`)
}
