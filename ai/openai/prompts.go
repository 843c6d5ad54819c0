package openai

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/notefind/core"
)

const intentResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "type": {
      "type": "string",
      "enum": ["structured", "semantic", "hybrid"]
    },
    "kind": {
      "type": "string",
      "enum": ["task", "note", "any"]
    },
    "filters": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "field": {"type": "string"},
          "operator": {"type": "string"},
          "value": {}
        },
        "required": ["field", "operator", "value"],
        "additionalProperties": false
      }
    },
    "searchTerms": {
      "type": "string"
    }
  },
  "required": ["type", "kind", "filters", "searchTerms"],
  "additionalProperties": false
}`

const intentPromptTemplate = `Classify the given personal-productivity query and return the retrieval plan as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

The current time is %s. Resolve every relative date expression ("yesterday", "in the last 5 days",
"next week") into an absolute ISO-8601 timestamp relative to this time.

Query types:
- "structured": the query is answered entirely by exact filters (status, priority, dates, tags). searchTerms must be "".
- "semantic": the query is about meaning or topic and has no exact constraints. filters must be [].
- "hybrid": the query mixes exact constraints with a topical part. Provide both filters and searchTerms.

Record kinds and their filterable fields:
- task: %s
- note: %s
Use kind "any" only when the query does not commit to tasks or notes.

Allowed operators: %s.
- status values: todo, in-progress, done. priority values: Low, Medium, High.
- Date values must be full ISO-8601 timestamps such as "2025-08-12T00:00:00Z".
- IN and NOT IN take a JSON array value; every other operator takes a single scalar.
- Never invent fields or operators outside the lists above.

Example (structured):
Input: "high priority tasks that are still todo"
Output:
{
  "type": "structured",
  "kind": "task",
  "filters": [
    {"field":"priority","operator":"=","value":"High"},
    {"field":"status","operator":"=","value":"todo"}
  ],
  "searchTerms": ""
}

Example (semantic):
Input: "notes about that pasta recipe with the roasted tomatoes"
Output:
{
  "type": "semantic",
  "kind": "note",
  "filters": [],
  "searchTerms": "pasta recipe roasted tomatoes"
}

Example (hybrid, relative date with current time 2025-08-15T10:00:00Z):
Input: "high-priority tasks about the Apollo launch due in the last 5 days"
Output:
{
  "type": "hybrid",
  "kind": "task",
  "filters": [
    {"field":"priority","operator":"=","value":"High"},
    {"field":"dueDate","operator":">=","value":"2025-08-10T10:00:00Z"}
  ],
  "searchTerms": "Apollo launch"
}

Example (membership):
Input: "tasks tagged work or errands that are not done"
Output:
{
  "type": "structured",
  "kind": "task",
  "filters": [
    {"field":"tags","operator":"IN","value":["work","errands"]},
    {"field":"status","operator":"NOT IN","value":["done"]}
  ],
  "searchTerms": ""
}

Example (informal, no punctuation):
Input: "anything i wrote about the kyoto trip"
Output:
{
  "type": "semantic",
  "kind": "note",
  "filters": [],
  "searchTerms": "kyoto trip"
}`

// buildClassifierPrompt creates the system prompt with the field whitelists,
// operator set and current time embedded.
func buildClassifierPrompt(now time.Time) string {
	return fmt.Sprintf(intentPromptTemplate,
		intentResponseSchema,
		now.UTC().Format(time.RFC3339),
		joinFields(core.FieldsForKind(core.KindTask)),
		joinFields(core.FieldsForKind(core.KindNote)),
		strings.Join(operatorNames(), ", "))
}

func joinFields(fields []core.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func operatorNames() []string {
	ops := []core.Operator{core.OpEq, core.OpGt, core.OpLt, core.OpGte, core.OpLte, core.OpLike, core.OpIn, core.OpNotIn}
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return names
}
