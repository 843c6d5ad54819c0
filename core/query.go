package core

import "time"

// QueryType selects the retrieval strategy for a classified query.
type QueryType string

const (
	// QueryStructured answers the query with exact filters only.
	QueryStructured QueryType = "structured"
	// QuerySemantic answers the query with vector similarity only.
	QuerySemantic QueryType = "semantic"
	// QueryHybrid filters first, then ranks the candidates by similarity.
	QueryHybrid QueryType = "hybrid"
)

// IsValid checks if the query type is one of the supported values.
func (t QueryType) IsValid() bool {
	return t == QueryStructured || t == QuerySemantic || t == QueryHybrid
}

// Field is a filterable record attribute. Only whitelisted fields may appear
// in a compiled filter; anything else produced by the classifier is dropped.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldContent     Field = "content"
	FieldStatus      Field = "status"
	FieldPriority    Field = "priority"
	FieldDueDate     Field = "dueDate"
	FieldTags        Field = "tags"
	FieldCreatedAt   Field = "createdAt"
	FieldUpdatedAt   Field = "updatedAt"
)

// kindFields is the per-kind field whitelist.
var kindFields = map[Kind][]Field{
	KindTask: {FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldDueDate, FieldCreatedAt, FieldTags},
	KindNote: {FieldTitle, FieldContent, FieldCreatedAt, FieldUpdatedAt, FieldTags},
}

// FieldsForKind returns the filterable fields for a record kind.
func FieldsForKind(kind Kind) []Field {
	return kindFields[kind]
}

// ValidField reports whether field is whitelisted for the given kind.
func ValidField(kind Kind, field Field) bool {
	for _, f := range kindFields[kind] {
		if f == field {
			return true
		}
	}
	return false
}

// IsTimeField reports whether the field holds a timestamp. Values filtering
// a time field must be full ISO-8601.
func (f Field) IsTimeField() bool {
	return f == FieldDueDate || f == FieldCreatedAt || f == FieldUpdatedAt
}

// Operator is a comparison operator permitted in filters.
type Operator string

const (
	OpEq    Operator = "="
	OpGt    Operator = ">"
	OpLt    Operator = "<"
	OpGte   Operator = ">="
	OpLte   Operator = "<="
	OpLike  Operator = "LIKE"
	OpIn    Operator = "IN"
	OpNotIn Operator = "NOT IN"
)

// ValidOperator reports whether op is in the allowed operator set.
func ValidOperator(op Operator) bool {
	switch op {
	case OpEq, OpGt, OpLt, OpGte, OpLte, OpLike, OpIn, OpNotIn:
		return true
	default:
		return false
	}
}

// IsMembership reports whether the operator takes a list value.
func (op Operator) IsMembership() bool {
	return op == OpIn || op == OpNotIn
}

// Predicate is a single raw filter clause as produced by the query
// classifier. It is untrusted: field and operator are arbitrary strings and
// Value is whatever the classifier emitted. Predicates must pass compilation
// against the kind whitelist before they reach the record store.
type Predicate struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Filter is a validated, typed filter clause. Field and Op are drawn from
// the fixed whitelists and the value is held as a typed literal: Text for
// scalar comparisons, List for membership operators, Time for time fields.
// Filter values are never interpolated into any query text; the record store
// executes them as opaque literals.
type Filter struct {
	Field Field
	Op    Operator
	Text  string
	List  []string
	Time  time.Time
}

// QueryIntent is the structured interpretation of a free-form query.
// Filters carry the raw classifier clauses; compilation happens downstream.
// SearchTerms is the semantic remainder of the query, empty when the query
// is fully structured.
type QueryIntent struct {
	Type        QueryType
	Kind        Kind
	Filters     []Predicate
	SearchTerms string
}

// DefaultIntent is the safe fallback used whenever classification fails:
// a plain semantic query over all records with the original query text.
func DefaultIntent(query string) *QueryIntent {
	return &QueryIntent{
		Type:        QuerySemantic,
		Kind:        KindAny,
		SearchTerms: query,
	}
}
