package search

import (
	"testing"
	"time"

	"github.com/poiesic/notefind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_ValidPredicates(t *testing.T) {
	predicates := []core.Predicate{
		{Field: "priority", Operator: "=", Value: "High"},
		{Field: "dueDate", Operator: ">=", Value: "2025-08-10T00:00:00Z"},
		{Field: "tags", Operator: "IN", Value: []any{"work", "errands"}},
		{Field: "title", Operator: "LIKE", Value: "%launch%"},
	}

	filters, diags := Compile(core.KindTask, predicates)
	assert.Empty(t, diags)
	require.Len(t, filters, 4)

	assert.Equal(t, core.FieldPriority, filters[0].Field)
	assert.Equal(t, core.OpEq, filters[0].Op)
	assert.Equal(t, "High", filters[0].Text)

	assert.Equal(t, core.FieldDueDate, filters[1].Field)
	assert.Equal(t, time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC), filters[1].Time.UTC())

	assert.Equal(t, []string{"work", "errands"}, filters[2].List)
	assert.Equal(t, "%launch%", filters[3].Text)
}

func TestCompile_DropsNonWhitelistedFields(t *testing.T) {
	predicates := []core.Predicate{
		{Field: "status", Operator: "=", Value: "todo"},  // not a note field
		{Field: "content", Operator: "LIKE", Value: "%x%"}, // valid for notes
		{Field: "password", Operator: "=", Value: "secret"},
	}

	filters, diags := Compile(core.KindNote, predicates)
	require.Len(t, filters, 1)
	assert.Equal(t, core.FieldContent, filters[0].Field)

	require.Len(t, diags, 2)
	for _, diag := range diags {
		assert.ErrorIs(t, diag, ErrInvalidPredicate)
	}
}

func TestCompile_DropsUnknownOperators(t *testing.T) {
	predicates := []core.Predicate{
		{Field: "title", Operator: "CONTAINS", Value: "x"},
		{Field: "title", Operator: "; DROP TABLE Task;--", Value: "x"},
	}

	filters, diags := Compile(core.KindTask, predicates)
	assert.Empty(t, filters)
	assert.Len(t, diags, 2)
}

func TestCompile_DropsUnparseableDates(t *testing.T) {
	predicates := []core.Predicate{
		{Field: "dueDate", Operator: "<", Value: "next tuesday"},
		{Field: "dueDate", Operator: "<", Value: "2025-08-10"},
	}

	filters, diags := Compile(core.KindTask, predicates)
	require.Len(t, filters, 1)
	assert.Equal(t, time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC), filters[0].Time.UTC())
	require.Len(t, diags, 1)
	assert.ErrorIs(t, diags[0], ErrInvalidPredicate)
}

func TestCompile_ArityMismatches(t *testing.T) {
	predicates := []core.Predicate{
		{Field: "tags", Operator: "IN", Value: "work"},               // scalar for membership
		{Field: "status", Operator: "=", Value: []any{"todo"}},       // list for scalar
		{Field: "tags", Operator: "NOT IN", Value: []any{}},          // empty list
		{Field: "dueDate", Operator: "IN", Value: []any{"2025-08-10"}}, // membership on time field
	}

	filters, diags := Compile(core.KindTask, predicates)
	assert.Empty(t, filters)
	assert.Len(t, diags, 4)
}

func TestCompile_CoercesScalarTypes(t *testing.T) {
	predicates := []core.Predicate{
		{Field: "title", Operator: "=", Value: float64(42)},
		{Field: "tags", Operator: "IN", Value: []any{"a", float64(7)}},
	}

	filters, diags := Compile(core.KindTask, predicates)
	assert.Empty(t, diags)
	require.Len(t, filters, 2)
	assert.Equal(t, "42", filters[0].Text)
	assert.Equal(t, []string{"a", "7"}, filters[1].List)
}

func TestCompile_HostileValuesStayLiterals(t *testing.T) {
	hostile := "'; DROP TABLE Task;--"
	predicates := []core.Predicate{
		{Field: "title", Operator: "=", Value: hostile},
	}

	filters, diags := Compile(core.KindTask, predicates)
	assert.Empty(t, diags)
	require.Len(t, filters, 1)
	// The value compiles to an opaque literal, exactly as given.
	assert.Equal(t, hostile, filters[0].Text)
}

func TestCompile_NilPredicates(t *testing.T) {
	filters, diags := Compile(core.KindTask, nil)
	assert.Empty(t, filters)
	assert.Empty(t, diags)
}
