package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidField(t *testing.T) {
	t.Run("task whitelist", func(t *testing.T) {
		for _, f := range []Field{FieldTitle, FieldDescription, FieldStatus, FieldPriority, FieldDueDate, FieldCreatedAt, FieldTags} {
			assert.True(t, ValidField(KindTask, f), "field %s", f)
		}
		assert.False(t, ValidField(KindTask, FieldContent))
		assert.False(t, ValidField(KindTask, FieldUpdatedAt))
	})

	t.Run("note whitelist", func(t *testing.T) {
		for _, f := range []Field{FieldTitle, FieldContent, FieldCreatedAt, FieldUpdatedAt, FieldTags} {
			assert.True(t, ValidField(KindNote, f), "field %s", f)
		}
		assert.False(t, ValidField(KindNote, FieldStatus))
		assert.False(t, ValidField(KindNote, FieldPriority))
		assert.False(t, ValidField(KindNote, FieldDueDate))
	})

	t.Run("unknown field never valid", func(t *testing.T) {
		assert.False(t, ValidField(KindTask, Field("password")))
		assert.False(t, ValidField(KindNote, Field("1=1")))
	})

	t.Run("no whitelist for KindAny", func(t *testing.T) {
		assert.False(t, ValidField(KindAny, FieldTitle))
	})
}

func TestValidOperator(t *testing.T) {
	for _, op := range []Operator{OpEq, OpGt, OpLt, OpGte, OpLte, OpLike, OpIn, OpNotIn} {
		assert.True(t, ValidOperator(op), "operator %s", op)
	}
	assert.False(t, ValidOperator(Operator("==")))
	assert.False(t, ValidOperator(Operator("DROP")))
	assert.False(t, ValidOperator(Operator("")))
}

func TestOperatorIsMembership(t *testing.T) {
	assert.True(t, OpIn.IsMembership())
	assert.True(t, OpNotIn.IsMembership())
	assert.False(t, OpEq.IsMembership())
	assert.False(t, OpLike.IsMembership())
}

func TestQueryTypeIsValid(t *testing.T) {
	assert.True(t, QueryStructured.IsValid())
	assert.True(t, QuerySemantic.IsValid())
	assert.True(t, QueryHybrid.IsValid())
	assert.False(t, QueryType("fulltext").IsValid())
	assert.False(t, QueryType("").IsValid())
}

func TestDefaultIntent(t *testing.T) {
	intent := DefaultIntent("anything about apollo")
	assert.Equal(t, QuerySemantic, intent.Type)
	assert.Equal(t, KindAny, intent.Kind)
	assert.Empty(t, intent.Filters)
	assert.Equal(t, "anything about apollo", intent.SearchTerms)
}

func TestIsTimeField(t *testing.T) {
	assert.True(t, FieldDueDate.IsTimeField())
	assert.True(t, FieldCreatedAt.IsTimeField())
	assert.True(t, FieldUpdatedAt.IsTimeField())
	assert.False(t, FieldTitle.IsTimeField())
	assert.False(t, FieldTags.IsTimeField())
}
