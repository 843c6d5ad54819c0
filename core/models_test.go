package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextDigest_Deterministic(t *testing.T) {
	a := TextDigest("Apollo launch checklist")
	b := TextDigest("Apollo launch checklist")
	assert.Equal(t, a, b)
}

func TestTextDigest_DiffersForDifferentText(t *testing.T) {
	a := TextDigest("buy milk")
	b := TextDigest("buy milk ")
	assert.NotEqual(t, a, b)
}

func TestDerivedText(t *testing.T) {
	t.Run("title and body joined", func(t *testing.T) {
		r := &Record{Title: "Apollo", Body: "launch prep"}
		assert.Equal(t, "Apollo launch prep", r.DerivedText())
	})

	t.Run("empty record yields empty text", func(t *testing.T) {
		r := &Record{}
		assert.Equal(t, "", r.DerivedText())
	})

	t.Run("title only", func(t *testing.T) {
		r := &Record{Title: "Apollo"}
		assert.Equal(t, "Apollo", r.DerivedText())
	})

	t.Run("body only", func(t *testing.T) {
		r := &Record{Body: "loose thought"}
		assert.Equal(t, "loose thought", r.DerivedText())
	})
}

func TestKindFromString(t *testing.T) {
	assert.Equal(t, KindTask, KindFromString("task"))
	assert.Equal(t, KindTask, KindFromString("Tasks"))
	assert.Equal(t, KindNote, KindFromString(" note "))
	assert.Equal(t, KindNote, KindFromString("notes"))
	assert.Equal(t, KindAny, KindFromString(""))
	assert.Equal(t, KindAny, KindFromString("calendar"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "task", KindTask.String())
	assert.Equal(t, "note", KindNote.String())
	assert.Equal(t, "any", KindAny.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
