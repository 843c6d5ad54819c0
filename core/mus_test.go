package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMUS_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	record := Record{
		Id:         42,
		Kind:       KindTask,
		Title:      "Review Apollo checklist",
		Body:       "Walk through every launch step",
		Status:     StatusInProgress,
		Priority:   PriorityHigh,
		DueDate:    now.Add(48 * time.Hour),
		Tags:       []string{"apollo", "launch"},
		ListId:     7,
		CreatedAt:  now,
		UpdatedAt:  now,
		TextDigest: TextDigest("Review Apollo checklist Walk through every launch step"),
	}

	bs := make([]byte, RecordMUS.Size(record))
	n := RecordMUS.Marshal(record, bs)
	require.Equal(t, len(bs), n)

	decoded, n, err := RecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, record, decoded)
}

func TestRecordMUS_ZeroDueDate(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	record := Record{
		Id:        1,
		Kind:      KindNote,
		Title:     "Scratch pad",
		Body:      "nothing due here",
		CreatedAt: now,
		UpdatedAt: now,
	}

	bs := make([]byte, RecordMUS.Size(record))
	RecordMUS.Marshal(record, bs)

	decoded, _, err := RecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.True(t, decoded.DueDate.IsZero())
	assert.Nil(t, decoded.Tags)
}

func TestRecordMUS_TruncatedData(t *testing.T) {
	record := Record{Id: 9, Kind: KindTask, Title: "short"}
	bs := make([]byte, RecordMUS.Size(record))
	RecordMUS.Marshal(record, bs)

	_, _, err := RecordMUS.Unmarshal(bs[:3])
	assert.Error(t, err)
}

func TestIDMUS_RoundTrip(t *testing.T) {
	for _, id := range []ID{0, 1, 255, 1 << 40} {
		bs := make([]byte, IDMUS.Size(id))
		IDMUS.Marshal(id, bs)
		decoded, _, err := IDMUS.Unmarshal(bs)
		require.NoError(t, err)
		assert.Equal(t, id, decoded)
	}
}
