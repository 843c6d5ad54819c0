package core

import (
	"encoding/binary"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored records.
// It is assigned by the record store from per-kind sequences.
type ID uint64

// EmbeddingDims is the dimensionality of record embeddings.
// Stored embeddings are exactly 4*EmbeddingDims bytes of little-endian float32.
const EmbeddingDims = 384

// Result caps per query type.
const (
	// MaxSemanticResults caps semantic and hybrid result sets.
	MaxSemanticResults = 10
	// MaxStructuredResults caps structured (filter-only) result sets.
	MaxStructuredResults = 50
)

// Kind identifies the type of a stored record.
type Kind int

const (
	// KindTask represents a task record.
	KindTask Kind = iota + 1
	// KindNote represents a note record.
	KindNote
)

// KindAny matches records of every kind in similarity scans.
// It is never a valid kind for a stored record.
const KindAny Kind = 0

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTask:
		return "task"
	case KindNote:
		return "note"
	case KindAny:
		return "any"
	default:
		return "unknown"
	}
}

// KindFromString parses a kind name. Returns KindAny for unrecognized input.
func KindFromString(s string) Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "task", "tasks":
		return KindTask
	case "note", "notes":
		return KindNote
	default:
		return KindAny
	}
}

// Task status values.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Task priority values.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Record represents a single task or note.
// Title and Body carry the textual content; Body holds the description for
// tasks and the note content for notes. The embedding for a record lives in
// a side table keyed by (Kind, Id) and is not part of the record itself;
// TextDigest identifies the text the stored embedding was computed from.
type Record struct {
	Id         ID
	Kind       Kind
	Title      string
	Body       string
	Status     string    // Tasks only
	Priority   string    // Tasks only
	DueDate    time.Time // Tasks only; zero means no due date
	Tags       []string
	ListId     ID // Owning list, 0 if none
	CreatedAt  time.Time
	UpdatedAt  time.Time
	TextDigest uint64 // Digest of the derived text at last indexing, 0 if unindexed
}

// DerivedText returns the text an embedding is computed from.
func (r *Record) DerivedText() string {
	return strings.TrimSpace(r.Title + " " + r.Body)
}

// TextDigest generates a deterministic digest from text content using BLAKE2b
// hashing. Identical text always produces an identical digest; it is used to
// skip re-embedding records whose derived text has not changed.
func TextDigest(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// SimilarityMatch is a record hit from vector similarity search.
// Kind disambiguates matches when a scan spans both record kinds, since IDs
// are only unique per kind.
type SimilarityMatch struct {
	Id    ID
	Kind  Kind
	Score float32
}

// RankedResult is a single entry of a search result list.
// Score is only meaningful when Scored is true; structured queries return
// unscored results.
type RankedResult struct {
	Record *Record
	Score  float32
	Scored bool
}
