package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/notefind/core"
)

// Key prefixes for different data types
const (
	taskRecordPrefix    = "taskrec"
	noteRecordPrefix    = "noterec"
	taskEmbeddingPrefix = "taskemb"
	noteEmbeddingPrefix = "noteemb"
	taskIDSeq           = "taskseq"
	noteIDSeq           = "noteseq"
)

// recordPrefix returns the primary-record key prefix for a kind.
func recordPrefix(kind core.Kind) string {
	if kind == core.KindNote {
		return noteRecordPrefix
	}
	return taskRecordPrefix
}

// embeddingPrefix returns the embedding side-table key prefix for a kind.
func embeddingPrefix(kind core.Kind) string {
	if kind == core.KindNote {
		return noteEmbeddingPrefix
	}
	return taskEmbeddingPrefix
}

// sequenceName returns the ID sequence name for a kind.
func sequenceName(kind core.Kind) string {
	if kind == core.KindNote {
		return noteIDSeq
	}
	return taskIDSeq
}

// makeRecordKey generates a key for a record by kind and ID.
func makeRecordKey(kind core.Kind, id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", recordPrefix(kind), id))
}

// makeEmbeddingKey generates a key for a record's embedding.
// Format: prefix : 8-byte BigEndian ID, so the ID can be recovered from the
// key during scans and keys sort by ascending ID.
func makeEmbeddingKey(kind core.Kind, id core.ID) []byte {
	prefix := embeddingPrefix(kind) + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// embeddingKeyID recovers the record ID from an embedding key.
// Returns false if the key is malformed.
func embeddingKeyID(key []byte) (core.ID, bool) {
	if len(key) < 8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:])), true
}
