package core

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Hand-maintained MUS serializers for the types persisted by the record
// store. Field order is part of the storage format; append new fields at the
// end and never reorder. The embedding vector is deliberately absent: it is
// stored in a separate side table as raw little-endian float32 bytes.

// IDMUS serializes record identifiers.
var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (s idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (s idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

// RecordMUS serializes records.
var RecordMUS = recordMUS{}

type recordMUS struct{}

func (s recordMUS) Marshal(r Record, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(r.Id), bs)
	n += varint.Int.Marshal(int(r.Kind), bs[n:])
	n += ord.String.Marshal(r.Title, bs[n:])
	n += ord.String.Marshal(r.Body, bs[n:])
	n += ord.String.Marshal(r.Status, bs[n:])
	n += ord.String.Marshal(r.Priority, bs[n:])
	n += marshalOptionalTime(r.DueDate, bs[n:])
	n += varint.Int.Marshal(len(r.Tags), bs[n:])
	for _, tag := range r.Tags {
		n += ord.String.Marshal(tag, bs[n:])
	}
	n += varint.Uint64.Marshal(uint64(r.ListId), bs[n:])
	n += varint.Int64.Marshal(r.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(r.UpdatedAt.UnixMicro(), bs[n:])
	n += varint.Uint64.Marshal(r.TextDigest, bs[n:])
	return n
}

func (s recordMUS) Unmarshal(bs []byte) (r Record, n int, err error) {
	var (
		n1 int
		id uint64
	)
	id, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	r.Id = ID(id)

	var kind int
	kind, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.Kind = Kind(kind)

	if r.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.Body, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.Status, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.Priority, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1

	if r.DueDate, n1, err = unmarshalOptionalTime(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1

	var count int
	count, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if count < 0 {
		return r, n, fmt.Errorf("negative tag count %d", count)
	}
	if count > 0 {
		r.Tags = make([]string, count)
		for i := 0; i < count; i++ {
			if r.Tags[i], n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return r, n + n1, err
			}
			n += n1
		}
	}

	var listID uint64
	listID, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.ListId = ID(listID)

	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.CreatedAt = time.UnixMicro(micros).UTC()

	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	r.UpdatedAt = time.UnixMicro(micros).UTC()

	r.TextDigest, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	return r, n, err
}

func (s recordMUS) Size(r Record) (size int) {
	size = varint.Uint64.Size(uint64(r.Id))
	size += varint.Int.Size(int(r.Kind))
	size += ord.String.Size(r.Title)
	size += ord.String.Size(r.Body)
	size += ord.String.Size(r.Status)
	size += ord.String.Size(r.Priority)
	size += sizeOptionalTime(r.DueDate)
	size += varint.Int.Size(len(r.Tags))
	for _, tag := range r.Tags {
		size += ord.String.Size(tag)
	}
	size += varint.Uint64.Size(uint64(r.ListId))
	size += varint.Int64.Size(r.CreatedAt.UnixMicro())
	size += varint.Int64.Size(r.UpdatedAt.UnixMicro())
	size += varint.Uint64.Size(r.TextDigest)
	return size
}

// Optional timestamps are a presence flag followed by unix micros, so the
// zero time survives a round trip exactly.

func marshalOptionalTime(t time.Time, bs []byte) (n int) {
	present := !t.IsZero()
	n = ord.Bool.Marshal(present, bs)
	if present {
		n += varint.Int64.Marshal(t.UnixMicro(), bs[n:])
	}
	return n
}

func unmarshalOptionalTime(bs []byte) (t time.Time, n int, err error) {
	var present bool
	present, n, err = ord.Bool.Unmarshal(bs)
	if err != nil || !present {
		return
	}
	var micros int64
	var n1 int
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeOptionalTime(t time.Time) int {
	if t.IsZero() {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + varint.Int64.Size(t.UnixMicro())
}
