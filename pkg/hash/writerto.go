package hash

import (
	"bytes"
	"encoding/binary"
	"io"
)

// WriterToWithDomain represents a type writing itself, and knowing its domain.
//
// Providing a domain string lets us distinguish the output of different types
// implementing this same interface.
type WriterToWithDomain interface {
	io.WriterTo

	// Domain returns a context string, which should be unique for each implementor
	Domain() string
}

// writeWithDomain writes out `(<domain><length><data>)`.
//
// The object is serialized to a buffer first, so that its length can prefix the data.
// This prevents two different sequences of objects from producing the same stream.
func writeWithDomain(w io.Writer, object WriterToWithDomain) error {
	var buf bytes.Buffer
	if _, err := object.WriteTo(&buf); err != nil {
		return err
	}
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(buf.Len()))

	for _, b := range [][]byte{[]byte("("), []byte(object.Domain()), length[:], buf.Bytes(), []byte(")")} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// BytesWithDomain is a useful wrapper to annotate some chunk of data with a domain.
type BytesWithDomain struct {
	TheDomain string
	Bytes     []byte
}

// WriteTo implements io.WriterTo.
func (b BytesWithDomain) WriteTo(w io.Writer) (int64, error) {
	if b.Bytes == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(b.Bytes)
	return int64(n), err
}

// Domain implements WriterToWithDomain.
func (b BytesWithDomain) Domain() string {
	return b.TheDomain
}
