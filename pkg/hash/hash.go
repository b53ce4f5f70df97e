package hash

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/internal/params"
	"github.com/zeebo/blake3"
)

// DigestLengthBytes is the size of the output of Sum.
const DigestLengthBytes = params.SecBytes * 2 // 64

// Hash is the hash function used for Fiat-Shamir challenges and session identifiers.
//
// Internally, this is a wrapper around blake3.Hasher, whose extendable output
// lets proofs derive as many challenge bytes as they need.
type Hash struct {
	h *blake3.Hasher
}

// New creates a Hash and writes the given data to it, see WriteAny.
func New(initialData ...WriterToWithDomain) *Hash {
	hash := &Hash{h: blake3.New()}
	for _, d := range initialData {
		_ = hash.WriteAny(d)
	}
	return hash
}

// Digest returns a reader for the current output of the function.
//
// This finalizes the current state of the hash, and returns what's
// essentially a stream of random bytes.
// Each call returns a reader starting at the beginning of the same stream.
func (hash *Hash) Digest() io.Reader {
	return hash.h.Digest()
}

// Sum returns a slice of length DigestLengthBytes resulting from the current hash state.
// If a different length is required, use io.ReadFull(hash.Digest(), out) instead.
func (hash *Hash) Sum() []byte {
	out := make([]byte, DigestLengthBytes)
	if _, err := io.ReadFull(hash.Digest(), out); err != nil {
		panic(fmt.Sprintf("hash.Sum: internal hash failure: %v", err))
	}
	return out
}

// WriteAny takes many different data types and writes them to the hash state.
//
// Currently supported types:
//
//   - []byte
//   - string
//   - *saferith.Nat
//   - *saferith.Int
//   - *saferith.Modulus
//   - *big.Int
//   - hash.WriterToWithDomain
//
// This function will apply its own domain separation for the first types.
// The last type already suggests which domain to use, and this function respects it.
func (hash *Hash) WriteAny(data ...interface{}) error {
	var toBeWritten WriterToWithDomain
	for _, d := range data {
		switch t := d.(type) {
		case []byte:
			if t == nil {
				return fmt.Errorf("hash.Hash: write []byte: nil")
			}
			toBeWritten = &BytesWithDomain{TheDomain: "[]byte", Bytes: t}
		case string:
			toBeWritten = &BytesWithDomain{TheDomain: "string", Bytes: []byte(t)}
		case *saferith.Nat:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Nat: nil")
			}
			toBeWritten = &BytesWithDomain{TheDomain: "saferith.Nat", Bytes: t.Big().Bytes()}
		case *saferith.Int:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Int: nil")
			}
			sign := byte(0)
			if t.IsNegative() == 1 {
				sign = 1
			}
			toBeWritten = &BytesWithDomain{
				TheDomain: "saferith.Int",
				Bytes:     append([]byte{sign}, t.Abs().Big().Bytes()...),
			}
		case *saferith.Modulus:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *saferith.Modulus: nil")
			}
			toBeWritten = &BytesWithDomain{TheDomain: "saferith.Modulus", Bytes: t.Big().Bytes()}
		case *big.Int:
			if t == nil {
				return fmt.Errorf("hash.Hash: write *big.Int: nil")
			}
			bytes, err := t.GobEncode()
			if err != nil {
				return fmt.Errorf("hash.Hash: GobEncode: %w", err)
			}
			toBeWritten = &BytesWithDomain{TheDomain: "big.Int", Bytes: bytes}
		case WriterToWithDomain:
			toBeWritten = t
		default:
			return fmt.Errorf("hash.Hash: unsupported type %T", d)
		}
		if err := writeWithDomain(hash.h, toBeWritten); err != nil {
			return fmt.Errorf("hash.Hash: write %s: %w", toBeWritten.Domain(), err)
		}
	}
	return nil
}

// Clone returns a copy of the Hash in its current state.
func (hash *Hash) Clone() *Hash {
	return &Hash{h: hash.h.Clone()}
}

// Fork returns a clone of the hash, extended with a domain label.
// Sub-proofs use it to derive independent transcripts from a common state.
func (hash *Hash) Fork(label string) *Hash {
	h := hash.Clone()
	_ = h.WriteAny(&BytesWithDomain{TheDomain: "Fork", Bytes: []byte(label)})
	return h
}
