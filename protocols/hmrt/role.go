package hmrt

import (
	"fmt"
	"io"
)

// Role designates one of the two parties.
//
// The Blum offset of the candidate is carried by the share of PartyOne:
// N = (4⋅share₁ + 3) + 4⋅share₂.
type Role uint8

const (
	PartyOne Role = 1
	PartyTwo Role = 2
)

// Counterparty returns the other role.
func (r Role) Counterparty() Role {
	if r == PartyOne {
		return PartyTwo
	}
	return PartyOne
}

// Valid returns true for PartyOne and PartyTwo.
func (r Role) Valid() bool {
	return r == PartyOne || r == PartyTwo
}

func (r Role) String() string {
	switch r {
	case PartyOne:
		return "party one"
	case PartyTwo:
		return "party two"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

// WriteTo implements io.WriterTo interface.
func (r Role) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte{byte(r)})
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (Role) Domain() string {
	return "hmrt.Role"
}
