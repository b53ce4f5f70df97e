package zk

import (
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
)

var (
	// ErrVerify is returned by System.Verify when a proof does not convince the verifier.
	ErrVerify = errors.New("zk: proof verification failed")
	// ErrInvalidWitness is returned by System.Prove when the witness does not satisfy the statement.
	ErrInvalidWitness = errors.New("zk: witness does not satisfy the statement")
	// ErrInvalidStatement is returned by System.Prove when the statement is malformed.
	ErrInvalidStatement = errors.New("zk: malformed statement")
)

// System is a non-interactive proof system for statements of type Public,
// with witnesses of type Private.
//
// The hash carries the transcript so far. Prove and Verify write to a clone of it,
// so the same hash state must be given to both.
type System[Public, Private, Proof any] interface {
	Prove(hash *hash.Hash, public Public, private Private) (Proof, error)
	Verify(hash *hash.Hash, public Public, proof Proof) error
}

// IsExponent returns true if every x is a reduced exponent of the group, i.e. 0 ≤ x < q.
func IsExponent(group *elgamal.Group, xs ...*saferith.Nat) bool {
	for _, x := range xs {
		if x == nil {
			return false
		}
		if _, _, lt := x.CmpMod(group.Q()); lt != 1 {
			return false
		}
	}
	return true
}
