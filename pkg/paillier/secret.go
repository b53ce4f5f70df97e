package paillier

import (
	"io"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/math/arith"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
	"github.com/taurusgroup/two-party-rsa/pkg/pool"
)

// SecretKey is the secret key corresponding to a Public Paillier Key.
//
// A public key is a modulus N, and the secret key contains the information
// needed to factor N into two primes, P and Q.
type SecretKey struct {
	*PublicKey
	// p, q such that N = p⋅q
	p, q *saferith.Nat
	// phi = ϕ = (p-1)(q-1)
	phi *saferith.Nat
}

// P returns the first of the two factors composing this key.
func (sk *SecretKey) P() *saferith.Nat {
	return sk.p
}

// Q returns the second of the two factors composing this key.
func (sk *SecretKey) Q() *saferith.Nat {
	return sk.q
}

// Phi returns ϕ = (P-1)(Q-1), the number of units mod N.
func (sk *SecretKey) Phi() *saferith.Nat {
	return sk.phi
}

// KeyGen generates a new PublicKey and its associated SecretKey, with a modulus of the given size.
func KeyGen(rand io.Reader, pl *pool.Pool, bits int) (pk *PublicKey, sk *SecretKey) {
	sk = NewSecretKeyFromPrimes(sample.Paillier(rand, pl, bits))
	pk = sk.PublicKey
	return
}

// NewSecretKeyFromPrimes generates a new SecretKey. Assumes that P and Q are prime.
func NewSecretKeyFromPrimes(P, Q *saferith.Nat) *SecretKey {
	oneNat := new(saferith.Nat).SetUint64(1)

	pMinus1 := new(saferith.Nat).Sub(P, oneNat, -1)
	qMinus1 := new(saferith.Nat).Sub(Q, oneNat, -1)
	phi := new(saferith.Nat).Mul(pMinus1, qMinus1, -1)

	return &SecretKey{
		p:   P,
		q:   Q,
		phi: phi,
		PublicKey: &PublicKey{
			n: arith.ModulusFromFactors(P, Q),
		},
	}
}
