package zkddh

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
	"github.com/taurusgroup/two-party-rsa/pkg/zk"
)

// Public is the statement log_{G1}(H1) = log_{G2}(H2).
type Public struct {
	Group  *elgamal.Group
	G1, H1 *saferith.Nat
	G2, H2 *saferith.Nat
}

type Private struct {
	// X such that H1 = G1ˣ and H2 = G2ˣ
	X *saferith.Nat
}

type Proof struct {
	// A1 = G1ᵃ
	A1 *saferith.Nat
	// A2 = G2ᵃ
	A2 *saferith.Nat
	// Z = a + e⋅x (mod q)
	Z *saferith.Nat
}

// System is the Chaum-Pedersen proof of equality of discrete logarithms.
type System struct{}

func (System) Prove(hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if !public.isWellFormed() || private.X == nil {
		return nil, zk.ErrInvalidStatement
	}
	group := public.Group
	if group.Exp(public.G1, private.X).Eq(public.H1) != 1 || group.Exp(public.G2, private.X).Eq(public.H2) != 1 {
		return nil, zk.ErrInvalidWitness
	}
	return NewProof(hash.Clone(), public, private), nil
}

func (System) Verify(hash *hash.Hash, public Public, proof *Proof) error {
	if !proof.Verify(hash.Clone(), public) {
		return zk.ErrVerify
	}
	return nil
}

func (public Public) isWellFormed() bool {
	return public.Group != nil && public.G1 != nil && public.H1 != nil && public.G2 != nil && public.H2 != nil
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || !public.isWellFormed() {
		return false
	}
	if public.Group.ValidateElements(public.G1, public.H1, public.G2, public.H2, p.A1, p.A2) != nil {
		return false
	}
	return zk.IsExponent(public.Group, p.Z)
}

func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	group := public.Group
	a := sample.ModN(rand.Reader, group.Q())
	A1 := group.Exp(public.G1, a)
	A2 := group.Exp(public.G2, a)

	e := challenge(hash, public, A1, A2)

	z := new(saferith.Nat).ModMul(e, private.X, group.Q())
	z.ModAdd(z, a, group.Q())
	return &Proof{A1: A1, A2: A2, Z: z}
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}
	group := public.Group
	e := challenge(hash, public, p.A1, p.A2)

	// G1ᶻ = A1⋅H1ᵉ
	if group.Exp(public.G1, p.Z).Eq(group.Mul(p.A1, group.Exp(public.H1, e))) != 1 {
		return false
	}
	// G2ᶻ = A2⋅H2ᵉ
	if group.Exp(public.G2, p.Z).Eq(group.Mul(p.A2, group.Exp(public.H2, e))) != 1 {
		return false
	}
	return true
}

func challenge(hash *hash.Hash, public Public, A1, A2 *saferith.Nat) *saferith.Nat {
	_ = hash.WriteAny(public.Group, public.G1, public.H1, public.G2, public.H2, A1, A2)
	return sample.ModN(hash.Digest(), public.Group.Q())
}
