package zkdlog

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
	"github.com/taurusgroup/two-party-rsa/pkg/zk"
)

type Public struct {
	Group *elgamal.Group
	// H = gˣ
	H *saferith.Nat
}

type Private struct {
	// X = log_g(H)
	X *saferith.Nat
}

type Proof struct {
	// A = gᵃ
	A *saferith.Nat
	// Z = a + e⋅x (mod q)
	Z *saferith.Nat
}

// System proves knowledge of the discrete logarithm of H.
type System struct{}

func (System) Prove(hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if public.Group == nil || public.H == nil || private.X == nil {
		return nil, zk.ErrInvalidStatement
	}
	if public.Group.ExpBase(private.X).Eq(public.H) != 1 {
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

func (p *Proof) IsValid(public Public) bool {
	if p == nil || public.Group == nil {
		return false
	}
	if !public.Group.IsElement(p.A) || !public.Group.IsElement(public.H) {
		return false
	}
	return zk.IsExponent(public.Group, p.Z)
}

func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	group := public.Group
	a := sample.ModN(rand.Reader, group.Q())
	A := group.ExpBase(a)

	e := challenge(hash, public, A)

	z := new(saferith.Nat).ModMul(e, private.X, group.Q())
	z.ModAdd(z, a, group.Q())
	return &Proof{A: A, Z: z}
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}
	group := public.Group
	e := challenge(hash, public, p.A)

	// gᶻ = A⋅Hᵉ
	lhs := group.ExpBase(p.Z)
	rhs := group.Mul(p.A, group.Exp(public.H, e))
	return lhs.Eq(rhs) == 1
}

func challenge(hash *hash.Hash, public Public, A *saferith.Nat) *saferith.Nat {
	_ = hash.WriteAny(public.Group, public.H, A)
	return sample.ModN(hash.Digest(), public.Group.Q())
}
