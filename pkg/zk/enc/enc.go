package zkenc

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
	Key   *elgamal.PublicKey
	// C = (gʳ, gᵐ⋅hʳ)
	C *elgamal.Ciphertext
}

type Private struct {
	// M is the plaintext of C.
	M *saferith.Nat
	// Nonce is the randomness r used to encrypt M.
	Nonce *saferith.Nat
}

type Proof struct {
	// A = (gᵇ, gᵃ⋅hᵇ)
	A *elgamal.Ciphertext
	// ZM = a + e⋅m (mod q)
	ZM *saferith.Nat
	// ZR = b + e⋅r (mod q)
	ZR *saferith.Nat
}

// System proves knowledge of the plaintext and the randomness of an ElGamal ciphertext.
type System struct{}

func (System) Prove(hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if public.Group == nil || public.Key == nil || public.C == nil || private.M == nil || private.Nonce == nil {
		return nil, zk.ErrInvalidStatement
	}
	if !public.Group.Encrypt(public.Key, private.M, private.Nonce).Equal(public.C) {
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
	if p == nil || public.Group == nil || public.Key == nil {
		return false
	}
	group := public.Group
	if group.ValidatePublicKey(public.Key) != nil {
		return false
	}
	if group.ValidateCiphertexts(public.C, p.A) != nil {
		return false
	}
	return zk.IsExponent(group, p.ZM, p.ZR)
}

func NewProof(hash *hash.Hash, public Public, private Private) *Proof {
	group := public.Group
	q := group.Q()
	a := sample.ModN(rand.Reader, q)
	b := sample.ModN(rand.Reader, q)
	A := group.Encrypt(public.Key, a, b)

	e := challenge(hash, public, A)

	zm := new(saferith.Nat).ModMul(e, private.M, q)
	zm.ModAdd(zm, a, q)
	zr := new(saferith.Nat).ModMul(e, private.Nonce, q)
	zr.ModAdd(zr, b, q)
	return &Proof{A: A, ZM: zm, ZR: zr}
}

func (p *Proof) Verify(hash *hash.Hash, public Public) bool {
	if !p.IsValid(public) {
		return false
	}
	group := public.Group
	e := challenge(hash, public, p.A)

	// Enc(zm; zr) = A⋅Cᵉ
	lhs := group.Encrypt(public.Key, p.ZM, p.ZR)
	rhs := group.Add(p.A, group.ScalarMul(public.C, e))
	return lhs.Equal(rhs)
}

func challenge(hash *hash.Hash, public Public, A *elgamal.Ciphertext) *saferith.Nat {
	_ = hash.WriteAny(public.Group, public.Key, public.C, A)
	return sample.ModN(hash.Digest(), public.Group.Q())
}
