package zkreduce

import (
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/pool"
	"github.com/taurusgroup/two-party-rsa/pkg/zk"
	zkbound "github.com/taurusgroup/two-party-rsa/pkg/zk/bound"
)

// Public is the statement that C encrypts some a < Bound, and CPrime encrypts a mod Modulus.
type Public struct {
	Group *elgamal.Group
	Key   *elgamal.PublicKey
	// C = Enc(a; rₐ)
	C *elgamal.Ciphertext
	// CPrime = Enc(b; r_b)
	CPrime *elgamal.Ciphertext
	// Modulus is the public divisor α.
	Modulus *saferith.Nat
	// Bound is an exclusive upper bound on a.
	Bound *saferith.Nat
}

type Private struct {
	A, NonceA *saferith.Nat
	B, NonceB *saferith.Nat
}

type Proof struct {
	// K = Enc(k; (rₐ - r_b)⋅α⁻¹), where a = k⋅α + b
	K *elgamal.Ciphertext
	// Quotient proves k < 2ᵏᴮⁱᵗˢ
	Quotient *zkbound.Proof
	// Remainder proves b < 2ᵇᴮⁱᵗˢ
	Remainder *zkbound.Proof
	// Complement proves α - 1 - b < 2ᵇᴮⁱᵗˢ
	Complement *zkbound.Proof
}

// System proves that a ciphertext encrypts the reduction of another ciphertext's plaintext
// modulo a public integer.
type System struct {
	Pool *pool.Pool
}

func (s System) Prove(hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if !public.isWellFormed() || private.A == nil || private.NonceA == nil || private.B == nil || private.NonceB == nil {
		return nil, zk.ErrInvalidStatement
	}
	group := public.Group
	a, alpha := private.A.Big(), public.Modulus.Big()
	if a.Cmp(public.Bound.Big()) >= 0 || new(big.Int).Mod(a, alpha).Cmp(private.B.Big()) != 0 {
		return nil, zk.ErrInvalidWitness
	}
	if !group.Encrypt(public.Key, private.A, private.NonceA).Equal(public.C) ||
		!group.Encrypt(public.Key, private.B, private.NonceB).Equal(public.CPrime) {
		return nil, zk.ErrInvalidWitness
	}
	return NewProof(hash.Clone(), public, private, s.Pool), nil
}

func (s System) Verify(hash *hash.Hash, public Public, proof *Proof) error {
	if !proof.Verify(hash.Clone(), public, s.Pool) {
		return zk.ErrVerify
	}
	return nil
}

// isWellFormed requires 1 < α < Bound, and leaves enough room below q so that
// k⋅α + b cannot wrap around the group order.
func (public Public) isWellFormed() bool {
	if public.Group == nil || public.Key == nil || public.C == nil || public.CPrime == nil ||
		public.Modulus == nil || public.Bound == nil {
		return false
	}
	alpha, bound := public.Modulus.Big(), public.Bound.Big()
	if alpha.Cmp(big.NewInt(1)) <= 0 || alpha.Cmp(bound) >= 0 {
		return false
	}
	return bound.BitLen()+2 < public.Group.Q().BitLen()
}

// bitLengths returns the number of bits needed for the quotient and for the remainder.
func bitLengths(public Public) (kBits, bBits int) {
	alpha := public.Modulus.Big()
	maxQuotient := new(big.Int).Sub(public.Bound.Big(), big.NewInt(1))
	maxQuotient.Quo(maxQuotient, alpha)
	kBits = maxQuotient.BitLen()
	if kBits < 1 {
		kBits = 1
	}
	bBits = new(big.Int).Sub(alpha, big.NewInt(1)).BitLen()
	if bBits < 1 {
		bBits = 1
	}
	return kBits, bBits
}

// complement returns Enc(α - 1; 0) - CPrime, an encryption of α - 1 - b.
func complement(public Public) *elgamal.Ciphertext {
	group := public.Group
	v := new(big.Int).Sub(public.Modulus.Big(), big.NewInt(1))
	alphaMinusOne := new(saferith.Nat).SetBig(v, v.BitLen())
	return group.Sub(group.EncryptConstant(alphaMinusOne), public.CPrime)
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || !public.isWellFormed() {
		return false
	}
	if p.Quotient == nil || p.Remainder == nil || p.Complement == nil {
		return false
	}
	group := public.Group
	if group.ValidatePublicKey(public.Key) != nil {
		return false
	}
	return group.ValidateCiphertexts(public.C, public.CPrime, p.K) == nil
}

func NewProof(hash *hash.Hash, public Public, private Private, pl *pool.Pool) *Proof {
	group := public.Group
	q := group.Q()
	kBits, bBits := bitLengths(public)

	alpha := public.Modulus
	k := new(big.Int).Quo(private.A.Big(), alpha.Big())
	kNat := new(saferith.Nat).SetBig(k, kBits)
	alphaInv := new(saferith.Nat).ModInverse(group.Exponent(alpha), q)
	kNonce := new(saferith.Nat).ModSub(private.NonceA, private.NonceB, q)
	kNonce.ModMul(kNonce, alphaInv, q)
	K := group.Encrypt(public.Key, kNat, kNonce)

	writePublic(hash, public, K)

	quotient := zkbound.NewProof(hash.Fork("quotient"), zkbound.Public{
		Group: group, Key: public.Key, C: K, Bits: kBits,
	}, zkbound.Private{X: kNat, Nonce: kNonce}, pl)

	remainder := zkbound.NewProof(hash.Fork("remainder"), zkbound.Public{
		Group: group, Key: public.Key, C: public.CPrime, Bits: bBits,
	}, zkbound.Private{X: private.B, Nonce: private.NonceB}, pl)

	bComplement := new(big.Int).Sub(alpha.Big(), big.NewInt(1))
	bComplement.Sub(bComplement, private.B.Big())
	complementNonce := new(saferith.Nat).ModNeg(private.NonceB, q)
	complementProof := zkbound.NewProof(hash.Fork("complement"), zkbound.Public{
		Group: group, Key: public.Key, C: complement(public), Bits: bBits,
	}, zkbound.Private{X: new(saferith.Nat).SetBig(bComplement, bBits), Nonce: complementNonce}, pl)

	return &Proof{
		K:          K,
		Quotient:   quotient,
		Remainder:  remainder,
		Complement: complementProof,
	}
}

func (p *Proof) Verify(hash *hash.Hash, public Public, pl *pool.Pool) bool {
	if !p.IsValid(public) {
		return false
	}
	group := public.Group
	kBits, bBits := bitLengths(public)

	// K^α⋅CPrime = C
	if !group.Add(group.ScalarMul(p.K, group.Exponent(public.Modulus)), public.CPrime).Equal(public.C) {
		return false
	}

	writePublic(hash, public, p.K)

	if !p.Quotient.Verify(hash.Fork("quotient"), zkbound.Public{
		Group: group, Key: public.Key, C: p.K, Bits: kBits,
	}, pl) {
		return false
	}
	if !p.Remainder.Verify(hash.Fork("remainder"), zkbound.Public{
		Group: group, Key: public.Key, C: public.CPrime, Bits: bBits,
	}, pl) {
		return false
	}
	return p.Complement.Verify(hash.Fork("complement"), zkbound.Public{
		Group: group, Key: public.Key, C: complement(public), Bits: bBits,
	}, pl)
}

func writePublic(hash *hash.Hash, public Public, K *elgamal.Ciphertext) {
	_ = hash.WriteAny(public.Group, public.Key, public.C, public.CPrime, public.Modulus, public.Bound, K)
}
