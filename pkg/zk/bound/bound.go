package zkbound

import (
	"crypto/rand"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
	"github.com/taurusgroup/two-party-rsa/pkg/pool"
	"github.com/taurusgroup/two-party-rsa/pkg/zk"
)

// Public is the statement that C encrypts some x with 0 ≤ x < 2ᴮⁱᵗˢ.
type Public struct {
	Group *elgamal.Group
	Key   *elgamal.PublicKey
	C     *elgamal.Ciphertext
	Bits  int
}

type Private struct {
	// X is the plaintext of C.
	X *saferith.Nat
	// Nonce is the randomness used to encrypt X.
	Nonce *saferith.Nat
}

// Response is a disjunctive proof that a digit encrypts 0 or 1.
// Index j of each array refers to the branch "the digit encrypts j".
type Response struct {
	// U[j] = gʷ
	U [2]*saferith.Nat
	// V[j] = hʷ
	V [2]*saferith.Nat
	// E[0] + E[1] = e (mod q)
	E [2]*saferith.Nat
	// Z[j] = w + E[j]⋅rᵢ (mod q)
	Z [2]*saferith.Nat
}

type Proof struct {
	// Digits[i] = Enc(xᵢ; rᵢ), where xᵢ is the i-th bit of X and ∑ 2ⁱ⋅rᵢ = r.
	Digits    []*elgamal.Ciphertext
	Responses []*Response
}

// System proves that an ElGamal ciphertext encrypts a value of at most Bits bits.
// The per-digit work is spread over Pool.
type System struct {
	Pool *pool.Pool
}

func (s System) Prove(hash *hash.Hash, public Public, private Private) (*Proof, error) {
	if !public.isWellFormed() || private.X == nil || private.Nonce == nil {
		return nil, zk.ErrInvalidStatement
	}
	if private.X.Big().BitLen() > public.Bits {
		return nil, zk.ErrInvalidWitness
	}
	if !public.Group.Encrypt(public.Key, private.X, private.Nonce).Equal(public.C) {
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

// isWellFormed also requires 2ᴮⁱᵗˢ < q, so that the digits cannot wrap around the group order.
func (public Public) isWellFormed() bool {
	if public.Group == nil || public.Key == nil || public.C == nil {
		return false
	}
	return public.Bits > 0 && public.Bits < public.Group.Q().BitLen()
}

func (p *Proof) IsValid(public Public) bool {
	if p == nil || !public.isWellFormed() {
		return false
	}
	if len(p.Digits) != public.Bits || len(p.Responses) != public.Bits {
		return false
	}
	group := public.Group
	if group.ValidatePublicKey(public.Key) != nil {
		return false
	}
	if group.ValidateCiphertexts(public.C) != nil || group.ValidateCiphertexts(p.Digits...) != nil {
		return false
	}
	for _, r := range p.Responses {
		if r == nil {
			return false
		}
		if group.ValidateElements(r.U[0], r.U[1], r.V[0], r.V[1]) != nil {
			return false
		}
		if !zk.IsExponent(group, r.E[0], r.E[1], r.Z[0], r.Z[1]) {
			return false
		}
	}
	return true
}

// commitment holds the prover's state for a single digit between the two moves.
type commitment struct {
	bit      int
	nonce    *saferith.Nat
	w        *saferith.Nat
	response *Response
}

// decompose splits nonce into per-digit nonces rᵢ such that ∑ 2ⁱ⋅rᵢ = nonce (mod q).
func decompose(group *elgamal.Group, nonce *saferith.Nat, bits int) []*saferith.Nat {
	q := group.Q()
	nonces := make([]*saferith.Nat, bits)
	r0 := new(saferith.Nat).Mod(nonce, q)
	power := new(saferith.Nat).SetUint64(1)
	two := new(saferith.Nat).SetUint64(2)
	for i := 1; i < bits; i++ {
		power.ModMul(power, two, q)
		nonces[i] = group.RandomExponent(rand.Reader)
		r0.ModSub(r0, new(saferith.Nat).ModMul(power, nonces[i], q), q)
	}
	nonces[0] = r0
	return nonces
}

// shifted returns C₂⋅g⁻ʲ, which equals hʳ when the digit encrypts j.
func shifted(group *elgamal.Group, digit *elgamal.Ciphertext, j int) *saferith.Nat {
	if j == 0 {
		return digit.C2
	}
	return group.Div(digit.C2, group.Generator())
}

func NewProof(hash *hash.Hash, public Public, private Private, pl *pool.Pool) *Proof {
	group := public.Group
	q := group.Q()
	x := private.X.Big()
	nonces := decompose(group, private.Nonce, public.Bits)

	digits := make([]*elgamal.Ciphertext, public.Bits)
	commitments := make([]*commitment, public.Bits)
	pl.Parallelize(public.Bits, func(i int) interface{} {
		bit := int(x.Bit(i))
		digit := group.Encrypt(public.Key, new(saferith.Nat).SetUint64(uint64(bit)), nonces[i])

		r := &Response{}
		// simulate the false branch
		fake := 1 - bit
		r.E[fake] = sample.ModN(rand.Reader, q)
		r.Z[fake] = sample.ModN(rand.Reader, q)
		r.U[fake] = group.Div(group.ExpBase(r.Z[fake]), group.Exp(digit.C1, r.E[fake]))
		r.V[fake] = group.Div(group.Exp(public.Key.H, r.Z[fake]), group.Exp(shifted(group, digit, fake), r.E[fake]))

		w := sample.ModN(rand.Reader, q)
		r.U[bit] = group.ExpBase(w)
		r.V[bit] = group.Exp(public.Key.H, w)

		digits[i] = digit
		commitments[i] = &commitment{bit: bit, nonce: nonces[i], w: w, response: r}
		return nil
	})

	responses := make([]*Response, public.Bits)
	for i, c := range commitments {
		responses[i] = c.response
	}
	e := challenge(hash, public, digits, responses)

	for _, c := range commitments {
		r := c.response
		r.E[c.bit] = new(saferith.Nat).ModSub(e, r.E[1-c.bit], q)
		z := new(saferith.Nat).ModMul(r.E[c.bit], c.nonce, q)
		r.Z[c.bit] = z.ModAdd(z, c.w, q)
	}
	return &Proof{Digits: digits, Responses: responses}
}

func (p *Proof) Verify(hash *hash.Hash, public Public, pl *pool.Pool) bool {
	if !p.IsValid(public) {
		return false
	}
	group := public.Group
	q := group.Q()

	// ∑ 2ⁱ⋅Digits[i], evaluated with Horner's rule
	two := new(saferith.Nat).SetUint64(2)
	acc := p.Digits[public.Bits-1]
	for i := public.Bits - 2; i >= 0; i-- {
		acc = group.Add(group.ScalarMul(acc, two), p.Digits[i])
	}
	if !acc.Equal(public.C) {
		return false
	}

	e := challenge(hash, public, p.Digits, p.Responses)

	verifications := pl.Parallelize(public.Bits, func(i int) interface{} {
		digit, r := p.Digits[i], p.Responses[i]
		if new(saferith.Nat).ModAdd(r.E[0], r.E[1], q).Eq(e) != 1 {
			return false
		}
		for j := 0; j < 2; j++ {
			// gᶻ = U⋅C₁ᵉ
			if group.ExpBase(r.Z[j]).Eq(group.Mul(r.U[j], group.Exp(digit.C1, r.E[j]))) != 1 {
				return false
			}
			// hᶻ = V⋅(C₂⋅g⁻ʲ)ᵉ
			if group.Exp(public.Key.H, r.Z[j]).Eq(group.Mul(r.V[j], group.Exp(shifted(group, digit, j), r.E[j]))) != 1 {
				return false
			}
		}
		return true
	})
	for _, ok := range verifications {
		if !ok.(bool) {
			return false
		}
	}
	return true
}

func challenge(hash *hash.Hash, public Public, digits []*elgamal.Ciphertext, responses []*Response) *saferith.Nat {
	_ = hash.WriteAny(public.Group, public.Key, public.C, new(saferith.Nat).SetUint64(uint64(public.Bits)))
	for i := range digits {
		r := responses[i]
		_ = hash.WriteAny(digits[i], r.U[0], r.U[1], r.V[0], r.V[1])
	}
	return sample.ModN(hash.Digest(), public.Group.Q())
}
