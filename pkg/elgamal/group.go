package elgamal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
)

// minGroupBits is the smallest modulus accepted by NewGroup.
const minGroupBits = 64

var (
	ErrNotSafePrime     = errors.New("elgamal: modulus is not a safe prime")
	ErrInvalidGenerator = errors.New("elgamal: generator does not span the prime order subgroup")
	ErrInvalidElement   = errors.New("elgamal: value is not an element of the group")
)

// Group is the subgroup of quadratic residues of ℤₚˣ, for a safe prime p = 2q + 1.
// Its order q is prime, so every element other than 1 generates it.
//
// Plaintexts and nonces are exponents, and live in ℤq.
type Group struct {
	name string
	p    *saferith.Modulus
	q    *saferith.Modulus
	g    *saferith.Nat
	one  *saferith.Nat
}

// NewGroup validates the public parameters (p, g) and returns the group they describe.
func NewGroup(name string, p, g *big.Int) (*Group, error) {
	if p == nil || g == nil {
		return nil, errors.New("elgamal: nil group parameter")
	}
	if p.BitLen() < minGroupBits || p.Bit(0) == 0 {
		return nil, ErrNotSafePrime
	}
	q := new(big.Int).Rsh(p, 1)
	if !q.ProbablyPrime(20) || !p.ProbablyPrime(20) {
		return nil, ErrNotSafePrime
	}
	pMinusOne := new(big.Int).Sub(p, big.NewInt(1))
	if g.Cmp(big.NewInt(1)) <= 0 || g.Cmp(pMinusOne) >= 0 {
		return nil, ErrInvalidGenerator
	}
	if new(big.Int).Exp(g, q, p).Cmp(big.NewInt(1)) != 0 {
		return nil, ErrInvalidGenerator
	}
	pMod := saferith.ModulusFromNat(new(saferith.Nat).SetBig(p, p.BitLen()))
	return &Group{
		name: name,
		p:    pMod,
		q:    saferith.ModulusFromNat(new(saferith.Nat).SetBig(q, q.BitLen())),
		g:    new(saferith.Nat).SetBig(g, p.BitLen()),
		one:  new(saferith.Nat).SetUint64(1).Resize(p.BitLen()),
	}, nil
}

// Name returns the name the group was registered with.
func (g *Group) Name() string { return g.name }

// P returns the modulus of the ambient group ℤₚˣ.
func (g *Group) P() *saferith.Modulus { return g.p }

// Q returns the order of the group.
func (g *Group) Q() *saferith.Modulus { return g.q }

// Generator returns a copy of the generator.
func (g *Group) Generator() *saferith.Nat { return new(saferith.Nat).SetNat(g.g) }

// Identity returns the neutral element.
func (g *Group) Identity() *saferith.Nat { return new(saferith.Nat).SetNat(g.one) }

// Exp returns xᵉ (mod p).
func (g *Group) Exp(x, e *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).Exp(x, e, g.p)
}

// ExpBase returns gᵉ (mod p).
func (g *Group) ExpBase(e *saferith.Nat) *saferith.Nat {
	return g.Exp(g.g, e)
}

// Mul returns ∏ xs (mod p).
func (g *Group) Mul(xs ...*saferith.Nat) *saferith.Nat {
	out := g.Identity()
	for _, x := range xs {
		out.ModMul(out, x, g.p)
	}
	return out
}

// Inv returns x⁻¹ (mod p).
func (g *Group) Inv(x *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModInverse(x, g.p)
}

// Div returns x⋅y⁻¹ (mod p).
func (g *Group) Div(x, y *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).ModMul(x, g.Inv(y), g.p)
}

// IsIdentity returns true if x = 1 (mod p).
func (g *Group) IsIdentity(x *saferith.Nat) bool {
	return new(saferith.Nat).Mod(x, g.p).Eq(g.one) == 1
}

// IsElement returns true if 0 < x < p and x lies in the subgroup of order q.
func (g *Group) IsElement(x *saferith.Nat) bool {
	if x == nil || x.EqZero() == 1 {
		return false
	}
	if _, _, lt := x.CmpMod(g.p); lt != 1 {
		return false
	}
	return g.IsIdentity(g.Exp(x, g.q.Nat()))
}

// ValidateElements returns ErrInvalidElement if any of xs is not a group element.
func (g *Group) ValidateElements(xs ...*saferith.Nat) error {
	for _, x := range xs {
		if !g.IsElement(x) {
			return ErrInvalidElement
		}
	}
	return nil
}

// RandomExponent samples a uniform non-zero exponent in ℤq.
func (g *Group) RandomExponent(rand io.Reader) *saferith.Nat {
	return sample.NonZeroModN(rand, g.q)
}

// Exponent reduces x modulo the group order.
func (g *Group) Exponent(x *saferith.Nat) *saferith.Nat {
	return new(saferith.Nat).Mod(x, g.q)
}

// Equal returns true if both groups have the same parameters.
func (g *Group) Equal(other *Group) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.p.Nat().Eq(other.p.Nat()) == 1 && g.g.Eq(other.g) == 1
}

// String implements fmt.Stringer.
func (g *Group) String() string {
	return fmt.Sprintf("%s (%d bits)", g.name, g.p.BitLen())
}

// WriteTo implements io.WriterTo, and writes the modulus and the generator.
func (g *Group) WriteTo(w io.Writer) (int64, error) {
	return writeNats(w, g.p.Nat(), g.g)
}

// Domain implements hash.WriterToWithDomain.
func (*Group) Domain() string {
	return "ElGamal Group"
}

// writeNats writes each x as a length-prefixed minimal big-endian encoding,
// so that the output does not depend on the capacity of x.
func writeNats(w io.Writer, xs ...*saferith.Nat) (int64, error) {
	var total int64
	for _, x := range xs {
		if x == nil {
			return total, io.ErrUnexpectedEOF
		}
		b := x.Big().Bytes()
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(b)))
		n, err := w.Write(length[:])
		total += int64(n)
		if err != nil {
			return total, err
		}
		n, err = w.Write(b)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
