package arith

import (
	"github.com/cronokirby/saferith"
)

// Modulus wraps a saferith.Modulus and enables faster modular exponentiation when
// the factorization is known.
// When n = p⋅q, xᵉ (mod n) can be computed with only two exponentiations
// with p and q respectively.
type Modulus struct {
	// represents modulus n
	*saferith.Modulus
	// n = p⋅q
	p, q *saferith.Modulus
	// pInv = p⁻¹ (mod q)
	pNat, pInv *saferith.Nat
}

// ModulusFromN creates a simple wrapper around a given modulus n.
// The modulus is not copied.
func ModulusFromN(n *saferith.Modulus) *Modulus {
	return &Modulus{
		Modulus: n,
	}
}

// ModulusFromFactors creates the necessary cached values to accelerate
// exponentiation mod n.
func ModulusFromFactors(p, q *saferith.Nat) *Modulus {
	nNat := new(saferith.Nat).Mul(p, q, -1)
	pMod := saferith.ModulusFromNat(p)
	qMod := saferith.ModulusFromNat(q)
	return &Modulus{
		Modulus: saferith.ModulusFromNat(nNat),
		p:       pMod,
		q:       qMod,
		pNat:    new(saferith.Nat).SetNat(p),
		pInv:    new(saferith.Nat).ModInverse(p, qMod),
	}
}

// Exp is equivalent to (saferith.Nat).Exp(x, e, n.Modulus).
// It returns xᵉ (mod n).
func (n *Modulus) Exp(x, e *saferith.Nat) *saferith.Nat {
	if !n.hasFactorization() {
		return new(saferith.Nat).Exp(x, e, n.Modulus)
	}
	var xp, xq saferith.Nat
	xp.Exp(x, e, n.p) // x₁ = xᵉ (mod p)
	xq.Exp(x, e, n.q) // x₂ = xᵉ (mod q)
	// r = x₁ + p ⋅ [p⁻¹ (mod q)] ⋅ [x₂ - x₁] (mod n)
	r := xq.ModSub(&xq, &xp, n.Modulus)
	r.ModMul(r, n.pInv, n.Modulus)
	r.ModMul(r, n.pNat, n.Modulus)
	r.ModAdd(r, &xp, n.Modulus)
	return r
}

func (n Modulus) hasFactorization() bool {
	return n.p != nil && n.q != nil && n.pNat != nil && n.pInv != nil
}
