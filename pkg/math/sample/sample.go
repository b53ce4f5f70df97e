package sample

import (
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
)

const maxIterations = 255

var ErrMaxIterations = fmt.Errorf("sample: failed to generate after %d iterations", maxIterations)

func mustReadBits(rand io.Reader, buf []byte) {
	for i := 0; i < maxIterations; i++ {
		if _, err := io.ReadFull(rand, buf); err == nil {
			return
		}
	}
	panic(ErrMaxIterations)
}

// ModN samples an element of ℤₙ.
func ModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	out := new(saferith.Nat)
	buf := make([]byte, (n.BitLen()+7)/8)
	// clearing the excess top bits keeps the rejection rate below 1/2
	mask := byte(0xff)
	if excess := len(buf)*8 - n.BitLen(); excess > 0 {
		mask >>= uint(excess)
	}
	for {
		mustReadBits(rand, buf)
		buf[0] &= mask
		out.SetBytes(buf)
		_, _, lt := out.CmpMod(n)
		if lt == 1 {
			break
		}
	}
	return out
}

// NonZeroModN samples an element of ℤₙ \ {0}.
func NonZeroModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	for i := 0; i < maxIterations; i++ {
		x := ModN(rand, n)
		if x.EqZero() != 1 {
			return x
		}
	}
	panic(ErrMaxIterations)
}

// UnitModN returns a u ∈ ℤₙˣ.
func UnitModN(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	for i := 0; i < maxIterations; i++ {
		u := ModN(rand, n)
		if u.IsUnit(n) == 1 {
			return u
		}
	}
	panic(ErrMaxIterations)
}

// Bits returns a uniform integer in [0, 2ᵇⁱᵗˢ).
func Bits(rand io.Reader, bits int) *saferith.Nat {
	buf := make([]byte, (bits+7)/8)
	mustReadBits(rand, buf)
	if excess := len(buf)*8 - bits; excess > 0 && len(buf) > 0 {
		buf[0] &= byte(0xff) >> uint(excess)
	}
	return new(saferith.Nat).SetBytes(buf).Resize(bits)
}

// QNR samples a random quadratic non-residue in ℤₙ, i.e. an element with Jacobi symbol -1.
func QNR(rand io.Reader, n *saferith.Modulus) *saferith.Nat {
	nBig := n.Big()
	for i := 0; i < maxIterations; i++ {
		w := ModN(rand, n)
		if big.Jacobi(w.Big(), nBig) == -1 {
			return w
		}
	}
	panic(ErrMaxIterations)
}
