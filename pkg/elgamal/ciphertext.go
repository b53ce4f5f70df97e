package elgamal

import (
	"io"

	"github.com/cronokirby/saferith"
)

// Ciphertext is an exponential ElGamal ciphertext (gʳ, gᵐ⋅hʳ).
type Ciphertext struct {
	C1, C2 *saferith.Nat
}

// Equal returns true if both ciphertexts have identical components.
func (c *Ciphertext) Equal(other *Ciphertext) bool {
	if c == nil || other == nil || c.C1 == nil || c.C2 == nil || other.C1 == nil || other.C2 == nil {
		return false
	}
	return c.C1.Eq(other.C1)&c.C2.Eq(other.C2) == 1
}

// Clone returns a deep copy of c.
func (c *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{
		C1: new(saferith.Nat).SetNat(c.C1),
		C2: new(saferith.Nat).SetNat(c.C2),
	}
}

// WriteTo implements io.WriterTo.
func (c *Ciphertext) WriteTo(w io.Writer) (int64, error) {
	if c == nil {
		return 0, io.ErrUnexpectedEOF
	}
	return writeNats(w, c.C1, c.C2)
}

// Domain implements hash.WriterToWithDomain.
func (*Ciphertext) Domain() string {
	return "ElGamal Ciphertext"
}

// ValidateCiphertexts checks that both components of every ciphertext are group elements.
func (g *Group) ValidateCiphertexts(cs ...*Ciphertext) error {
	for _, c := range cs {
		if c == nil {
			return ErrInvalidElement
		}
		if err := g.ValidateElements(c.C1, c.C2); err != nil {
			return err
		}
	}
	return nil
}
