package elgamal

import (
	"io"

	"github.com/cronokirby/saferith"
)

// PublicKey is an exponential ElGamal public key H = gˣ.
type PublicKey struct {
	H *saferith.Nat
}

// SecretKey holds the secret exponent x.
//
// It has no exported fields and no marshalling methods, and is never part of a message.
type SecretKey struct {
	x *saferith.Nat
}

// GenerateKey samples a fresh key pair.
func (g *Group) GenerateKey(rand io.Reader) (*SecretKey, *PublicKey) {
	x := g.RandomExponent(rand)
	return &SecretKey{x: x}, &PublicKey{H: g.ExpBase(x)}
}

// Exponent returns a copy of the secret exponent, for use as a proof witness.
func (sk *SecretKey) Exponent() *saferith.Nat {
	return new(saferith.Nat).SetNat(sk.x)
}

// Equal returns true if both keys have the same value.
func (pk *PublicKey) Equal(other *PublicKey) bool {
	if pk == nil || other == nil || pk.H == nil || other.H == nil {
		return false
	}
	return pk.H.Eq(other.H) == 1
}

// WriteTo implements io.WriterTo.
func (pk *PublicKey) WriteTo(w io.Writer) (int64, error) {
	if pk == nil {
		return 0, io.ErrUnexpectedEOF
	}
	return writeNats(w, pk.H)
}

// Domain implements hash.WriterToWithDomain.
func (*PublicKey) Domain() string {
	return "ElGamal PublicKey"
}

// ValidatePublicKey checks that pk is a non-trivial element of the group.
func (g *Group) ValidatePublicKey(pk *PublicKey) error {
	if pk == nil || !g.IsElement(pk.H) || g.IsIdentity(pk.H) {
		return ErrInvalidElement
	}
	return nil
}

// AddPublicKeys returns the key whose secret is the sum of the secrets of the given keys.
// The result does not depend on the order of the arguments.
func (g *Group) AddPublicKeys(keys ...*PublicKey) *PublicKey {
	hs := make([]*saferith.Nat, 0, len(keys))
	for _, k := range keys {
		hs = append(hs, k.H)
	}
	return &PublicKey{H: g.Mul(hs...)}
}

// Encrypt returns (gʳ, gᵐ⋅hʳ), using the supplied nonce r.
func (g *Group) Encrypt(pk *PublicKey, m, nonce *saferith.Nat) *Ciphertext {
	return &Ciphertext{
		C1: g.ExpBase(nonce),
		C2: g.Mul(g.ExpBase(m), g.Exp(pk.H, nonce)),
	}
}

// EncryptConstant returns the deterministic encryption (1, gᵐ) of a public constant.
func (g *Group) EncryptConstant(m *saferith.Nat) *Ciphertext {
	return &Ciphertext{
		C1: g.Identity(),
		C2: g.ExpBase(m),
	}
}

// Add returns a ciphertext of the sum of the plaintexts of a and b.
func (g *Group) Add(a, b *Ciphertext) *Ciphertext {
	return &Ciphertext{
		C1: g.Mul(a.C1, b.C1),
		C2: g.Mul(a.C2, b.C2),
	}
}

// Neg returns a ciphertext of the negated plaintext of c.
func (g *Group) Neg(c *Ciphertext) *Ciphertext {
	return &Ciphertext{
		C1: g.Inv(c.C1),
		C2: g.Inv(c.C2),
	}
}

// Sub returns a ciphertext of the difference of the plaintexts of a and b.
func (g *Group) Sub(a, b *Ciphertext) *Ciphertext {
	return g.Add(a, g.Neg(b))
}

// ScalarMul returns a ciphertext of k times the plaintext of c.
// The nonce is multiplied by k as well, which is what rerandomization relies on.
func (g *Group) ScalarMul(c *Ciphertext, k *saferith.Nat) *Ciphertext {
	return &Ciphertext{
		C1: g.Exp(c.C1, k),
		C2: g.Exp(c.C2, k),
	}
}

// PartialDecrypt returns c₁ˣ, the share of the decryption mask held by sk.
func (g *Group) PartialDecrypt(sk *SecretKey, c *Ciphertext) *saferith.Nat {
	return g.Exp(c.C1, sk.x)
}

// Combine removes the decryption masks from c, and returns gᵐ.
func (g *Group) Combine(c *Ciphertext, partials ...*saferith.Nat) *saferith.Nat {
	return g.Div(c.C2, g.Mul(partials...))
}

// Decrypt returns gᵐ for a ciphertext encrypted under the public key of sk.
// Recovering m itself requires a discrete logarithm, which is only feasible for small plaintexts.
func (g *Group) Decrypt(sk *SecretKey, c *Ciphertext) *saferith.Nat {
	return g.Combine(c, g.PartialDecrypt(sk, c))
}
