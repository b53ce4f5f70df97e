package paillier

import (
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/math/arith"
)

// MinModulusBits is the smallest modulus accepted by ValidateN.
const MinModulusBits = 256

var (
	ErrPaillierLength = errors.New("wrong number bit length of Paillier modulus N")
	ErrPaillierEven   = errors.New("modulus N is even")
	ErrPaillierNil    = errors.New("modulus N is nil")
)

// PublicKey is a Paillier public key. It is composed of a modulus N.
type PublicKey struct {
	// n = p⋅q
	n *arith.Modulus
}

// N is the public modulus making up this key.
func (pk *PublicKey) N() *saferith.Modulus {
	return pk.n.Modulus
}

// NewPublicKey returns an initialized PublicKey.
// The modulus is not validated, see ValidateN.
func NewPublicKey(n *saferith.Modulus) *PublicKey {
	return &PublicKey{n: arith.ModulusFromN(n)}
}

// ValidateN performs basic checks to make sure the modulus is valid:
// - log₂(n) ≥ bits, and bits ≥ MinModulusBits.
// - n is odd.
func ValidateN(n *saferith.Modulus, bits int) error {
	if n == nil {
		return ErrPaillierNil
	}
	if bits < MinModulusBits {
		bits = MinModulusBits
	}
	if have := n.BitLen(); have < bits {
		return fmt.Errorf("have: %d, need %d: %w", have, bits, ErrPaillierLength)
	}
	if n.Big().Bit(0) != 1 {
		return ErrPaillierEven
	}
	return nil
}

// Equal returns true if pk ≡ other.
func (pk PublicKey) Equal(other *PublicKey) bool {
	if other == nil {
		return false
	}
	_, eq, _ := pk.n.Cmp(other.n.Modulus)
	return eq == 1
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (pk *PublicKey) WriteTo(w io.Writer) (int64, error) {
	if pk == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(pk.n.Big().Bytes())
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain, and separates this type within hash.Hash.
func (PublicKey) Domain() string {
	return "Paillier PublicKey"
}

// MarshalBinary implements encoding.BinaryMarshaler, and encodes N.
func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	if pk == nil || pk.n == nil {
		return nil, ErrPaillierNil
	}
	return pk.n.Big().Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		return ErrPaillierNil
	}
	nBig := new(big.Int).SetBytes(data)
	if nBig.Bit(0) != 1 {
		return ErrPaillierEven
	}
	*pk = *NewPublicKey(saferith.ModulusFromNat(new(saferith.Nat).SetBig(nBig, nBig.BitLen())))
	return nil
}
