package zkenc

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/two-party-rsa/internal/test"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
	"github.com/taurusgroup/two-party-rsa/pkg/zk"
)

func TestEnc(t *testing.T) {
	group := test.Group()
	_, pk := group.GenerateKey(rand.Reader)

	m := sample.Bits(rand.Reader, 200)
	r := group.RandomExponent(rand.Reader)
	public := Public{Group: group, Key: pk, C: group.Encrypt(pk, m, r)}

	proof, err := System{}.Prove(hash.New(), public, Private{M: m, Nonce: r})
	require.NoError(t, err)
	assert.NoError(t, System{}.Verify(hash.New(), public, proof))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.NoError(t, System{}.Verify(hash.New(), public, proof2))

	// another ciphertext
	other := Public{Group: group, Key: pk, C: group.Encrypt(pk, m, group.RandomExponent(rand.Reader))}
	assert.ErrorIs(t, System{}.Verify(hash.New(), other, proof), zk.ErrVerify)

	// another key
	_, pk2 := group.GenerateKey(rand.Reader)
	assert.ErrorIs(t, System{}.Verify(hash.New(), Public{Group: group, Key: pk2, C: public.C}, proof), zk.ErrVerify)

	tampered := *proof
	tampered.ZM = new(saferith.Nat).ModAdd(proof.ZM, new(saferith.Nat).SetUint64(1), group.Q())
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, &tampered), zk.ErrVerify)
}

func TestEncWrongWitness(t *testing.T) {
	group := test.Group()
	_, pk := group.GenerateKey(rand.Reader)
	m := new(saferith.Nat).SetUint64(42)
	r := group.RandomExponent(rand.Reader)
	public := Public{Group: group, Key: pk, C: group.Encrypt(pk, m, r)}

	_, err := System{}.Prove(hash.New(), public, Private{M: new(saferith.Nat).SetUint64(43), Nonce: r})
	assert.ErrorIs(t, err, zk.ErrInvalidWitness)
}
