package zkdlog

import (
	"crypto/rand"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/two-party-rsa/internal/test"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/zk"
)

func TestDLog(t *testing.T) {
	group := test.Group()
	sk, pk := group.GenerateKey(rand.Reader)
	public := Public{Group: group, H: pk.H}

	proof, err := System{}.Prove(hash.New(), public, Private{X: sk.Exponent()})
	require.NoError(t, err)
	assert.NoError(t, System{}.Verify(hash.New(), public, proof))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.NoError(t, System{}.Verify(hash.New(), public, proof2))

	// different transcript
	h := hash.New()
	require.NoError(t, h.WriteAny("other"))
	assert.ErrorIs(t, System{}.Verify(h, public, proof), zk.ErrVerify)

	// different key
	_, pk2 := group.GenerateKey(rand.Reader)
	assert.ErrorIs(t, System{}.Verify(hash.New(), Public{Group: group, H: pk2.H}, proof), zk.ErrVerify)

	// tampered response
	proof2.Z = new(saferith.Nat).ModAdd(proof2.Z, new(saferith.Nat).SetUint64(1), group.Q())
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, proof2), zk.ErrVerify)

	assert.ErrorIs(t, System{}.Verify(hash.New(), public, nil), zk.ErrVerify)
}

func TestDLogWrongWitness(t *testing.T) {
	group := test.Group()
	_, pk := group.GenerateKey(rand.Reader)
	sk2, _ := group.GenerateKey(rand.Reader)

	_, err := System{}.Prove(hash.New(), Public{Group: group, H: pk.H}, Private{X: sk2.Exponent()})
	assert.ErrorIs(t, err, zk.ErrInvalidWitness)
}
