package zkddh

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

func statement(t *testing.T) (Public, Private) {
	t.Helper()
	group := test.Group()
	x := group.RandomExponent(rand.Reader)
	g2 := group.ExpBase(group.RandomExponent(rand.Reader))
	return Public{
		Group: group,
		G1:    group.Generator(),
		H1:    group.ExpBase(x),
		G2:    g2,
		H2:    group.Exp(g2, x),
	}, Private{X: x}
}

func TestDDH(t *testing.T) {
	public, private := statement(t)

	proof, err := System{}.Prove(hash.New(), public, private)
	require.NoError(t, err)
	assert.NoError(t, System{}.Verify(hash.New(), public, proof))

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.NoError(t, System{}.Verify(hash.New(), public, proof2))

	// swapping the bases changes the statement
	swapped := Public{Group: public.Group, G1: public.G2, H1: public.H2, G2: public.G1, H2: public.H1}
	assert.ErrorIs(t, System{}.Verify(hash.New(), swapped, proof), zk.ErrVerify)

	one := new(saferith.Nat).SetUint64(1)
	tampered := *proof
	tampered.Z = new(saferith.Nat).ModAdd(proof.Z, one, public.Group.Q())
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, &tampered), zk.ErrVerify)

	tampered = *proof
	tampered.A2 = public.Group.Mul(proof.A2, public.Group.Generator())
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, &tampered), zk.ErrVerify)
}

func TestDDHUnequalLogs(t *testing.T) {
	public, private := statement(t)
	group := public.Group
	public.H2 = group.Mul(public.H2, group.Generator())

	_, err := System{}.Prove(hash.New(), public, private)
	assert.ErrorIs(t, err, zk.ErrInvalidWitness)

	// a proof forged for the honest statement does not carry over
	proof := NewProof(hash.New(), public, private)
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, proof), zk.ErrVerify)
}

func TestDDHRejectsNonElements(t *testing.T) {
	public, private := statement(t)
	proof, err := System{}.Prove(hash.New(), public, private)
	require.NoError(t, err)

	// p - 1 has order 2, and lies outside the subgroup
	minusOne := new(saferith.Nat).ModSub(new(saferith.Nat).SetUint64(0), new(saferith.Nat).SetUint64(1), public.Group.P())
	tampered := *proof
	tampered.A1 = minusOne
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, &tampered), zk.ErrVerify)
}
