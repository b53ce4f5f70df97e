package zkreduce

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/two-party-rsa/internal/test"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
	"github.com/taurusgroup/two-party-rsa/pkg/pool"
	"github.com/taurusgroup/two-party-rsa/pkg/zk"
)

const boundBits = 32

func nat(v uint64) *saferith.Nat {
	return new(saferith.Nat).SetUint64(v)
}

func statement(t *testing.T, a *saferith.Nat, alpha uint64) (Public, Private) {
	t.Helper()
	group := test.Group()
	_, pk := group.GenerateKey(rand.Reader)

	bBig := new(big.Int).Mod(a.Big(), new(big.Int).SetUint64(alpha))
	b := new(saferith.Nat).SetBig(bBig, 64)
	ra := group.RandomExponent(rand.Reader)
	rb := group.RandomExponent(rand.Reader)
	bound := new(saferith.Nat).Lsh(nat(1), boundBits, boundBits+1)
	return Public{
			Group:   group,
			Key:     pk,
			C:       group.Encrypt(pk, a, ra),
			CPrime:  group.Encrypt(pk, b, rb),
			Modulus: nat(alpha),
			Bound:   bound,
		}, Private{
			A: a, NonceA: ra,
			B: b, NonceB: rb,
		}
}

func TestReduce(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()
	system := System{Pool: pl}

	for _, tc := range []struct {
		a     *saferith.Nat
		alpha uint64
	}{
		{nat(51), 3},
		{nat(51), 5},
		{nat(0), 7},
		{nat(6), 7},
		{sample.Bits(rand.Reader, boundBits), 997},
		{nat(1<<boundBits - 1), 2},
	} {
		public, private := statement(t, tc.a, tc.alpha)
		proof, err := system.Prove(hash.New(), public, private)
		require.NoError(t, err, "alpha = %d", tc.alpha)
		assert.NoError(t, system.Verify(hash.New(), public, proof), "alpha = %d", tc.alpha)
	}
}

func TestReduceMarshal(t *testing.T) {
	public, private := statement(t, nat(123456), 11)
	proof, err := System{}.Prove(hash.New(), public, private)
	require.NoError(t, err)

	out, err := cbor.Marshal(proof)
	require.NoError(t, err, "failed to marshal proof")
	proof2 := &Proof{}
	require.NoError(t, cbor.Unmarshal(out, proof2), "failed to unmarshal proof")
	assert.NoError(t, System{}.Verify(hash.New(), public, proof2))

	// a different modulus changes the statement
	public.Modulus = nat(13)
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, proof2), zk.ErrVerify)
}

func TestReduceInvalidWitness(t *testing.T) {
	public, private := statement(t, nat(51), 5)
	private.B = nat(2)
	_, err := System{}.Prove(hash.New(), public, private)
	assert.ErrorIs(t, err, zk.ErrInvalidWitness)

	tooLarge := new(saferith.Nat).Lsh(nat(1), boundBits, boundBits+1)
	public, private = statement(t, tooLarge, 5)
	_, err = System{}.Prove(hash.New(), public, private)
	assert.ErrorIs(t, err, zk.ErrInvalidWitness)

	public, private = statement(t, nat(51), 1)
	_, err = System{}.Prove(hash.New(), public, private)
	assert.ErrorIs(t, err, zk.ErrInvalidStatement)
}

func TestReduceUnreducedRemainder(t *testing.T) {
	group := test.Group()
	// 6 ≡ 51 (mod 5), but 6 is not a reduced remainder
	public, private := statement(t, nat(51), 5)
	private.B = nat(6)
	public.CPrime = group.Encrypt(public.Key, private.B, private.NonceB)

	proof := NewProof(hash.New(), public, private, nil)
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, proof), zk.ErrVerify)
}

func TestReduceTampered(t *testing.T) {
	public, private := statement(t, nat(51), 3)
	proof, err := System{}.Prove(hash.New(), public, private)
	require.NoError(t, err)
	group := public.Group

	tampered := *proof
	tampered.K = group.Add(proof.K, group.EncryptConstant(nat(1)))
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, &tampered), zk.ErrVerify)

	tampered = *proof
	tampered.Remainder = proof.Complement
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, &tampered), zk.ErrVerify)

	tampered = *proof
	tampered.Quotient = nil
	assert.ErrorIs(t, System{}.Verify(hash.New(), public, &tampered), zk.ErrVerify)

	other := public
	other.CPrime = group.Encrypt(public.Key, private.B, group.RandomExponent(rand.Reader))
	assert.ErrorIs(t, System{}.Verify(hash.New(), other, proof), zk.ErrVerify)
}
