package hmrt

import (
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/two-party-rsa/internal/test"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
)

func testConfig() *Config {
	return &Config{
		CandidateBits:      64,
		PaillierBits:       test.PaillierBits,
		TrialDivisionBound: 60,
		Group:              test.Group(),
	}
}

func nat(v uint64) *saferith.Nat {
	return new(saferith.Nat).SetUint64(v)
}

type fixture struct {
	one, two   *Party
	keysOne    *Keys
	keysTwo    *Keys
	setupOne   *KeySetupMessage
	setupTwo   *KeySetupMessage
	privateOne *PrivateMaterial
	privateTwo *PrivateMaterial
}

func newParties(t *testing.T) (one, two *Party) {
	t.Helper()
	var err error
	one, err = NewParty(PartyOne, testConfig(), nil)
	require.NoError(t, err)
	two, err = NewParty(PartyTwo, testConfig(), nil)
	require.NoError(t, err)
	return one, two
}

// newFixture runs key setup with the fixed Paillier keys of the test package.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.one, f.two = newParties(t)
	var err error
	f.setupOne, f.privateOne, err = f.one.localKeys(test.PaillierSecretKey(0))
	require.NoError(t, err)
	f.setupTwo, f.privateTwo, err = f.two.localKeys(test.PaillierSecretKey(1))
	require.NoError(t, err)

	f.keysOne, err = f.one.FinalizeKeys(f.setupTwo, f.setupOne, f.privateOne)
	require.NoError(t, err)
	f.keysTwo, err = f.two.FinalizeKeys(f.setupOne, f.setupTwo, f.privateTwo)
	require.NoError(t, err)
	return f
}

type candidate struct {
	witnessOne, witnessTwo *Witness
	msgOne, msgTwo         *CandidateMessage
	pairOne, pairTwo       *CiphertextPair
}

// candidateFromShares builds a candidate N = 4⋅(shareOne + shareTwo) + 3.
func (f *fixture) candidateFromShares(t *testing.T, shareOne, shareTwo *saferith.Nat) *candidate {
	t.Helper()
	c := &candidate{}
	var err error
	c.witnessOne, c.msgOne, err = f.one.encryptShare(f.keysOne, shareOne)
	require.NoError(t, err)
	c.witnessTwo, c.msgTwo, err = f.two.encryptShare(f.keysTwo, shareTwo)
	require.NoError(t, err)

	c.pairOne, err = f.one.NormalizeCiphertexts(f.keysOne, c.msgTwo, c.msgOne)
	require.NoError(t, err)
	c.pairTwo, err = f.two.NormalizeCiphertexts(f.keysTwo, c.msgOne, c.msgTwo)
	require.NoError(t, err)
	return c
}

func (f *fixture) randomCandidate(t *testing.T) *candidate {
	t.Helper()
	c := &candidate{}
	var err error
	c.witnessOne, c.msgOne, err = f.one.GenerateShare(f.keysOne)
	require.NoError(t, err)
	c.witnessTwo, c.msgTwo, err = f.two.GenerateShare(f.keysTwo)
	require.NoError(t, err)

	c.pairOne, err = f.one.NormalizeCiphertexts(f.keysOne, c.msgTwo, c.msgOne)
	require.NoError(t, err)
	c.pairTwo, err = f.two.NormalizeCiphertexts(f.keysTwo, c.msgOne, c.msgTwo)
	require.NoError(t, err)
	return c
}

// plaintext returns N, computed from both witnesses.
func (c *candidate) plaintext() *big.Int {
	n := new(big.Int).Add(c.witnessOne.share.Big(), c.witnessTwo.share.Big())
	n.Lsh(n, 2)
	return n.Add(n, big.NewInt(3))
}

type division struct {
	reductionOne, reductionTwo   *ReductionMessage
	decryptionOne, decryptionTwo *DecryptionMessage
	cAlphaOne, cAlphaTildeOne    *elgamal.Ciphertext
	cAlphaTwo, cAlphaTildeTwo    *elgamal.Ciphertext
}

func (f *fixture) prepare(t *testing.T, c *candidate, alpha uint64) *division {
	t.Helper()
	d := &division{}
	var err error
	d.reductionOne, err = f.one.PrepareReduction(alpha, f.keysOne, c.pairOne, c.witnessOne)
	require.NoError(t, err)
	d.reductionTwo, err = f.two.PrepareReduction(alpha, f.keysTwo, c.pairTwo, c.witnessTwo)
	require.NoError(t, err)

	d.decryptionOne, d.cAlphaOne, d.cAlphaTildeOne, err = f.one.CombineAndPartialDecrypt(d.reductionTwo, d.reductionOne, alpha, f.keysOne, c.pairOne)
	require.NoError(t, err)
	d.decryptionTwo, d.cAlphaTwo, d.cAlphaTildeTwo, err = f.two.CombineAndPartialDecrypt(d.reductionOne, d.reductionTwo, alpha, f.keysTwo, c.pairTwo)
	require.NoError(t, err)
	return d
}

// divide runs a trial division, and checks that both parties reach the same conclusion.
func (f *fixture) divide(t *testing.T, c *candidate, alpha uint64) bool {
	t.Helper()
	d := f.prepare(t, c, alpha)
	survivedOne, err := f.one.ConcludeDivision(d.cAlphaOne, d.cAlphaTildeOne, d.decryptionTwo, f.keysOne)
	require.NoError(t, err)
	survivedTwo, err := f.two.ConcludeDivision(d.cAlphaTwo, d.cAlphaTildeTwo, d.decryptionOne, f.keysTwo)
	require.NoError(t, err)
	require.Equal(t, survivedOne, survivedTwo, "parties disagree for alpha = %d", alpha)
	return survivedOne
}

func TestJointKeyCommutativity(t *testing.T) {
	f := newFixture(t)
	group := f.one.Group

	assert.True(t, f.keysOne.Joint.Equal(f.keysTwo.Joint), "joint keys differ")
	assert.Equal(t, f.keysOne.Joint.H.Bytes(), f.keysTwo.Joint.H.Bytes(), "joint keys are not byte identical")
	assert.True(t, group.AddPublicKeys(f.setupTwo.ElGamalKey, f.setupOne.ElGamalKey).Equal(f.keysOne.Joint))

	assert.True(t, f.keysOne.LocalElGamal.Equal(f.keysTwo.RemoteElGamal))
	assert.True(t, f.keysOne.RemotePaillier.Equal(f.keysTwo.LocalPaillier))
}

func TestKeySetupFreshKeys(t *testing.T) {
	one, two := newParties(t)

	setupOne, err := one.StartKeySetup()
	require.NoError(t, err)
	setupTwo, err := two.StartKeySetup()
	require.NoError(t, err)

	keysOne, err := setupOne.Finalize(setupTwo.Message())
	require.NoError(t, err)
	keysTwo, err := setupTwo.Finalize(setupOne.Message())
	require.NoError(t, err)
	assert.True(t, keysOne.Joint.Equal(keysTwo.Joint))
	assert.Equal(t, test.PaillierBits, keysOne.RemotePaillier.N().BitLen())

	_, err = setupOne.Finalize(setupTwo.Message())
	assert.ErrorIs(t, err, ErrRoundCompleted)
}

func TestPrecomputedPaillierKey(t *testing.T) {
	one, two := newParties(t)
	one.Paillier = test.PaillierSecretKey(0)
	two.Paillier = test.PaillierSecretKey(1)

	setupOne, err := one.StartKeySetup()
	require.NoError(t, err)
	setupTwo, err := two.StartKeySetup()
	require.NoError(t, err)
	assert.True(t, setupOne.Message().PaillierKey.Equal(test.PaillierSecretKey(0).PublicKey))

	_, err = setupTwo.Finalize(setupOne.Message())
	require.NoError(t, err)

	one.Config = testConfig()
	one.Config.PaillierBits = 2 * test.PaillierBits
	_, err = one.StartKeySetup()
	assert.ErrorIs(t, err, ErrInvalidPaillierKey)
}

func TestScalingInvariant(t *testing.T) {
	f := newFixture(t)
	group := f.one.Group

	for i := 0; i < 3; i++ {
		c := f.randomCandidate(t)
		assert.True(t, c.pairOne.C0.Equal(c.pairTwo.C0), "parties derived different pairs")
		assert.True(t, c.pairOne.C1.Equal(c.pairTwo.C1), "parties derived different pairs")

		n := c.plaintext()
		assert.Equal(t, uint(3), n.Bit(0)+2*n.Bit(1), "candidate is not 3 mod 4")
		assert.LessOrEqual(t, n.BitLen(), f.one.Config.BoundBits()+1)

		ct := c.pairOne.Candidate(group)
		partialOne := group.PartialDecrypt(f.keysOne.private.elgamal, ct)
		partialTwo := group.PartialDecrypt(f.keysTwo.private.elgamal, ct)
		expected := group.ExpBase(new(saferith.Nat).SetBig(n, n.BitLen()))
		assert.Equal(t, saferith.Choice(1), group.Combine(ct, partialOne, partialTwo).Eq(expected),
			"pair does not decrypt to 4(p1+p2)+3")
	}
}

func TestDivisibility(t *testing.T) {
	f := newFixture(t)
	// N = 4⋅(5 + 7) + 3 = 51 = 3⋅17
	c := f.candidateFromShares(t, nat(5), nat(7))
	require.Equal(t, int64(51), c.plaintext().Int64())

	assert.False(t, f.divide(t, c, 3), "51 is divisible by 3")
	assert.True(t, f.divide(t, c, 5), "51 is not divisible by 5")
	assert.True(t, f.divide(t, c, 7), "51 is not divisible by 7")
	assert.False(t, f.divide(t, c, 17), "51 is divisible by 17")

	// the residues 23 mod 3 = 2 and 28 mod 3 = 1 add up to α, which only the tilde channel detects
	d := f.prepare(t, c, 3)
	alphaZero, tildeZero, err := f.two.decryptChannels(d.cAlphaTwo, d.cAlphaTildeTwo, d.decryptionOne, f.keysTwo)
	require.NoError(t, err)
	assert.False(t, alphaZero)
	assert.True(t, tildeZero)
}

func TestDegenerateCandidate(t *testing.T) {
	f := newFixture(t)
	// N = 4⋅(0 + 1) + 3 = 7, with residues 3 and 4 modulo 7
	c := f.candidateFromShares(t, nat(0), nat(1))
	require.Equal(t, int64(7), c.plaintext().Int64())

	d := f.prepare(t, c, 7)
	alphaZero, tildeZero, err := f.one.decryptChannels(d.cAlphaOne, d.cAlphaTildeOne, d.decryptionTwo, f.keysOne)
	require.NoError(t, err)
	assert.False(t, alphaZero, "the alpha channel decrypts to 7")
	assert.True(t, tildeZero, "the tilde channel must decrypt to the identity")

	survived, err := f.one.ConcludeDivision(d.cAlphaOne, d.cAlphaTildeOne, d.decryptionTwo, f.keysOne)
	require.NoError(t, err)
	assert.False(t, survived)

	assert.True(t, f.divide(t, c, 5))
}

func TestCompleteness(t *testing.T) {
	f := newFixture(t)
	c := f.randomCandidate(t)
	n := c.plaintext()

	for _, alpha := range f.one.Config.TrialDivisors() {
		expected := new(big.Int).Mod(n, new(big.Int).SetUint64(alpha)).Sign() != 0
		assert.Equal(t, expected, f.divide(t, c, alpha), "N = %s, alpha = %d", n, alpha)
	}
}

func TestConfig(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, testConfig().Validate())

	assert.Equal(t, 30, testConfig().ShareBits())
	assert.Equal(t, 32, testConfig().BoundBits())
	assert.Equal(t, []uint64{3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59}, testConfig().TrialDivisors())
	assert.Equal(t, uint64(1)<<32, testConfig().Bound().Big().Uint64())

	cfg := testConfig()
	cfg.CandidateBits = 65
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = testConfig()
	cfg.CandidateBits = 1024
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig, "test group is too small")

	cfg = testConfig()
	cfg.PaillierBits = 128
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = testConfig()
	cfg.Group = nil
	cfg.GroupName = "unknown"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	_, err := NewParty(Role(3), testConfig(), nil)
	assert.Error(t, err)
}
