package hmrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMachine(t *testing.T) {
	f := newFixture(t)

	attemptOne, err := f.one.NewAttempt(f.keysOne)
	require.NoError(t, err)
	attemptTwo, err := f.two.NewAttempt(f.keysTwo)
	require.NoError(t, err)
	assert.NotEqual(t, attemptOne.ID, attemptTwo.ID)

	candidateOne, err := attemptOne.Normalize(attemptTwo.Message())
	require.NoError(t, err)
	candidateTwo, err := attemptTwo.Normalize(attemptOne.Message())
	require.NoError(t, err)
	_, err = attemptOne.Normalize(attemptTwo.Message())
	assert.ErrorIs(t, err, ErrRoundCompleted)

	assert.True(t, candidateOne.Pair().C0.Equal(candidateTwo.Pair().C0))
	assert.True(t, candidateOne.Pair().C1.Equal(candidateTwo.Pair().C1))

	for _, alpha := range []uint64{3, 5, 7} {
		divisionOne, err := candidateOne.Divide(alpha)
		require.NoError(t, err)
		divisionTwo, err := candidateTwo.Divide(alpha)
		require.NoError(t, err)
		assert.Equal(t, alpha, divisionOne.Divisor())

		decryptionOne, err := divisionOne.Combine(divisionTwo.Message())
		require.NoError(t, err)
		decryptionTwo, err := divisionTwo.Combine(divisionOne.Message())
		require.NoError(t, err)
		_, err = divisionOne.Combine(divisionTwo.Message())
		assert.ErrorIs(t, err, ErrRoundCompleted)

		survivedOne, err := decryptionOne.Conclude(decryptionTwo.Message())
		require.NoError(t, err)
		survivedTwo, err := decryptionTwo.Conclude(decryptionOne.Message())
		require.NoError(t, err)
		assert.Equal(t, survivedOne, survivedTwo)
		_, err = decryptionOne.Conclude(decryptionTwo.Message())
		assert.ErrorIs(t, err, ErrRoundCompleted)
	}

	// a division started before the candidate is discarded can still be concluded
	divisionOne, err := candidateOne.Divide(11)
	require.NoError(t, err)
	divisionTwo, err := candidateTwo.Divide(11)
	require.NoError(t, err)
	candidateOne.Discard()
	candidateTwo.Discard()
	_, err = candidateOne.Divide(13)
	assert.ErrorIs(t, err, ErrAttemptDiscarded)

	decryptionOne, err := divisionOne.Combine(divisionTwo.Message())
	require.NoError(t, err)
	decryptionTwo, err := divisionTwo.Combine(divisionOne.Message())
	require.NoError(t, err)
	_, err = decryptionOne.Conclude(decryptionTwo.Message())
	assert.NoError(t, err)
}

func TestRestartAfterAbort(t *testing.T) {
	f := newFixture(t)

	attemptOne, err := f.one.NewAttempt(f.keysOne)
	require.NoError(t, err)
	attemptTwo, err := f.two.NewAttempt(f.keysTwo)
	require.NoError(t, err)

	tampered := clone(t, attemptOne.Message())
	tampered.C = flipCiphertext(tampered.C)
	_, err = attemptTwo.Normalize(tampered)
	require.ErrorIs(t, err, ErrCandidateGenerationEnc)
	assert.True(t, attemptTwo.witness.erased(), "the witness of a failed attempt is erased")
	_, err = attemptTwo.Normalize(attemptOne.Message())
	assert.ErrorIs(t, err, ErrRoundCompleted)

	// fresh attempts on both sides, with the same keys
	attemptOne, err = f.one.NewAttempt(f.keysOne)
	require.NoError(t, err)
	attemptTwo, err = f.two.NewAttempt(f.keysTwo)
	require.NoError(t, err)
	candidateOne, err := attemptOne.Normalize(attemptTwo.Message())
	require.NoError(t, err)
	candidateTwo, err := attemptTwo.Normalize(attemptOne.Message())
	require.NoError(t, err)

	divisionOne, err := candidateOne.Divide(3)
	require.NoError(t, err)
	divisionTwo, err := candidateTwo.Divide(3)
	require.NoError(t, err)
	decryptionOne, err := divisionOne.Combine(divisionTwo.Message())
	require.NoError(t, err)
	decryptionTwo, err := divisionTwo.Combine(divisionOne.Message())
	require.NoError(t, err)
	_, err = decryptionOne.Conclude(decryptionTwo.Message())
	assert.NoError(t, err)
	_, err = decryptionTwo.Conclude(decryptionOne.Message())
	assert.NoError(t, err)
}

func TestWitnessErase(t *testing.T) {
	f := newFixture(t)
	c := f.randomCandidate(t)

	c.witnessOne.Erase()
	c.witnessOne.Erase()
	_, err := f.one.PrepareReduction(3, f.keysOne, c.pairOne, c.witnessOne)
	assert.ErrorIs(t, err, ErrInvalidModProof)
	assert.ErrorIs(t, err, ErrAttemptDiscarded)

	var w *Witness
	w.Erase()
}
