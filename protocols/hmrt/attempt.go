package hmrt

import (
	"github.com/google/uuid"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
)

// The types below chain the engine steps into a state machine:
//
//	KeySetup → Attempt → Candidate → Division → Decryption
//
// Each state is advanced at most once, a second call returns ErrRoundCompleted.
// A Candidate is the exception: it starts one Division per trial divisor,
// and Divide may be called concurrently as long as Discard is not.
// The other states are not safe for concurrent use.

// KeySetup is the first state, holding freshly generated local keys.
type KeySetup struct {
	party   *Party
	message *KeySetupMessage
	private *PrivateMaterial
	done    bool
}

// StartKeySetup generates the local keys of p.
func (p *Party) StartKeySetup() (*KeySetup, error) {
	msg, private, err := p.GenerateLocalKeys()
	if err != nil {
		return nil, err
	}
	return &KeySetup{party: p, message: msg, private: private}, nil
}

// Message is sent to the counterparty.
func (s *KeySetup) Message() *KeySetupMessage { return s.message }

// Finalize verifies the counterparty's message. The returned Keys can be used for any number of attempts.
func (s *KeySetup) Finalize(counterparty *KeySetupMessage) (*Keys, error) {
	if s.done {
		return nil, ErrRoundCompleted
	}
	s.done = true
	return s.party.FinalizeKeys(counterparty, s.message, s.private)
}

// Attempt is a candidate attempt whose share has been sent, but not yet combined.
type Attempt struct {
	// ID identifies the attempt in logs.
	ID      uuid.UUID
	party   *Party
	keys    *Keys
	witness *Witness
	message *CandidateMessage
	done    bool
}

// NewAttempt samples and encrypts a fresh share of a candidate.
// Attempts are independent of each other, and a failed attempt leaves nothing behind.
func (p *Party) NewAttempt(keys *Keys) (*Attempt, error) {
	id := uuid.New()
	party := *p
	party.Log = p.Log.With().Str("attempt", id.String()).Logger()

	witness, msg, err := party.GenerateShare(keys)
	if err != nil {
		return nil, err
	}
	party.Log.Debug().Stringer("role", p.Role).Msg("candidate share generated")
	return &Attempt{
		ID:      id,
		party:   &party,
		keys:    keys,
		witness: witness,
		message: msg,
	}, nil
}

// Message is sent to the counterparty.
func (a *Attempt) Message() *CandidateMessage { return a.message }

// Normalize verifies the counterparty's share, and returns the resulting Candidate.
// The witness is erased on failure.
func (a *Attempt) Normalize(counterparty *CandidateMessage) (*Candidate, error) {
	if a.done {
		return nil, ErrRoundCompleted
	}
	a.done = true
	pair, err := a.party.NormalizeCiphertexts(a.keys, counterparty, a.message)
	if err != nil {
		a.witness.Erase()
		return nil, err
	}
	return &Candidate{
		ID:      a.ID,
		party:   a.party,
		keys:    a.keys,
		witness: a.witness,
		pair:    pair,
	}, nil
}

// Candidate is a jointly encrypted candidate, ready for trial division.
type Candidate struct {
	ID      uuid.UUID
	party   *Party
	keys    *Keys
	witness *Witness
	pair    *CiphertextPair
}

// Pair returns the ciphertext pair of the candidate.
func (c *Candidate) Pair() *CiphertextPair { return c.pair }

// Discard erases the witness. Divisions already started can still be concluded.
func (c *Candidate) Discard() {
	c.witness.Erase()
}

// Divide starts trial division by alpha.
func (c *Candidate) Divide(alpha uint64) (*Division, error) {
	if c.witness.erased() {
		return nil, ErrAttemptDiscarded
	}
	msg, err := c.party.PrepareReduction(alpha, c.keys, c.pair, c.witness)
	if err != nil {
		return nil, err
	}
	return &Division{candidate: c, alpha: alpha, message: msg}, nil
}

// Division is a trial division whose reduction has been sent.
type Division struct {
	candidate *Candidate
	alpha     uint64
	message   *ReductionMessage
	done      bool
}

// Divisor returns α.
func (d *Division) Divisor() uint64 { return d.alpha }

// Message is sent to the counterparty.
func (d *Division) Message() *ReductionMessage { return d.message }

// Combine verifies the counterparty's reduction, and produces this party's decryption shares.
func (d *Division) Combine(counterparty *ReductionMessage) (*Decryption, error) {
	if d.done {
		return nil, ErrRoundCompleted
	}
	d.done = true
	c := d.candidate
	msg, cAlpha, cAlphaTilde, err := c.party.CombineAndPartialDecrypt(counterparty, d.message, d.alpha, c.keys, c.pair)
	if err != nil {
		return nil, err
	}
	return &Decryption{
		division:    d,
		message:     msg,
		cAlpha:      cAlpha,
		cAlphaTilde: cAlphaTilde,
	}, nil
}

// Decryption is the last state of a trial division.
type Decryption struct {
	division    *Division
	message     *DecryptionMessage
	cAlpha      *elgamal.Ciphertext
	cAlphaTilde *elgamal.Ciphertext
	done        bool
}

// Message is sent to the counterparty.
func (d *Decryption) Message() *DecryptionMessage { return d.message }

// Conclude verifies the counterparty's decryption shares.
// It returns true if the candidate survives the trial division.
func (d *Decryption) Conclude(counterparty *DecryptionMessage) (bool, error) {
	if d.done {
		return false, ErrRoundCompleted
	}
	d.done = true
	c := d.division.candidate
	survived, err := c.party.ConcludeDivision(d.cAlpha, d.cAlphaTilde, counterparty, c.keys)
	if err != nil {
		return false, err
	}
	c.party.Log.Debug().
		Stringer("role", c.party.Role).
		Uint64("divisor", d.division.alpha).
		Bool("survived", survived).
		Msg("trial division concluded")
	return survived, nil
}
