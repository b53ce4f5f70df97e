package sieve

import (
	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

var _ round.Round = (*round1)(nil)

type round1 struct {
	*round.Helper
	party    *hmrt.Party
	keys     *hmrt.Keys
	divisors divisorList
}

// VerifyMessage implements round.Round.
func (round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - sample a share of the candidate, and send its encryption.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	attempt, err := r.party.NewAttempt(r.keys)
	if err != nil {
		return r, err
	}
	if err = r.SendMessage(out, &message2{Share: attempt.Message()}); err != nil {
		return r, err
	}
	return &round2{
		round1:  r,
		attempt: attempt,
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
