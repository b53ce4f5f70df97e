package setup

import (
	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

var _ round.Round = (*round1)(nil)

type round1 struct {
	*round.Helper
	party *hmrt.Party
}

// VerifyMessage implements round.Round.
func (round1) VerifyMessage(round.Message) error { return nil }

// StoreMessage implements round.Round.
func (round1) StoreMessage(round.Message) error { return nil }

// Finalize implements round.Round
//
// - generate Paillier and ElGamal keys, with their proofs.
func (r *round1) Finalize(out chan<- *round.Message) (round.Session, error) {
	setup, err := r.party.StartKeySetup()
	if err != nil {
		return r, err
	}
	if err = r.BroadcastMessage(out, &message2{Keys: setup.Message()}); err != nil {
		return r, err
	}
	return &round2{
		round1: r,
		setup:  setup,
	}, nil
}

// MessageContent implements round.Round.
func (round1) MessageContent() round.Content { return nil }

// Number implements round.Round.
func (round1) Number() round.Number { return 1 }
