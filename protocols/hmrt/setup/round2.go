package setup

import (
	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

var _ round.Round = (*round2)(nil)

type round2 struct {
	*round1
	setup        *hmrt.KeySetup
	counterparty *hmrt.KeySetupMessage
}

type message2 struct {
	Keys *hmrt.KeySetupMessage
}

// VerifyMessage implements round.Round.
func (round2) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message2)
	if !ok || body == nil || body.Keys == nil {
		return round.ErrInvalidContent
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round2) StoreMessage(msg round.Message) error {
	r.counterparty = msg.Content.(*message2).Keys
	return nil
}

// Finalize implements round.Round
//
// - verify the counterparty's keys and proofs, and output the joint key.
func (r *round2) Finalize(chan<- *round.Message) (round.Session, error) {
	keys, err := r.setup.Finalize(r.counterparty)
	if err != nil {
		return r.AbortRound(err, r.OtherPartyID()), nil
	}
	return r.ResultRound(keys), nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return &message2{} }

// RoundNumber implements round.Content.
func (message2) RoundNumber() round.Number { return 2 }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
