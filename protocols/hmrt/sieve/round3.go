package sieve

import (
	"fmt"

	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

var _ round.Round = (*round3)(nil)

type round3 struct {
	*round2
	candidate  *hmrt.Candidate
	divisions  []*hmrt.Division
	reductions []*hmrt.ReductionMessage
}

type message3 struct {
	// Reductions contains one reduction per divisor, in list order.
	Reductions []*hmrt.ReductionMessage
}

// VerifyMessage implements round.Round.
func (r *round3) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message3)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if len(body.Reductions) != len(r.divisors) {
		return fmt.Errorf("got %d reductions for %d divisors", len(body.Reductions), len(r.divisors))
	}
	for _, reduction := range body.Reductions {
		if reduction == nil {
			return round.ErrInvalidContent
		}
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round3) StoreMessage(msg round.Message) error {
	r.reductions = msg.Content.(*message3).Reductions
	return nil
}

// Finalize implements round.Round
//
// - verify the counterparty's reductions.
// - rerandomize and partially decrypt both channels of every divisor.
func (r *round3) Finalize(out chan<- *round.Message) (round.Session, error) {
	results := r.party.Pool.Parallelize(len(r.divisions), func(i int) interface{} {
		decryption, err := r.divisions[i].Combine(r.reductions[i])
		if err != nil {
			return err
		}
		return decryption
	})

	decryptions := make([]*hmrt.Decryption, len(r.divisions))
	shares := make([]*hmrt.DecryptionMessage, len(r.divisions))
	for i, result := range results {
		switch v := result.(type) {
		case error:
			return r.AbortRound(fmt.Errorf("divisor %d: %w", r.divisors[i], v), r.OtherPartyID()), nil
		case *hmrt.Decryption:
			decryptions[i] = v
			shares[i] = v.Message()
		}
	}

	if err := r.SendMessage(out, &message4{Decryptions: shares}); err != nil {
		return r, err
	}
	return &round4{
		round3:      r,
		decryptions: decryptions,
	}, nil
}

// MessageContent implements round.Round.
func (round3) MessageContent() round.Content { return &message3{} }

// RoundNumber implements round.Content.
func (message3) RoundNumber() round.Number { return 3 }

// Number implements round.Round.
func (round3) Number() round.Number { return 3 }
