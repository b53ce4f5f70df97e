package sieve

import (
	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

var _ round.Round = (*round2)(nil)

type round2 struct {
	*round1
	attempt *hmrt.Attempt
	share   *hmrt.CandidateMessage
}

type message2 struct {
	Share *hmrt.CandidateMessage
}

// VerifyMessage implements round.Round.
func (round2) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message2)
	if !ok || body == nil || body.Share == nil {
		return round.ErrInvalidContent
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round2) StoreMessage(msg round.Message) error {
	r.share = msg.Content.(*message2).Share
	return nil
}

// Finalize implements round.Round
//
// - verify the counterparty's share, and derive the ciphertext pair.
// - reduce our half of the candidate modulo every divisor.
// - erase the share, which is no longer needed.
func (r *round2) Finalize(out chan<- *round.Message) (round.Session, error) {
	candidate, err := r.attempt.Normalize(r.share)
	if err != nil {
		return r.AbortRound(err, r.OtherPartyID()), nil
	}
	defer candidate.Discard()

	results := r.party.Pool.Parallelize(len(r.divisors), func(i int) interface{} {
		division, err := candidate.Divide(r.divisors[i])
		if err != nil {
			return err
		}
		return division
	})

	divisions := make([]*hmrt.Division, len(r.divisors))
	reductions := make([]*hmrt.ReductionMessage, len(r.divisors))
	for i, result := range results {
		switch v := result.(type) {
		case error:
			return r, v
		case *hmrt.Division:
			divisions[i] = v
			reductions[i] = v.Message()
		}
	}

	if err = r.SendMessage(out, &message3{Reductions: reductions}); err != nil {
		return r, err
	}
	return &round3{
		round2:    r,
		candidate: candidate,
		divisions: divisions,
	}, nil
}

// MessageContent implements round.Round.
func (round2) MessageContent() round.Content { return &message2{} }

// RoundNumber implements round.Content.
func (message2) RoundNumber() round.Number { return 2 }

// Number implements round.Round.
func (round2) Number() round.Number { return 2 }
