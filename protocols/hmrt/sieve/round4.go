package sieve

import (
	"fmt"

	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

var _ round.Round = (*round4)(nil)

type round4 struct {
	*round3
	decryptions []*hmrt.Decryption
	shares      []*hmrt.DecryptionMessage
}

type message4 struct {
	// Decryptions contains one pair of decryption shares per divisor, in list order.
	Decryptions []*hmrt.DecryptionMessage
}

// VerifyMessage implements round.Round.
func (r *round4) VerifyMessage(msg round.Message) error {
	body, ok := msg.Content.(*message4)
	if !ok || body == nil {
		return round.ErrInvalidContent
	}
	if len(body.Decryptions) != len(r.divisors) {
		return fmt.Errorf("got %d decryptions for %d divisors", len(body.Decryptions), len(r.divisors))
	}
	for _, decryption := range body.Decryptions {
		if decryption == nil {
			return round.ErrInvalidContent
		}
	}
	return nil
}

// StoreMessage implements round.Round.
func (r *round4) StoreMessage(msg round.Message) error {
	r.shares = msg.Content.(*message4).Decryptions
	return nil
}

// Finalize implements round.Round
//
// - complete the decryption of every divisor's channels, and output the first rejection.
func (r *round4) Finalize(chan<- *round.Message) (round.Session, error) {
	results := r.party.Pool.Parallelize(len(r.decryptions), func(i int) interface{} {
		survived, err := r.decryptions[i].Conclude(r.shares[i])
		if err != nil {
			return err
		}
		return survived
	})

	survived := make([]bool, len(r.decryptions))
	for i, result := range results {
		switch v := result.(type) {
		case error:
			return r.AbortRound(fmt.Errorf("divisor %d: %w", r.divisors[i], v), r.OtherPartyID()), nil
		case bool:
			survived[i] = v
		}
	}

	result := &Result{
		Attempt:  r.candidate.ID,
		Survived: true,
		Pair:     r.candidate.Pair(),
	}
	if i := firstRejected(survived); i >= 0 {
		result.Survived = false
		result.Divisor = r.divisors[i]
	}
	r.party.Log.Info().
		Str("attempt", result.Attempt.String()).
		Bool("survived", result.Survived).
		Uint64("divisor", result.Divisor).
		Msg("sieve concluded")
	return r.ResultRound(result), nil
}

// MessageContent implements round.Round.
func (round4) MessageContent() round.Content { return &message4{} }

// RoundNumber implements round.Content.
func (message4) RoundNumber() round.Number { return 4 }

// Number implements round.Round.
func (round4) Number() round.Number { return 4 }
