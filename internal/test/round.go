package test

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/pkg/party"
	"golang.org/x/sync/errgroup"
)

// Rule describes a hook that can be applied to a protocol execution.
type Rule interface {
	// ModifyContent modifies content sent by from, after it was decoded by the recipient.
	ModifyContent(from party.ID, content round.Content)
}

// Rounds finalizes every session, and delivers the resulting messages to the counterparty.
// It returns true as soon as one of the sessions is an Output or Abort round,
// in which case no messages are delivered.
func Rounds(rounds []round.Session, rule Rule) (bool, error) {
	var (
		errGroup errgroup.Group
		N        = len(rounds)
		outs     = make([]chan *round.Message, N)
	)

	for id := range rounds {
		idx := id
		outs[idx] = make(chan *round.Message, N)
		errGroup.Go(func() error {
			rNew, err := rounds[idx].Finalize(outs[idx])
			close(outs[idx])
			if err != nil {
				return err
			}
			if rNew != nil {
				rounds[idx] = rNew
			}
			return nil
		})
	}
	if err := errGroup.Wait(); err != nil {
		return false, err
	}

	for _, r := range rounds {
		if terminal(r) {
			return true, nil
		}
	}

	for _, out := range outs {
		for msg := range out {
			msgBytes, err := cbor.Marshal(msg.Content)
			if err != nil {
				return false, err
			}
			for _, r := range rounds {
				if msg.From == r.SelfID() || (msg.To != "" && msg.To != r.SelfID()) {
					continue
				}
				if msg.Content.RoundNumber() != r.Number() {
					return false, fmt.Errorf("message for round %d delivered in round %d", msg.Content.RoundNumber(), r.Number())
				}
				m := *msg
				m.Content = r.MessageContent()
				if err = cbor.Unmarshal(msgBytes, m.Content); err != nil {
					return false, err
				}
				if rule != nil {
					rule.ModifyContent(m.From, m.Content)
				}
				if err = r.VerifyMessage(m); err != nil {
					return false, err
				}
				if err = r.StoreMessage(m); err != nil {
					return false, err
				}
			}
		}
	}
	return false, nil
}

func terminal(r round.Session) bool {
	switch r.(type) {
	case *round.Output, *round.Abort:
		return true
	default:
		return false
	}
}
