// Package setup runs the key setup of the two-party RSA protocol as a round-based session.
//
// Both parties send their public keys and proofs in the first round, and output
// their *hmrt.Keys after verifying the counterparty's message.
package setup

import (
	"fmt"

	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/pkg/party"
	"github.com/taurusgroup/two-party-rsa/pkg/protocol"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

const (
	// ProtocolID identifies key setup sessions.
	ProtocolID = "hmrt/setup"
	// rounds is the number of rounds of the protocol.
	rounds round.Number = 2
)

// Start returns a protocol.StartFunc running key setup for p, where selfID and otherID
// identify both parties on the network.
// The SSID of the session is used as hmrt session id, so that proofs cannot be replayed across sessions.
func Start(p *hmrt.Party, selfID, otherID party.ID) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if p == nil {
			return nil, fmt.Errorf("setup: nil party")
		}
		info := round.Info{
			ProtocolID:       ProtocolID,
			FinalRoundNumber: rounds,
			SelfID:           selfID,
			PartyIDs:         []party.ID{selfID, otherID},
		}
		helper, err := round.NewSession(info, sessionID, p.Group)
		if err != nil {
			return nil, fmt.Errorf("setup: %w", err)
		}
		local := *p
		local.SessionID = helper.SSID()
		local.Log = p.Log.With().Hex("ssid", helper.SSID()).Logger()
		return &round1{
			Helper: helper,
			party:  &local,
		}, nil
	}
}
