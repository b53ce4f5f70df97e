package round

import (
	"github.com/taurusgroup/two-party-rsa/pkg/party"
)

type Info struct {
	// ProtocolID is an identifier for this protocol
	ProtocolID string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber Number
	// SelfID is this party's ID.
	SelfID party.ID
	// PartyIDs contains SelfID and the ID of the counterparty.
	PartyIDs []party.ID
}

// Session represents the current execution of a round-based two-party protocol.
// It embeds the current round, and provides additional information about the execution.
type Session interface {
	// Round is the current round being executed.
	Round
	// ProtocolID is an identifier for this protocol.
	ProtocolID() string
	// FinalRoundNumber is the number of rounds before the output round.
	FinalRoundNumber() Number
	// SSID the unique identifier for this protocol execution.
	SSID() []byte
	// SelfID is this party's ID.
	SelfID() party.ID
	// PartyIDs is a sorted slice of both participants.
	PartyIDs() party.IDSlice
	// OtherPartyID returns the ID of the counterparty.
	OtherPartyID() party.ID
}
