package protocol

import (
	"github.com/taurusgroup/two-party-rsa/internal/round"
)

// StartFunc is function that creates the first round of a protocol.
// The sessionID is optional, and is mixed into the SSID of the execution.
// If the creation fails (likely due to misconfiguration), and error is returned.
type StartFunc func(sessionID []byte) (round.Session, error)

// Handler represents an execution of a given protocol.
// It provides a simple interface for the user to receive/deliver protocol messages.
type Handler interface {
	// Result returns the protocol result if the protocol completed successfully. Otherwise an error is returned.
	Result() (interface{}, error)
	// Listen returns a channel with outgoing messages that must be sent to the counterparty.
	// The channel is closed when either the protocol finishes or an error occurs.
	Listen() <-chan *Message
	// Stop aborts the execution.
	Stop()
	// CanAccept checks whether the message is addressed to this execution.
	CanAccept(msg *Message) bool
	// Accept advances the execution with a message from the counterparty.
	Accept(msg *Message)
}
