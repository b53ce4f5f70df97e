package round

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/party"
)

var (
	// ErrOutChanFull is returned when a message cannot be queued on the out channel.
	ErrOutChanFull = errors.New("round: out channel full")
	// ErrInvalidContent is returned by VerifyMessage when fields of the content are missing.
	ErrInvalidContent = errors.New("round: content is missing fields")
)

// Helper implements Session without Round, and can therefore be embedded in the first round of a protocol
// in order to satisfy the Session interface.
type Helper struct {
	info Info

	// partyIDs is a sorted slice of Info.PartyIDs.
	partyIDs party.IDSlice
	otherID  party.ID

	// ssid the unique identifier for this protocol execution
	ssid []byte
}

// NewSession creates a new *Helper which can be embedded in the first Round,
// so that the full struct implements Session.
// `sessionID` is an optional byte slice that can be provided by the user.
// When used, it should be unique for each execution of the protocol.
// It could be a simple counter which is incremented after execution, or a common random string.
// `auxInfo` is a variable list of objects which should be included in the SSID.
func NewSession(info Info, sessionID []byte, auxInfo ...hash.WriterToWithDomain) (*Helper, error) {
	partyIDs := party.NewIDSlice(info.PartyIDs)
	if len(partyIDs) != 2 || !partyIDs.Valid() {
		return nil, errors.New("session: partyIDs must contain two distinct IDs")
	}
	if !partyIDs.Contains(info.SelfID) {
		return nil, errors.New("session: selfID not included in partyIDs")
	}
	if info.FinalRoundNumber == 0 {
		return nil, errors.New("session: protocol has no rounds")
	}

	var err error
	h := hash.New()

	if sessionID != nil {
		if err = h.WriteAny(&hash.BytesWithDomain{
			TheDomain: "Session ID",
			Bytes:     sessionID,
		}); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	if err = h.WriteAny(&hash.BytesWithDomain{
		TheDomain: "Protocol ID",
		Bytes:     []byte(info.ProtocolID),
	}); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	if err = h.WriteAny(partyIDs); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	for _, a := range auxInfo {
		if a == nil {
			continue
		}
		if err = h.WriteAny(a); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	return &Helper{
		info:     info,
		partyIDs: partyIDs,
		otherID:  partyIDs.Remove(info.SelfID)[0],
		ssid:     h.Sum(),
	}, nil
}

// BroadcastMessage constructs a Message from the broadcast Content, and sets the header correctly.
// An error is returned if the message cannot be sent to the out channel.
func (h *Helper) BroadcastMessage(out chan<- *Message, broadcastContent Content) error {
	msg := &Message{
		From:      h.info.SelfID,
		Broadcast: true,
		Content:   broadcastContent,
	}
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// SendMessage is a convenience method for safely sending content to the counterparty.
// Returns an error if the message failed to send over out channel.
func (h *Helper) SendMessage(out chan<- *Message, content Content) error {
	msg := &Message{
		From:    h.info.SelfID,
		To:      h.otherID,
		Content: content,
	}
	select {
	case out <- msg:
		return nil
	default:
		return ErrOutChanFull
	}
}

// ResultRound returns a round that contains only the result of the protocol.
// This indicates to the user that the protocol is finished.
func (h *Helper) ResultRound(result interface{}) Session {
	return &Output{
		Helper: h,
		Result: result,
	}
}

// AbortRound returns a round that contains only the culprits that were able to be identified during
// a faulty execution of the protocol. The error returned by Round.Finalize() in this case should still be nil.
func (h *Helper) AbortRound(err error, culprits ...party.ID) Session {
	return &Abort{
		Helper:   h,
		Culprits: culprits,
		Err:      err,
	}
}

// ProtocolID is an identifier for this protocol.
func (h *Helper) ProtocolID() string { return h.info.ProtocolID }

// FinalRoundNumber is the number of rounds before the output round.
func (h *Helper) FinalRoundNumber() Number { return h.info.FinalRoundNumber }

// SSID the unique identifier for this protocol execution.
func (h *Helper) SSID() []byte { return h.ssid }

// SelfID is this party's ID.
func (h *Helper) SelfID() party.ID { return h.info.SelfID }

// PartyIDs is a sorted slice of both participants.
func (h *Helper) PartyIDs() party.IDSlice { return h.partyIDs }

// OtherPartyID returns the ID of the counterparty.
func (h *Helper) OtherPartyID() party.ID { return h.otherID }
