package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"
	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/pkg/party"
)

var (
	// ErrNotFinished is returned by Result while the protocol is still running.
	ErrNotFinished = errors.New("protocol: not finished")
	// ErrStopped is the reason given when the user stops the execution.
	ErrStopped = errors.New("protocol: aborted by user")
	// ErrCounterpartyAborted is returned when the counterparty notified us that it aborted.
	ErrCounterpartyAborted = errors.New("protocol: aborted by other party")
)

// TwoPartyHandler executes a two-party protocol.
// Both parties may send a message in every round, and the handler advances as soon as
// the counterparty's message for the current round has arrived.
type TwoPartyHandler struct {
	round    round.Session
	err      error
	result   interface{}
	done     bool
	messages map[round.Number]*Message
	out      chan *Message
	log      zerolog.Logger
	mtx      sync.Mutex
}

var _ Handler = (*TwoPartyHandler)(nil)

// NewTwoPartyHandler creates the first round of the protocol and finalizes it,
// so that the first message is available on Listen().
func NewTwoPartyHandler(create StartFunc, sessionID []byte, log zerolog.Logger) (*TwoPartyHandler, error) {
	r, err := create(sessionID)
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create round: %w", err)
	}
	h := &TwoPartyHandler{
		round:    r,
		messages: map[round.Number]*Message{},
		// one message per round at most, plus an abort notice
		out: make(chan *Message, int(r.FinalRoundNumber())+1),
		log: log.With().
			Str("protocol", r.ProtocolID()).
			Str("party", string(r.SelfID())).
			Logger(),
	}
	h.log.Info().Msg("start")

	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.advance()
	return h, nil
}

// Result returns the protocol result if the protocol completed successfully. Otherwise an error is returned.
func (h *TwoPartyHandler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, ErrNotFinished
}

// Listen returns a channel with outgoing messages that must be sent to the counterparty.
// The channel is closed when either the protocol finishes or an error occurs.
func (h *TwoPartyHandler) Listen() <-chan *Message {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.out
}

// Stop aborts the execution, and notifies the counterparty.
func (h *TwoPartyHandler) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.done {
		return
	}
	h.abort(Error{RoundNumber: h.round.Number(), Err: ErrStopped}, true)
}

func (h *TwoPartyHandler) String() string {
	return fmt.Sprintf("party: %s, protocol: %s", h.round.SelfID(), h.round.ProtocolID())
}

// abort records err and closes the out channel.
// If notify is set, a message for round 0 carrying the reason is sent to the counterparty.
func (h *TwoPartyHandler) abort(err error, notify bool) {
	h.err = err
	h.log.Warn().Err(err).Msg("abort")
	if notify {
		h.out <- &Message{
			SSID:     h.round.SSID(),
			From:     h.round.SelfID(),
			To:       h.round.OtherPartyID(),
			Protocol: h.round.ProtocolID(),
			Data:     []byte(err.Error()),
		}
	}
	h.finish()
}

func (h *TwoPartyHandler) finish() {
	if h.done {
		return
	}
	h.done = true
	close(h.out)
}

func (h *TwoPartyHandler) canAdvance() bool {
	if h.round.MessageContent() == nil {
		return true
	}
	return h.messages[h.round.Number()] != nil
}

func extractRoundMessage(r round.Session, msg *Message) (round.Message, error) {
	content := r.MessageContent()
	if err := cbor.Unmarshal(msg.Data, content); err != nil {
		return round.Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	roundMsg := round.Message{
		From:      msg.From,
		To:        msg.To,
		Content:   content,
		Broadcast: msg.Broadcast(),
	}
	return roundMsg, nil
}

func (h *TwoPartyHandler) verifyMessage(msg *Message) error {
	r := h.round
	roundMsg, err := extractRoundMessage(r, msg)
	if err == nil {
		err = r.VerifyMessage(roundMsg)
	}
	if err == nil {
		err = r.StoreMessage(roundMsg)
	}
	if err != nil {
		return Error{RoundNumber: r.Number(), Culprit: msg.From, Err: err}
	}
	return nil
}

func (h *TwoPartyHandler) advance() {
	for !h.done && h.canAdvance() {
		number := h.round.Number()
		if msg := h.messages[number]; msg != nil {
			delete(h.messages, number)
			if err := h.verifyMessage(msg); err != nil {
				h.abort(err, true)
				return
			}
		}

		out := make(chan *round.Message, 2)
		newRound, err := h.round.Finalize(out)
		close(out)
		if err != nil || newRound == nil {
			if err == nil {
				err = errors.New("no next round")
			}
			h.abort(Error{RoundNumber: number, Err: err}, true)
			return
		}

		for roundMsg := range out {
			data, err := cbor.Marshal(roundMsg.Content)
			if err != nil {
				h.abort(Error{RoundNumber: number, Err: fmt.Errorf("failed to marshal round message: %w", err)}, true)
				return
			}
			h.out <- &Message{
				SSID:        newRound.SSID(),
				From:        newRound.SelfID(),
				To:          roundMsg.To,
				Protocol:    newRound.ProtocolID(),
				RoundNumber: roundMsg.Content.RoundNumber(),
				Data:        data,
			}
		}
		h.round = newRound

		switch R := newRound.(type) {
		// An abort happened
		case *round.Abort:
			var culprit party.ID
			if len(R.Culprits) > 0 {
				culprit = R.Culprits[0]
			}
			h.abort(Error{RoundNumber: number, Culprit: culprit, Err: R.Err}, true)
			return
		// We have the result
		case *round.Output:
			h.result = R.Result
			h.log.Info().Msg("done")
			h.finish()
			return
		default:
			h.log.Debug().Uint16("round", uint16(newRound.Number())).Msg("advanced")
		}
	}
}

// CanAccept checks the header of msg against the current execution.
func (h *TwoPartyHandler) CanAccept(msg *Message) bool {
	r := h.round
	if msg == nil {
		return false
	}
	if !msg.IsFor(r.SelfID()) {
		return false
	}
	if msg.Protocol != r.ProtocolID() {
		return false
	}
	if !bytes.Equal(msg.SSID, r.SSID()) {
		return false
	}
	if msg.From != r.OtherPartyID() {
		return false
	}
	if msg.Data == nil {
		return false
	}
	if msg.RoundNumber > r.FinalRoundNumber() {
		return false
	}
	return true
}

// Accept stores msg, and advances the protocol as far as possible.
// Messages that cannot be accepted, or that duplicate an earlier one, are ignored.
func (h *TwoPartyHandler) Accept(msg *Message) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.done || !h.CanAccept(msg) {
		return
	}

	if msg.RoundNumber == 0 {
		h.abort(Error{
			RoundNumber: h.round.Number(),
			Err:         fmt.Errorf("%w: %q", ErrCounterpartyAborted, msg.Data),
		}, false)
		return
	}

	if msg.RoundNumber < h.round.Number() || h.messages[msg.RoundNumber] != nil {
		return
	}
	h.messages[msg.RoundNumber] = msg

	h.advance()
}
