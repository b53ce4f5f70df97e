package round

type Round interface {
	// VerifyMessage handles an incoming Message from the counterparty and checks that its content is well-formed.
	// The content argument can be cast to the appropriate type for this round without error check.
	// In the first round, this function returns nil.
	// This function should not modify any saved state.
	VerifyMessage(msg Message) error

	// StoreMessage should be called after VerifyMessage and should only store the appropriate fields from the
	// content.
	StoreMessage(msg Message) error

	// Finalize is called after the counterparty's message for the current round has been processed.
	// Messages for the next round are sent out through the out channel.
	// If a local error occurs (like a failure to sample or send a message), the current round is
	// returned along with the error.
	// When the counterparty misbehaved, an Abort round is returned with a nil error.
	//
	// In the last round, Finalize should return
	//   helper.ResultRound(result), nil
	// where result is the output of the protocol.
	Finalize(out chan<- *Message) (Session, error)

	// MessageContent returns an uninitialized message.Content for this round.
	//
	// The first round of a protocol should return nil.
	MessageContent() Content

	Number() Number
}
