package hmrt

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by an engine step wraps exactly one of them,
// and can be matched with errors.Is.
var (
	// ErrInvalidElGamalKey is returned when the counterparty's ElGamal key or its discrete-log proof is invalid.
	ErrInvalidElGamalKey = errors.New("hmrt: invalid ElGamal key")
	// ErrInvalidPaillierKey is returned when the counterparty's Paillier key or its correct-key proof is invalid.
	ErrInvalidPaillierKey = errors.New("hmrt: invalid Paillier key")
	// ErrCandidateGenerationEnc is returned when the counterparty's encrypted share or its proofs are invalid.
	ErrCandidateGenerationEnc = errors.New("hmrt: candidate generation encryption error")
	// ErrInvalidModProof is returned when a modular reduction proof cannot be produced or does not verify.
	ErrInvalidModProof = errors.New("hmrt: invalid modular reduction proof")
	// ErrCandidateGenerationDec is returned when a rerandomization or partial decryption of the counterparty is invalid.
	ErrCandidateGenerationDec = errors.New("hmrt: candidate generation decryption error")

	// ErrRoundCompleted is returned when a state of an attempt is advanced more than once.
	ErrRoundCompleted = errors.New("hmrt: round already completed")
	// ErrAttemptDiscarded is returned when a discarded candidate is used.
	ErrAttemptDiscarded = errors.New("hmrt: candidate attempt was discarded")
	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("hmrt: invalid configuration")
)

func wrap(kind error, format string, a ...interface{}) error {
	return fmt.Errorf("%w: %w", kind, fmt.Errorf(format, a...))
}
