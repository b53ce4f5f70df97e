package hmrt

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/hash"
	"github.com/taurusgroup/two-party-rsa/pkg/paillier"
	"github.com/taurusgroup/two-party-rsa/pkg/pool"
)

// ProtocolID identifies the protocol in every proof transcript.
const ProtocolID = "two-party-rsa/hmrt"

// Party runs the local computations of one role.
//
// A Party holds no per-attempt state, and its methods may be called concurrently,
// for instance once per trial divisor.
type Party struct {
	Role   Role
	Config *Config
	// Group is the ElGamal group selected by Config.
	Group *elgamal.Group
	// Pool parallelizes prime generation and proofs. It may be nil.
	Pool   *pool.Pool
	Proofs Capabilities
	// Log receives verification failures. It is disabled by default.
	Log zerolog.Logger
	// Paillier is an optional precomputed Paillier key, used by key setup instead of a fresh one.
	Paillier *paillier.SecretKey
	// SessionID is written to every transcript when set.
	// Both parties must use the same value.
	SessionID []byte
}

// NewParty validates config and returns a Party for the given role, using the default proof systems.
func NewParty(role Role, config *Config, pl *pool.Pool) (*Party, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("hmrt: invalid role %d", role)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	group, err := config.ElGamalGroup()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Party{
		Role:   role,
		Config: config,
		Group:  group,
		Pool:   pl,
		Proofs: DefaultCapabilities(pl),
		Log:    zerolog.Nop(),
	}, nil
}

// transcript returns the hash state for a proof created by prover at the given step.
func (p *Party) transcript(prover Role, step string, data ...interface{}) *hash.Hash {
	h := hash.New()
	_ = h.WriteAny(ProtocolID)
	if p.SessionID != nil {
		_ = h.WriteAny(p.SessionID)
	}
	_ = h.WriteAny(p.Group, prover, step)
	if len(data) > 0 {
		_ = h.WriteAny(data...)
	}
	return h
}

// verificationFailed logs err, and returns it.
func (p *Party) verificationFailed(step string, err error) error {
	p.Log.Warn().
		Stringer("role", p.Role).
		Str("step", step).
		Err(err).
		Msg("counterparty message rejected")
	return err
}
