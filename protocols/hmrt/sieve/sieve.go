// Package sieve runs one candidate attempt of the two-party RSA protocol as a round-based session.
//
// The parties exchange encrypted shares of a candidate, then run trial division
// by every divisor of the list in a single pass:
//
//	round 1: encrypted shares
//	round 2: reductions modulo each divisor
//	round 3: rerandomized partial decryptions
//	round 4: conclusion
//
// A candidate rejected by a divisor is a successful execution whose Result has Survived == false.
package sieve

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/taurusgroup/two-party-rsa/internal/round"
	"github.com/taurusgroup/two-party-rsa/pkg/party"
	"github.com/taurusgroup/two-party-rsa/pkg/protocol"
	"github.com/taurusgroup/two-party-rsa/protocols/hmrt"
)

const (
	// ProtocolID identifies sieve sessions.
	ProtocolID = "hmrt/sieve"
	// rounds is the number of rounds of the protocol.
	rounds round.Number = 4
)

// Result is the output of a sieve session.
type Result struct {
	// Attempt identifies the candidate attempt in the logs of both parties.
	Attempt uuid.UUID
	// Survived is true if no divisor of the list divides the candidate.
	Survived bool
	// Divisor is the first divisor of the list which rejected the candidate, or 0.
	Divisor uint64
	// Pair is the encrypted candidate.
	Pair *hmrt.CiphertextPair
}

// Start returns a protocol.StartFunc running a single candidate attempt for p,
// with keys obtained from a setup session.
// If divisors is nil, the trial divisors of the configuration are used.
// Both parties must use the same list.
func Start(p *hmrt.Party, keys *hmrt.Keys, divisors []uint64, selfID, otherID party.ID) protocol.StartFunc {
	return func(sessionID []byte) (round.Session, error) {
		if p == nil || keys == nil {
			return nil, errors.New("sieve: missing party or keys")
		}
		if keys.Role != p.Role {
			return nil, fmt.Errorf("sieve: keys belong to %s, not %s", keys.Role, p.Role)
		}
		if divisors == nil {
			divisors = p.Config.TrialDivisors()
		}
		list := append(divisorList(nil), divisors...)

		info := round.Info{
			ProtocolID:       ProtocolID,
			FinalRoundNumber: rounds,
			SelfID:           selfID,
			PartyIDs:         []party.ID{selfID, otherID},
		}
		helper, err := round.NewSession(info, sessionID, p.Group, keys.Joint, list)
		if err != nil {
			return nil, fmt.Errorf("sieve: %w", err)
		}
		local := *p
		local.SessionID = helper.SSID()
		local.Log = p.Log.With().Hex("ssid", helper.SSID()).Logger()
		return &round1{
			Helper:   helper,
			party:    &local,
			keys:     keys,
			divisors: list,
		}, nil
	}
}

// divisorList is written to the SSID, so that both parties agree on the divisors.
type divisorList []uint64

// WriteTo implements io.WriterTo.
func (l divisorList) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 8*(len(l)+1))
	binary.BigEndian.PutUint64(buf, uint64(len(l)))
	for i, d := range l {
		binary.BigEndian.PutUint64(buf[8*(i+1):], d)
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (divisorList) Domain() string {
	return "Trial Divisors"
}

// firstRejected returns the index of the first false entry, or -1.
func firstRejected(survived []bool) int {
	for i, ok := range survived {
		if !ok {
			return i
		}
	}
	return -1
}
