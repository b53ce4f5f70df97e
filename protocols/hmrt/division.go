package hmrt

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	zkddh "github.com/taurusgroup/two-party-rsa/pkg/zk/ddh"
	zkreduce "github.com/taurusgroup/two-party-rsa/pkg/zk/reduce"
	"golang.org/x/sync/errgroup"
)

const (
	stepReduction   = "reduction"
	stepRerandomize = "rerandomize"
	stepPartial     = "partial decryption"
)

// channel labels
const (
	channelAlpha      = "alpha"
	channelAlphaTilde = "alpha tilde"
)

// ReductionMessage carries a party's share of the candidate reduced modulo a trial divisor.
type ReductionMessage struct {
	// CAlpha encrypts the plaintext of the party's half of the ciphertext pair, modulo α.
	CAlpha         *elgamal.Ciphertext
	ReductionProof *zkreduce.Proof
}

// DecryptionShare is a rerandomized ciphertext together with a partial decryption of it.
type DecryptionShare struct {
	// Randomized = cʳ for a secret r.
	Randomized     *elgamal.Ciphertext
	RandomizeProof *zkddh.Proof
	// Partial = Randomized.C1ˣ for the secret ElGamal key x of the sender.
	Partial      *saferith.Nat
	PartialProof *zkddh.Proof
}

// DecryptionMessage carries the decryption shares of both channels.
type DecryptionMessage struct {
	Alpha      *DecryptionShare
	AlphaTilde *DecryptionShare
}

func divisorNat(alpha uint64) *saferith.Nat {
	return new(saferith.Nat).SetUint64(alpha)
}

// checkDivisor ensures 2 ≤ α < 2ᴮᵒᵘⁿᵈᴮⁱᵗˢ.
func (p *Party) checkDivisor(alpha uint64) error {
	if alpha < 2 {
		return fmt.Errorf("trial divisor %d is too small", alpha)
	}
	if b := p.Config.BoundBits(); b < 64 && alpha >= uint64(1)<<b {
		return fmt.Errorf("trial divisor %d exceeds the bound 2^%d", alpha, b)
	}
	return nil
}

func (p *Party) reductionStatement(alpha uint64, keys *Keys, c, cAlpha *elgamal.Ciphertext) zkreduce.Public {
	return zkreduce.Public{
		Group:   p.Group,
		Key:     keys.Joint,
		C:       c,
		CPrime:  cAlpha,
		Modulus: divisorNat(alpha),
		Bound:   p.Config.Bound(),
	}
}

// PrepareReduction encrypts this party's half of the candidate modulo α, and proves the reduction.
//
// An error is only returned for invalid inputs, since honest inputs always satisfy the proof.
func (p *Party) PrepareReduction(alpha uint64, keys *Keys, pair *CiphertextPair, witness *Witness) (*ReductionMessage, error) {
	if keys == nil || pair == nil {
		return nil, errors.New("hmrt: missing candidate material")
	}
	if witness.erased() {
		return nil, wrap(ErrInvalidModProof, "%w", ErrAttemptDiscarded)
	}
	if err := p.checkDivisor(alpha); err != nil {
		return nil, wrap(ErrInvalidModProof, "%w", err)
	}

	a, nonceA := p.scaledWitness(witness)
	b := new(saferith.Nat).SetBig(new(big.Int).Mod(a.Big(), new(big.Int).SetUint64(alpha)), 64)
	nonceB := p.Group.RandomExponent(rand.Reader)
	cAlpha := p.Group.Encrypt(keys.Joint, b, nonceB)

	proof, err := p.Proofs.Reduction.Prove(p.transcript(p.Role, stepReduction, keys.Joint, divisorNat(alpha)),
		p.reductionStatement(alpha, keys, pair.Half(p.Role), cAlpha),
		zkreduce.Private{A: a, NonceA: nonceA, B: b, NonceB: nonceB})
	if err != nil {
		return nil, wrap(ErrInvalidModProof, "prove: %w", err)
	}
	return &ReductionMessage{CAlpha: cAlpha, ReductionProof: proof}, nil
}

// CombineAndPartialDecrypt verifies the counterparty's reduction, and computes
//   - cAlpha, an encryption of (N mod α) in the form r₁ + r₂ with rᵢ < α,
//   - cAlphaTilde = cAlpha - Enc(α; 0).
//
// It returns a rerandomization and a partial decryption of both, with their proofs.
// The two channels are computed concurrently.
func (p *Party) CombineAndPartialDecrypt(counterparty, own *ReductionMessage, alpha uint64, keys *Keys, pair *CiphertextPair) (msg *DecryptionMessage, cAlpha, cAlphaTilde *elgamal.Ciphertext, err error) {
	if keys == nil || pair == nil || own == nil || own.CAlpha == nil {
		return nil, nil, nil, errors.New("hmrt: missing local reduction material")
	}
	if err = p.checkDivisor(alpha); err != nil {
		return nil, nil, nil, wrap(ErrInvalidModProof, "%w", err)
	}
	if counterparty == nil {
		return nil, nil, nil, p.verificationFailed(stepReduction, wrap(ErrInvalidModProof, "nil message"))
	}
	if err = p.Group.ValidateCiphertexts(counterparty.CAlpha); err != nil {
		return nil, nil, nil, p.verificationFailed(stepReduction, wrap(ErrInvalidModProof, "%w", err))
	}
	other := p.Role.Counterparty()
	if err = p.Proofs.Reduction.Verify(p.transcript(other, stepReduction, keys.Joint, divisorNat(alpha)),
		p.reductionStatement(alpha, keys, pair.Half(other), counterparty.CAlpha),
		counterparty.ReductionProof); err != nil {
		return nil, nil, nil, p.verificationFailed(stepReduction, wrap(ErrInvalidModProof, "%w", err))
	}

	cAlpha = p.Group.Add(byRole(p.Role, own.CAlpha, counterparty.CAlpha))
	cAlphaTilde = p.Group.Sub(cAlpha, p.Group.EncryptConstant(divisorNat(alpha)))

	msg = &DecryptionMessage{}
	var eg errgroup.Group
	eg.Go(func() (err error) {
		msg.Alpha, err = p.decryptionShare(keys, channelAlpha, cAlpha)
		return
	})
	eg.Go(func() (err error) {
		msg.AlphaTilde, err = p.decryptionShare(keys, channelAlphaTilde, cAlphaTilde)
		return
	})
	if err = eg.Wait(); err != nil {
		return nil, nil, nil, wrap(ErrInvalidModProof, "%w", err)
	}
	return msg, cAlpha, cAlphaTilde, nil
}

// byRole orders the reduced ciphertexts by role, so that both parties compute the same sum.
func byRole(role Role, own, counterparty *elgamal.Ciphertext) (*elgamal.Ciphertext, *elgamal.Ciphertext) {
	if role == PartyOne {
		return own, counterparty
	}
	return counterparty, own
}

// decryptionShare raises c to a fresh secret exponent, and partially decrypts the result.
func (p *Party) decryptionShare(keys *Keys, channel string, c *elgamal.Ciphertext) (*DecryptionShare, error) {
	r := p.Group.RandomExponent(rand.Reader)
	randomized := p.Group.ScalarMul(c, r)
	randomizeProof, err := p.Proofs.DDH.Prove(p.transcript(p.Role, stepRerandomize, keys.Joint, channel),
		rerandomizeStatement(p.Group, c, randomized),
		zkddh.Private{X: r})
	if err != nil {
		return nil, fmt.Errorf("prove rerandomization: %w", err)
	}

	x := keys.private.elgamal
	partial := p.Group.PartialDecrypt(x, randomized)
	partialProof, err := p.Proofs.DDH.Prove(p.transcript(p.Role, stepPartial, keys.Joint, channel),
		partialStatement(p.Group, keys.LocalElGamal, randomized, partial),
		zkddh.Private{X: x.Exponent()})
	if err != nil {
		return nil, fmt.Errorf("prove partial decryption: %w", err)
	}
	return &DecryptionShare{
		Randomized:     randomized,
		RandomizeProof: randomizeProof,
		Partial:        partial,
		PartialProof:   partialProof,
	}, nil
}

// rerandomizeStatement is log_{c.C1}(c'.C1) = log_{c.C2}(c'.C2).
func rerandomizeStatement(group *elgamal.Group, c, randomized *elgamal.Ciphertext) zkddh.Public {
	return zkddh.Public{Group: group, G1: c.C1, H1: randomized.C1, G2: c.C2, H2: randomized.C2}
}

// partialStatement is log_g(h) = log_{c.C1}(partial), where h is the local key of the sender.
func partialStatement(group *elgamal.Group, key *elgamal.PublicKey, randomized *elgamal.Ciphertext, partial *saferith.Nat) zkddh.Public {
	return zkddh.Public{Group: group, G1: group.Generator(), H1: key.H, G2: randomized.C1, H2: partial}
}

// ConcludeDivision verifies the counterparty's decryption shares, and completes the decryption
// of both of its rerandomized ciphertexts.
//
// It returns false if either decrypts to zero, i.e. if α divides the candidate or the candidate
// equals α, and true otherwise.
func (p *Party) ConcludeDivision(cAlpha, cAlphaTilde *elgamal.Ciphertext, counterparty *DecryptionMessage, keys *Keys) (bool, error) {
	alphaZero, tildeZero, err := p.decryptChannels(cAlpha, cAlphaTilde, counterparty, keys)
	if err != nil {
		return false, err
	}
	if alphaZero || tildeZero {
		return false, nil
	}
	return true, nil
}

// decryptChannels returns whether each channel decrypts to zero.
func (p *Party) decryptChannels(cAlpha, cAlphaTilde *elgamal.Ciphertext, counterparty *DecryptionMessage, keys *Keys) (alphaZero, tildeZero bool, err error) {
	if keys == nil || cAlpha == nil || cAlphaTilde == nil {
		return false, false, errors.New("hmrt: missing local decryption material")
	}
	if counterparty == nil {
		return false, false, p.verificationFailed(stepPartial, wrap(ErrCandidateGenerationDec, "nil message"))
	}
	var eg errgroup.Group
	eg.Go(func() (err error) {
		alphaZero, err = p.decryptShare(keys, channelAlpha, cAlpha, counterparty.Alpha)
		return
	})
	eg.Go(func() (err error) {
		tildeZero, err = p.decryptShare(keys, channelAlphaTilde, cAlphaTilde, counterparty.AlphaTilde)
		return
	})
	if err = eg.Wait(); err != nil {
		return false, false, p.verificationFailed(stepPartial, err)
	}
	return alphaZero, tildeZero, nil
}

// decryptShare verifies a decryption share of the counterparty for c, and returns true
// if the rerandomized ciphertext decrypts to zero.
func (p *Party) decryptShare(keys *Keys, channel string, c *elgamal.Ciphertext, share *DecryptionShare) (bool, error) {
	other := p.Role.Counterparty()
	if share == nil || share.Randomized == nil {
		return false, wrap(ErrCandidateGenerationDec, "missing decryption share")
	}
	if err := p.Group.ValidateCiphertexts(share.Randomized); err != nil {
		return false, wrap(ErrCandidateGenerationDec, "%w", err)
	}
	if err := p.Group.ValidateElements(share.Partial); err != nil {
		return false, wrap(ErrCandidateGenerationDec, "%w", err)
	}
	// r = 0 passes the rerandomization proof, and would force a rejection
	if p.Group.IsIdentity(share.Randomized.C1) {
		return false, wrap(ErrCandidateGenerationDec, "rerandomized ciphertext is trivial")
	}
	if err := p.Proofs.DDH.Verify(p.transcript(other, stepRerandomize, keys.Joint, channel),
		rerandomizeStatement(p.Group, c, share.Randomized),
		share.RandomizeProof); err != nil {
		return false, wrap(ErrCandidateGenerationDec, "rerandomization: %w", err)
	}
	if err := p.Proofs.DDH.Verify(p.transcript(other, stepPartial, keys.Joint, channel),
		partialStatement(p.Group, keys.RemoteElGamal, share.Randomized, share.Partial),
		share.PartialProof); err != nil {
		return false, wrap(ErrCandidateGenerationDec, "partial decryption: %w", err)
	}

	own := p.Group.PartialDecrypt(keys.private.elgamal, share.Randomized)
	return p.Group.IsIdentity(p.Group.Combine(share.Randomized, own, share.Partial)), nil
}
