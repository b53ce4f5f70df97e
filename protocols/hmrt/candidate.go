package hmrt

import (
	"crypto/rand"
	"errors"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/internal/params"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/math/sample"
	zkbound "github.com/taurusgroup/two-party-rsa/pkg/zk/bound"
	zkenc "github.com/taurusgroup/two-party-rsa/pkg/zk/enc"
)

const (
	stepShareEncryption = "share encryption"
	stepShareRange      = "share range"
)

// CandidateMessage carries a party's encrypted share of the candidate.
type CandidateMessage struct {
	C          *elgamal.Ciphertext
	EncProof   *zkenc.Proof
	RangeProof *zkbound.Proof
}

// Witness is a party's share of the candidate, and the randomness used to encrypt it.
// It cannot be marshalled.
type Witness struct {
	share *saferith.Nat
	nonce *saferith.Nat
}

// Erase overwrites the witness. It is safe to call more than once.
func (w *Witness) Erase() {
	if w == nil {
		return
	}
	for _, x := range []*saferith.Nat{w.share, w.nonce} {
		if x != nil {
			x.SetUint64(0)
		}
	}
	w.share, w.nonce = nil, nil
}

func (w *Witness) erased() bool {
	return w == nil || w.share == nil || w.nonce == nil
}

// CiphertextPair holds the scaled shares of the candidate N = 4⋅(p₁+p₂) + 3:
// C0 encrypts 4⋅p₁ + 3 and C1 encrypts 4⋅p₂, where pᵢ is the share of party i.
type CiphertextPair struct {
	C0, C1 *elgamal.Ciphertext
}

// Half returns the ciphertext derived from the share of role.
func (c *CiphertextPair) Half(role Role) *elgamal.Ciphertext {
	if role == PartyOne {
		return c.C0
	}
	return c.C1
}

// Candidate returns the encryption of N.
func (c *CiphertextPair) Candidate(group *elgamal.Group) *elgamal.Ciphertext {
	return group.Add(c.C0, c.C1)
}

// GenerateShare samples a share of ShareBits bits, and encrypts it under the joint key.
func (p *Party) GenerateShare(keys *Keys) (*Witness, *CandidateMessage, error) {
	if keys == nil {
		return nil, nil, errors.New("hmrt: nil keys")
	}
	return p.encryptShare(keys, sample.Bits(rand.Reader, p.Config.ShareBits()))
}

func (p *Party) encryptShare(keys *Keys, share *saferith.Nat) (*Witness, *CandidateMessage, error) {
	nonce := p.Group.RandomExponent(rand.Reader)
	c := p.Group.Encrypt(keys.Joint, share, nonce)

	encProof, err := p.Proofs.Encryption.Prove(p.transcript(p.Role, stepShareEncryption, keys.Joint),
		zkenc.Public{Group: p.Group, Key: keys.Joint, C: c},
		zkenc.Private{M: share, Nonce: nonce})
	if err != nil {
		return nil, nil, wrap(ErrCandidateGenerationEnc, "prove encryption: %w", err)
	}
	rangeProof, err := p.Proofs.Range.Prove(p.transcript(p.Role, stepShareRange, keys.Joint),
		p.shareRange(keys, c),
		zkbound.Private{X: share, Nonce: nonce})
	if err != nil {
		return nil, nil, wrap(ErrCandidateGenerationEnc, "prove range: %w", err)
	}

	return &Witness{share: share, nonce: nonce}, &CandidateMessage{
		C:          c,
		EncProof:   encProof,
		RangeProof: rangeProof,
	}, nil
}

// shareRange is the statement of the range proof on a share.
// Its bound 2ᴮᵒᵘⁿᵈᴮⁱᵗˢ is looser than the sampling bound 2ˢʰᵃʳᵉᴮⁱᵗˢ.
func (p *Party) shareRange(keys *Keys, c *elgamal.Ciphertext) zkbound.Public {
	return zkbound.Public{Group: p.Group, Key: keys.Joint, C: c, Bits: p.Config.BoundBits()}
}

// NormalizeCiphertexts verifies the counterparty's encrypted share, and combines both shares into
// the ciphertext pair of the candidate.
//
// On failure, the attempt should be restarted from GenerateShare.
func (p *Party) NormalizeCiphertexts(keys *Keys, counterparty, own *CandidateMessage) (*CiphertextPair, error) {
	if keys == nil || own == nil || own.C == nil {
		return nil, errors.New("hmrt: missing local candidate material")
	}
	if counterparty == nil {
		return nil, p.verificationFailed(stepShareEncryption, wrap(ErrCandidateGenerationEnc, "nil message"))
	}
	if err := p.Group.ValidateCiphertexts(counterparty.C); err != nil {
		return nil, p.verificationFailed(stepShareEncryption, wrap(ErrCandidateGenerationEnc, "%w", err))
	}
	other := p.Role.Counterparty()
	if err := p.Proofs.Encryption.Verify(p.transcript(other, stepShareEncryption, keys.Joint),
		zkenc.Public{Group: p.Group, Key: keys.Joint, C: counterparty.C},
		counterparty.EncProof); err != nil {
		return nil, p.verificationFailed(stepShareEncryption, wrap(ErrCandidateGenerationEnc, "%w", err))
	}
	if err := p.Proofs.Range.Verify(p.transcript(other, stepShareRange, keys.Joint),
		p.shareRange(keys, counterparty.C),
		counterparty.RangeProof); err != nil {
		return nil, p.verificationFailed(stepShareRange, wrap(ErrCandidateGenerationEnc, "%w", err))
	}

	scale := new(saferith.Nat).SetUint64(params.BlumScale)
	offset := p.Group.EncryptConstant(new(saferith.Nat).SetUint64(params.BlumOffset))
	scaledOwn := p.Group.ScalarMul(own.C, scale)
	scaledCounterparty := p.Group.ScalarMul(counterparty.C, scale)
	if p.Role == PartyOne {
		return &CiphertextPair{C0: p.Group.Add(scaledOwn, offset), C1: scaledCounterparty}, nil
	}
	return &CiphertextPair{C0: p.Group.Add(scaledCounterparty, offset), C1: scaledOwn}, nil
}

// scaledWitness returns the plaintext and the nonce of this party's half of the ciphertext pair.
func (p *Party) scaledWitness(w *Witness) (a, nonce *saferith.Nat) {
	q := p.Group.Q()
	scale := new(saferith.Nat).SetUint64(params.BlumScale)
	a = new(saferith.Nat).Mul(w.share, scale, p.Config.BoundBits()+1)
	if p.Role == PartyOne {
		a.Add(a, new(saferith.Nat).SetUint64(params.BlumOffset), p.Config.BoundBits()+1)
	}
	nonce = new(saferith.Nat).ModMul(w.nonce, p.Group.Exponent(scale), q)
	return a, nonce
}
