package hmrt

import (
	"crypto/rand"
	"errors"

	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/paillier"
	zkdlog "github.com/taurusgroup/two-party-rsa/pkg/zk/dlog"
	zkmod "github.com/taurusgroup/two-party-rsa/pkg/zk/mod"
)

const (
	stepElGamalKey  = "elgamal key"
	stepPaillierKey = "paillier key"
)

// KeySetupMessage is sent by both parties during key setup.
type KeySetupMessage struct {
	PaillierKey     *paillier.PublicKey
	ElGamalKey      *elgamal.PublicKey
	CorrectKeyProof *zkmod.Proof
	DLogProof       *zkdlog.Proof
}

// PrivateMaterial holds the secret keys of a party.
// It cannot be marshalled, and must never leave the party.
type PrivateMaterial struct {
	paillier *paillier.SecretKey
	elgamal  *elgamal.SecretKey
}

// Keys is the outcome of key setup for one party.
type Keys struct {
	Role           Role
	LocalPaillier  *paillier.PublicKey
	LocalElGamal   *elgamal.PublicKey
	RemotePaillier *paillier.PublicKey
	RemoteElGamal  *elgamal.PublicKey
	// Joint is the product of both ElGamal keys; decrypting under it requires both parties.
	Joint *elgamal.PublicKey

	private *PrivateMaterial
}

// GenerateLocalKeys samples fresh ElGamal and Paillier keys, and proves that they are well formed.
// If p.Paillier is set, it is used instead of a fresh Paillier key.
// The returned PrivateMaterial must be kept, and given to FinalizeKeys.
func (p *Party) GenerateLocalKeys() (*KeySetupMessage, *PrivateMaterial, error) {
	psk := p.Paillier
	if psk == nil {
		_, psk = paillier.KeyGen(rand.Reader, p.Pool, p.Config.PaillierBits)
	} else if psk.N().BitLen() != p.Config.PaillierBits {
		return nil, nil, wrap(ErrInvalidPaillierKey, "precomputed key has %d bits, expected %d", psk.N().BitLen(), p.Config.PaillierBits)
	}
	return p.localKeys(psk)
}

func (p *Party) localKeys(psk *paillier.SecretKey) (*KeySetupMessage, *PrivateMaterial, error) {
	esk, epk := p.Group.GenerateKey(rand.Reader)
	ppk := psk.PublicKey

	dlogProof, err := p.Proofs.DLog.Prove(p.transcript(p.Role, stepElGamalKey),
		zkdlog.Public{Group: p.Group, H: epk.H},
		zkdlog.Private{X: esk.Exponent()})
	if err != nil {
		return nil, nil, wrap(ErrInvalidElGamalKey, "prove: %w", err)
	}
	modProof, err := p.Proofs.CorrectKey.Prove(p.transcript(p.Role, stepPaillierKey),
		zkmod.Public{N: ppk.N()},
		zkmod.Private{P: psk.P(), Q: psk.Q(), Phi: psk.Phi()})
	if err != nil {
		return nil, nil, wrap(ErrInvalidPaillierKey, "prove: %w", err)
	}

	return &KeySetupMessage{
			PaillierKey:     ppk,
			ElGamalKey:      epk,
			CorrectKeyProof: modProof,
			DLogProof:       dlogProof,
		}, &PrivateMaterial{
			paillier: psk,
			elgamal:  esk,
		}, nil
}

// FinalizeKeys verifies the key setup message of the counterparty, and derives the joint key.
// No Keys are returned if any check fails.
func (p *Party) FinalizeKeys(counterparty, own *KeySetupMessage, private *PrivateMaterial) (*Keys, error) {
	if own == nil || private == nil || private.elgamal == nil || private.paillier == nil {
		return nil, errors.New("hmrt: missing local key material")
	}
	if counterparty == nil {
		return nil, p.verificationFailed(stepElGamalKey, wrap(ErrInvalidElGamalKey, "nil message"))
	}
	other := p.Role.Counterparty()

	if err := p.Group.ValidatePublicKey(counterparty.ElGamalKey); err != nil {
		return nil, p.verificationFailed(stepElGamalKey, wrap(ErrInvalidElGamalKey, "%w", err))
	}
	if err := p.Proofs.DLog.Verify(p.transcript(other, stepElGamalKey),
		zkdlog.Public{Group: p.Group, H: counterparty.ElGamalKey.H},
		counterparty.DLogProof); err != nil {
		return nil, p.verificationFailed(stepElGamalKey, wrap(ErrInvalidElGamalKey, "%w", err))
	}

	if counterparty.PaillierKey == nil {
		return nil, p.verificationFailed(stepPaillierKey, wrap(ErrInvalidPaillierKey, "nil key"))
	}
	if err := paillier.ValidateN(counterparty.PaillierKey.N(), p.Config.PaillierBits); err != nil {
		return nil, p.verificationFailed(stepPaillierKey, wrap(ErrInvalidPaillierKey, "%w", err))
	}
	if err := p.Proofs.CorrectKey.Verify(p.transcript(other, stepPaillierKey),
		zkmod.Public{N: counterparty.PaillierKey.N()},
		counterparty.CorrectKeyProof); err != nil {
		return nil, p.verificationFailed(stepPaillierKey, wrap(ErrInvalidPaillierKey, "%w", err))
	}

	// the keys are multiplied in role order, so that both parties compute the same bytes
	first, second := own.ElGamalKey, counterparty.ElGamalKey
	if p.Role == PartyTwo {
		first, second = second, first
	}
	return &Keys{
		Role:           p.Role,
		LocalPaillier:  own.PaillierKey,
		LocalElGamal:   own.ElGamalKey,
		RemotePaillier: counterparty.PaillierKey,
		RemoteElGamal:  counterparty.ElGamalKey,
		Joint:          p.Group.AddPublicKeys(first, second),
		private:        private,
	}, nil
}
