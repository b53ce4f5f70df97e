package test

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/elgamal"
	"github.com/taurusgroup/two-party-rsa/pkg/paillier"
)

// groupHex is a 512-bit safe prime, for which 2 generates the subgroup of prime order (p-1)/2.
const groupHex = "9dad603afeba98b4f1cdab0e9c28143c5991665db52195acdb09a1497b94a1f5" +
	"21ee665969db9bc499e3fda18a9f40b1e5201839b0a2b6424ed7b80f4fe99967"

// paillierPrimes are 256-bit safe Blum primes, two per key.
var paillierPrimes = [][2]string{
	{
		"c1bb77736557d74e0f7402388c98bc06d12bc24e0901bb1d653019ad548f482b",
		"eaa18a7b57d806ebcd2cf047750ade56b9b9bc0c22ca41d74b751d6af08f1417",
	},
	{
		"fe1a42a48a7f613475c0c26d5e9ba4e183bb84061dde88bff5c4674e034e6453",
		"e73238c53a9ae86f41409a94f004b7dbf2b2db799b4dc8ef511edcc14497c483",
	},
}

// PaillierBits is the size of the moduli returned by PaillierSecretKey.
const PaillierBits = 512

var (
	group     *elgamal.Group
	groupOnce sync.Once
)

// Group returns a small safe-prime group, suitable for tests only.
func Group() *elgamal.Group {
	groupOnce.Do(func() {
		p, _ := new(big.Int).SetString(groupHex, 16)
		g, err := elgamal.NewGroup("test512", p, big.NewInt(2))
		if err != nil {
			panic(fmt.Sprintf("test: invalid group: %v", err))
		}
		group = g
	})
	return group
}

// PaillierSecretKey returns one of a fixed set of small Paillier keys.
func PaillierSecretKey(i int) *paillier.SecretKey {
	primes := paillierPrimes[i%len(paillierPrimes)]
	return paillier.NewSecretKeyFromPrimes(natFromHex(primes[0]), natFromHex(primes[1]))
}

func natFromHex(s string) *saferith.Nat {
	b, _ := new(big.Int).SetString(s, 16)
	return new(saferith.Nat).SetBig(b, b.BitLen())
}
