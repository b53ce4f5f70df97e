package sample

import (
	"io"
	"math"
	"math/big"
	"sync"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/two-party-rsa/pkg/pool"
)

// Primes returns all the odd prime numbers < below, in increasing order.
func Primes(below uint32) []uint32 {
	if below < 4 {
		return nil
	}
	sieve := make([]bool, below)
	for i := 2; i < len(sieve); i++ {
		sieve[i] = true
	}
	for p := 2; p*p < len(sieve); p++ {
		if !sieve[p] {
			continue
		}
		for i := p << 1; i < len(sieve); i += p {
			sieve[i] = false
		}
	}
	// there are approximately N / log N primes below N
	nF := float64(below)
	out := make([]uint32, 0, int(nF/math.Log(nF))+1)
	for p := uint32(3); p < below; p++ {
		if sieve[p] {
			out = append(out, p)
		}
	}
	return out
}

// The number of numbers to check after our initial prime guess
const sieveSize = 1 << 18

// The upper bound on the prime numbers used for sieving
const primeBound = 1 << 20

// the number of iterations to use when checking primality
const blumPrimalityIterations = 20

var (
	thePrimes  []uint32
	initPrimes sync.Once
)

var sievePool = sync.Pool{
	New: func() interface{} {
		sieve := make([]bool, sieveSize)
		return &sieve
	},
}

// tryBlumPrime samples a random starting point of the given size, and sieves for a safe prime p = 3 mod 4
// in the window following it. It returns nil if the window contains none.
func tryBlumPrime(rand io.Reader, bits int) *saferith.Nat {
	initPrimes.Do(func() {
		thePrimes = Primes(primeBound)
	})

	bytes := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(rand, bytes); err != nil {
		return nil
	}
	// clear the bits above the requested size
	if excess := len(bytes)*8 - bits; excess > 0 {
		bytes[0] &= byte(0xff) >> uint(excess)
	}
	// For both p and (p - 1) / 2 to be prime, it must be the case that p = 3 mod 4
	bytes[len(bytes)-1] |= 3
	base := new(big.Int).SetBytes(bytes)
	// Ensure that the top two bits are set, so that the product of two such primes
	// has exactly twice the number of bits.
	base.SetBit(base, bits-1, 1)
	base.SetBit(base, bits-2, 1)

	sievePtr := sievePool.Get().(*[]bool)
	sieve := *sievePtr
	defer sievePool.Put(sievePtr)
	for i := 0; i < len(sieve); i++ {
		sieve[i] = true
	}
	// Remove candidates that aren't 3 mod 4
	for i := 1; i+2 < len(sieve); i += 4 {
		sieve[i] = false
		sieve[i+1] = false
		sieve[i+2] = false
	}
	remainder := new(big.Int)
	for _, prime := range thePrimes {
		// If x = 0 mod r, then x can't be prime. If x = 1 mod r, then (x - 1) / 2
		// can't be prime, so x can't be a safe prime.
		remainder.SetUint64(uint64(prime))
		remainder.Mod(base, remainder)
		r := int(remainder.Uint64())
		primeInt := int(prime)
		firstMultiple := primeInt - r
		if r == 0 {
			firstMultiple = 0
		}
		for i := firstMultiple; i+1 < len(sieve); i += primeInt {
			sieve[i] = false
			sieve[i+1] = false
		}
	}
	p := new(big.Int)
	q := new(big.Int)
	for delta := 0; delta < len(sieve); delta++ {
		if !sieve[delta] {
			continue
		}
		p.SetUint64(uint64(delta))
		p.Add(p, base)
		if p.BitLen() > bits {
			return nil
		}
		// Since p is odd, this is equivalent to (p - 1) / 2
		q.Rsh(p, 1)
		// p is likely to be prime already, so we first do the other check,
		// which is more likely to fail.
		if !q.ProbablyPrime(blumPrimalityIterations) {
			continue
		}
		// A single Miller-Rabin iteration is sufficient once q is prime.
		if !p.ProbablyPrime(0) {
			continue
		}
		return new(saferith.Nat).SetBig(p, bits)
	}
	return nil
}

// BlumPrime returns a safe prime p of the given size, such that p = 3 mod 4.
func BlumPrime(rand io.Reader, bits int) *saferith.Nat {
	for {
		if p := tryBlumPrime(rand, bits); p != nil {
			return p
		}
	}
}

// Paillier generates the primes of a Paillier key pair whose modulus has the given size.
// p, q are safe primes ((p - 1) / 2 is also prime), and Blum primes (p = 3 mod 4).
func Paillier(rand io.Reader, pl *pool.Pool, modulusBits int) (p, q *saferith.Nat) {
	primeBits := modulusBits / 2
	reader := pool.NewLockedReader(rand)
	results := pl.Search(2, func() interface{} {
		q := tryBlumPrime(reader, primeBits)
		// returning a typed nil would count as a result
		if q == nil {
			return nil
		}
		return q
	})
	p, q = results[0].(*saferith.Nat), results[1].(*saferith.Nat)
	return
}
