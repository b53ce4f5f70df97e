package sample

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/cronokirby/saferith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/two-party-rsa/pkg/pool"
)

func TestModN(t *testing.T) {
	n := saferith.ModulusFromUint64(3 * 11 * 65519)
	for i := 0; i < 100; i++ {
		x := ModN(rand.Reader, n)
		_, _, lt := x.CmpMod(n)
		require.Equal(t, saferith.Choice(1), lt, "ModN generated a number >= n")
	}
	u := UnitModN(rand.Reader, n)
	assert.Equal(t, saferith.Choice(1), u.IsUnit(n))
	assert.Equal(t, saferith.Choice(0), NonZeroModN(rand.Reader, n).EqZero())
}

func TestBits(t *testing.T) {
	for _, bits := range []int{1, 7, 8, 62, 130} {
		bound := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		for i := 0; i < 20; i++ {
			x := Bits(rand.Reader, bits)
			assert.Equal(t, -1, x.Big().Cmp(bound))
		}
	}
}

func TestQNR(t *testing.T) {
	n := saferith.ModulusFromUint64(311 * 331)
	w := QNR(rand.Reader, n)
	assert.Equal(t, -1, big.Jacobi(w.Big(), n.Big()))
}

func TestPrimes(t *testing.T) {
	assert.Equal(t, []uint32{3, 5, 7, 11, 13, 17, 19, 23, 29}, Primes(30))
	assert.Empty(t, Primes(3))
}

func TestBlumPrime(t *testing.T) {
	const bits = 128
	p := BlumPrime(rand.Reader, bits).Big()
	assert.Equal(t, bits, p.BitLen())
	assert.True(t, p.ProbablyPrime(20), "BlumPrime generated a non prime number")
	assert.Equal(t, uint(3), p.Bit(0)+2*p.Bit(1), "p should be 3 mod 4")
	q := new(big.Int).Rsh(p, 1)
	assert.True(t, q.ProbablyPrime(20), "p isn't safe because (p - 1) / 2 isn't prime")
}

func TestPaillier(t *testing.T) {
	pl := pool.NewPool(0)
	defer pl.TearDown()

	p, q := Paillier(rand.Reader, pl, 256)
	n := new(big.Int).Mul(p.Big(), q.Big())
	assert.Equal(t, 256, n.BitLen())
	assert.NotEqual(t, 0, p.Big().Cmp(q.Big()))
}
