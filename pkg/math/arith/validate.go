package arith

import (
	"math/big"
)

// IsValidBigModN checks that every x is a unit of ℤₙ, with n given as a public big.Int.
func IsValidBigModN(n *big.Int, xs ...*big.Int) bool {
	var gcd big.Int
	one := big.NewInt(1)
	for _, x := range xs {
		if x == nil {
			return false
		}
		if x.Sign() != 1 || x.Cmp(n) != -1 {
			return false
		}
		if gcd.GCD(nil, nil, x, n).Cmp(one) != 0 {
			return false
		}
	}
	return true
}
