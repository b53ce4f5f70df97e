package elgamal

import (
	"fmt"
	"math/big"
	"sync"
)

// NameFFDHE2048 is the name of the 2048-bit finite field group of RFC 7919.
const NameFFDHE2048 = "ffdhe2048"

const ffdhe2048Hex = "FFFFFFFFFFFFFFFFADF85458A2BB4A9AAFDC5620273D3CF1D8B9C583CE2D3695" +
	"A9E13641146433FBCC939DCE249B3EF97D2FE363630C75D8F681B202AEC4617A" +
	"D3DF1ED5D5FD65612433F51F5F066ED0856365553DED1AF3B557135E7F57C935" +
	"984F0C70E0E68B77E2A689DAF3EFE8721DF158A136ADE73530ACCA4F483A797A" +
	"BC0AB182B324FB61D108A94BB2C8E3FBB96ADAB760D7F4681D4F42A3DE394DF4" +
	"AE56EDE76372BB190B07A7C8EE0A6D709E02FCE1CDF7E2ECC03404CD28342F61" +
	"9172FE9CE98583FF8E4F1232EEF28183C3FE3B1B4C6FAD733BB5FCBC2EC22005" +
	"C58EF1837D1683B2C6F34A26C1B2EFFA886B423861285C97FFFFFFFFFFFFFFFF"

var (
	ffdhe2048     *Group
	ffdhe2048Once sync.Once
)

// FFDHE2048 returns the group of RFC 7919, with generator 2.
func FFDHE2048() *Group {
	ffdhe2048Once.Do(func() {
		p, _ := new(big.Int).SetString(ffdhe2048Hex, 16)
		group, err := NewGroup(NameFFDHE2048, p, big.NewInt(2))
		if err != nil {
			panic(fmt.Sprintf("elgamal: invalid built-in group: %v", err))
		}
		ffdhe2048 = group
	})
	return ffdhe2048
}

// GroupByName returns one of the built-in groups.
func GroupByName(name string) (*Group, error) {
	switch name {
	case NameFFDHE2048:
		return FFDHE2048(), nil
	default:
		return nil, fmt.Errorf("elgamal: unknown group %q", name)
	}
}
