package types

import (
	"fmt"
	"math/big"
)

// Amounts are signed big integers constrained to the 128-bit two's-complement
// domain [-2^127, 2^127-1]. All ledger arithmetic validates results against
// these bounds so that an overflowing composition fails instead of wrapping.
var (
	// MaxAmount is 2^127 - 1, the largest representable amount.
	MaxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))

	// MinAmount is -2^127, the smallest representable amount.
	MinAmount = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// InRange reports whether v fits the signed 128-bit amount domain.
// A nil amount is treated as zero.
func InRange(v *big.Int) bool {
	if v == nil {
		return true
	}
	return v.Cmp(MinAmount) >= 0 && v.Cmp(MaxAmount) <= 0
}

// CheckAmount returns a descriptive error when v falls outside the amount
// domain.
func CheckAmount(v *big.Int) error {
	if !InRange(v) {
		return fmt.Errorf("types: amount %s outside signed 128-bit range", v)
	}
	return nil
}

// CloneAmount returns an independent copy of v, mapping nil to zero.
func CloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
