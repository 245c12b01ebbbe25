package types

import (
	"fmt"
	"math/big"
)

// BalanceDelta is the net change for one asset pair from the caller's
// perspective. Positive means the ledger owes the caller, negative means the
// caller owes the ledger.
type BalanceDelta struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// NewBalanceDelta copies both amounts into a fresh delta.
func NewBalanceDelta(amount0, amount1 *big.Int) BalanceDelta {
	return BalanceDelta{
		Amount0: CloneAmount(amount0),
		Amount1: CloneAmount(amount1),
	}
}

// ZeroBalanceDelta returns an all-zero delta.
func ZeroBalanceDelta() BalanceDelta {
	return BalanceDelta{Amount0: new(big.Int), Amount1: new(big.Int)}
}

// Add returns the leg-wise sum of two deltas.
func (d BalanceDelta) Add(other BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Amount0: new(big.Int).Add(d.Amount0, other.Amount0),
		Amount1: new(big.Int).Add(d.Amount1, other.Amount1),
	}
}

// Sub returns the leg-wise difference of two deltas.
func (d BalanceDelta) Sub(other BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Amount0: new(big.Int).Sub(d.Amount0, other.Amount0),
		Amount1: new(big.Int).Sub(d.Amount1, other.Amount1),
	}
}

// Negate inverts both legs.
func (d BalanceDelta) Negate() BalanceDelta {
	return BalanceDelta{
		Amount0: new(big.Int).Neg(d.Amount0),
		Amount1: new(big.Int).Neg(d.Amount1),
	}
}

// IsZero reports whether both legs are zero.
func (d BalanceDelta) IsZero() bool {
	return d.Amount0.Sign() == 0 && d.Amount1.Sign() == 0
}

// String renders the delta as "(amount0, amount1)".
func (d BalanceDelta) String() string {
	return fmt.Sprintf("(%s, %s)", d.Amount0, d.Amount1)
}

// PackedDelta carries the two legs of a swap between the pre- and post-hook:
// the specified leg (the side the caller fixed) and the unspecified leg (the
// side the curve computes). Both fields are independent signed amounts within
// the 128-bit domain; sign is preserved on each leg separately.
type PackedDelta struct {
	Specified   *big.Int
	Unspecified *big.Int
}

// Pack validates both legs against the amount domain and returns the pair as
// a single value. The round trip through Unpack is exact for every
// representable amount, including MinAmount, MaxAmount, zero and -1.
func Pack(specified, unspecified *big.Int) (PackedDelta, error) {
	if err := CheckAmount(specified); err != nil {
		return PackedDelta{}, fmt.Errorf("pack specified leg: %w", err)
	}
	if err := CheckAmount(unspecified); err != nil {
		return PackedDelta{}, fmt.Errorf("pack unspecified leg: %w", err)
	}
	return PackedDelta{
		Specified:   CloneAmount(specified),
		Unspecified: CloneAmount(unspecified),
	}, nil
}

// MustPack is like Pack but panics on out-of-range legs. Use for literals.
func MustPack(specified, unspecified *big.Int) PackedDelta {
	d, err := Pack(specified, unspecified)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroPackedDelta returns a packed delta with both legs zero.
func ZeroPackedDelta() PackedDelta {
	return PackedDelta{Specified: new(big.Int), Unspecified: new(big.Int)}
}

// Unpack returns copies of the two legs.
func (p PackedDelta) Unpack() (specified, unspecified *big.Int) {
	return CloneAmount(p.Specified), CloneAmount(p.Unspecified)
}

// IsZero reports whether both legs are zero. Nil legs count as zero.
func (p PackedDelta) IsZero() bool {
	return (p.Specified == nil || p.Specified.Sign() == 0) &&
		(p.Unspecified == nil || p.Unspecified.Sign() == 0)
}

// String renders the packed delta as "spec/unspec".
func (p PackedDelta) String() string {
	s, u := p.Unpack()
	return fmt.Sprintf("%s/%s", s, u)
}
