// Package pricing abstracts the curve math that turns a swap request into
// concrete input and output amounts. The engine treats it as a black box so
// alternative curves can be swapped in without touching settlement.
package pricing

import (
	"errors"
	"math/big"
)

var (
	// ErrNoLiquidity is returned when the curve has nothing to price against.
	ErrNoLiquidity = errors.New("pricing: no active liquidity")

	// ErrInvalidParams is returned for malformed swap parameters.
	ErrInvalidParams = errors.New("pricing: invalid parameters")
)

// State is the curve-relevant slice of pool state.
type State struct {
	SqrtPriceX96 *big.Int
	Liquidity    *big.Int
}

// Params describes the trade the curve must price. AmountRemaining follows
// the caller convention: positive fixes the input leg, negative fixes the
// output leg. FeePips is the fee applied to the input, in millionths.
type Params struct {
	ZeroForOne        bool
	AmountRemaining   *big.Int
	SqrtPriceLimitX96 *big.Int
	FeePips           uint32
}

// Result is the priced outcome of a swap step. AmountIn and AmountOut are
// nonnegative magnitudes; FeeAmount is the portion of AmountIn kept as fees.
// LimitReached is true when the price limit truncated the trade to a partial
// fill.
type Result struct {
	AmountIn     *big.Int
	AmountOut    *big.Int
	FeeAmount    *big.Int
	NewState     State
	LimitReached bool
}

// Engine prices swaps and liquidity changes against a curve.
type Engine interface {
	// ComputeSwapStep prices a swap against state. Implementations must not
	// mutate state.
	ComputeSwapStep(state State, params Params) (Result, error)

	// LiquidityAmounts returns the asset amounts corresponding to a
	// liquidity change at the current price. Positive liquidityDelta yields
	// the amounts owed to the pool; the engine applies signs.
	LiquidityAmounts(state State, liquidityDelta *big.Int) (amount0, amount1 *big.Int, err error)
}
