package pool

import "math/big"

// SwapParams describes one swap request against a pool.
type SwapParams struct {
	// ZeroForOne is true when asset0 is sold for asset1.
	ZeroForOne bool

	// AmountSpecified fixes one leg of the trade. Positive means exact
	// input (the caller fixes what it pays); negative means exact output
	// (the caller fixes what it receives).
	AmountSpecified *big.Int

	// SqrtPriceLimitX96 bounds how far the price may move. Zero means no
	// limit.
	SqrtPriceLimitX96 *big.Int

	// HookData is forwarded opaque to the pool's extension.
	HookData []byte
}

// ExactInput reports whether the specified leg is the input leg.
func (p SwapParams) ExactInput() bool {
	return p.AmountSpecified != nil && p.AmountSpecified.Sign() > 0
}

// LiquidityParams describes one liquidity modification against a pool.
type LiquidityParams struct {
	// LiquidityDelta is positive to add liquidity, negative to remove.
	LiquidityDelta *big.Int

	// Salt distinguishes multiple positions held by the same owner.
	Salt string

	// HookData is forwarded opaque to the pool's extension.
	HookData []byte
}
