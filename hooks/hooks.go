// Package hooks defines the extension interfaces a pool may attach and the
// registry that validates and caches their capabilities.
//
// An extension implements the base Extension interface plus any subset of the
// optional lifecycle interfaces below. Notification variants observe an
// operation; delta variants additionally return balance adjustments that the
// engine composes into the caller's obligations. Capabilities are derived
// once at registration by type assertion and cached, so per-operation
// dispatch never re-inspects the extension.
package hooks

import (
	"context"
	"math/big"

	"github.com/meridex/settle/id"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/types"
)

// Extension is the minimal contract every pool extension implements.
type Extension interface {
	// Name returns a unique, human-readable extension name.
	Name() string
}

// FeeOverride optionally replaces the pool's static fee for one swap.
type FeeOverride struct {
	fee   uint32
	valid bool
}

// OverrideFee returns an override carrying fee, in pips.
func OverrideFee(fee uint32) FeeOverride {
	return FeeOverride{fee: fee, valid: true}
}

// NoFeeOverride leaves the pool's static fee in effect.
func NoFeeOverride() FeeOverride { return FeeOverride{} }

// Fee returns the override fee and whether it is set.
func (f FeeOverride) Fee() (uint32, bool) { return f.fee, f.valid }

// PoolContext carries the identity of the operation being dispatched.
type PoolContext struct {
	Caller id.AccountID
	Key    pool.Key
	ID     pool.ID
}

// BeforeInitializeHook observes pool initialization before the price is set.
type BeforeInitializeHook interface {
	BeforeInitialize(ctx context.Context, pc PoolContext, sqrtPriceX96 *big.Int) error
}

// AfterInitializeHook observes pool initialization after the price is set.
type AfterInitializeHook interface {
	AfterInitialize(ctx context.Context, pc PoolContext, sqrtPriceX96 *big.Int) error
}

// BeforeAddLiquidityHook observes liquidity additions before they execute.
type BeforeAddLiquidityHook interface {
	BeforeAddLiquidity(ctx context.Context, pc PoolContext, params pool.LiquidityParams) error
}

// AfterAddLiquidityHook observes liquidity additions after they execute.
type AfterAddLiquidityHook interface {
	AfterAddLiquidity(ctx context.Context, pc PoolContext, params pool.LiquidityParams, delta types.BalanceDelta) error
}

// BeforeRemoveLiquidityHook observes liquidity removals before they execute.
type BeforeRemoveLiquidityHook interface {
	BeforeRemoveLiquidity(ctx context.Context, pc PoolContext, params pool.LiquidityParams) error
}

// AfterRemoveLiquidityHook observes liquidity removals after they execute.
type AfterRemoveLiquidityHook interface {
	AfterRemoveLiquidity(ctx context.Context, pc PoolContext, params pool.LiquidityParams, delta types.BalanceDelta) error
}

// BeforeSwapHook observes swaps before pricing runs.
type BeforeSwapHook interface {
	BeforeSwap(ctx context.Context, pc PoolContext, params pool.SwapParams) error
}

// AfterSwapHook observes swaps after the caller's delta is booked.
type AfterSwapHook interface {
	AfterSwap(ctx context.Context, pc PoolContext, params pool.SwapParams, delta types.BalanceDelta) error
}

// BeforeDonateHook observes donations before fee growth accrues.
type BeforeDonateHook interface {
	BeforeDonate(ctx context.Context, pc PoolContext, amount0, amount1 *big.Int) error
}

// AfterDonateHook observes donations after fee growth accrues.
type AfterDonateHook interface {
	AfterDonate(ctx context.Context, pc PoolContext, amount0, amount1 *big.Int) error
}

// BeforeSwapDeltaHook lets an extension consume or supply part of the
// specified leg before pricing, and optionally override the swap fee. The
// returned delta is expressed in the caller's sign convention: positive
// specified means the extension credits the caller that much of the
// specified asset, shrinking what the curve must price.
type BeforeSwapDeltaHook interface {
	BeforeSwapDelta(ctx context.Context, pc PoolContext, params pool.SwapParams) (types.PackedDelta, FeeOverride, error)
}

// AfterSwapDeltaHook lets an extension adjust the unspecified leg of a swap
// after pricing. It receives the composed result and the packed delta the
// pre-swap hook claimed (all zero when no pre-swap claim was made), so a
// stateless extension can see its own pre-claim. The returned amount is
// added to the caller's unspecified delta, again in the caller's sign
// convention.
type AfterSwapDeltaHook interface {
	AfterSwapDelta(ctx context.Context, pc PoolContext, params pool.SwapParams, delta types.BalanceDelta, pre types.PackedDelta) (*big.Int, error)
}

// AfterAddLiquidityDeltaHook lets an extension claim part of the fees
// accrued to a position during a liquidity addition. Claims are bounded
// leg-wise by the accrued fees.
type AfterAddLiquidityDeltaHook interface {
	AfterAddLiquidityDelta(ctx context.Context, pc PoolContext, params pool.LiquidityParams, delta types.BalanceDelta) (types.BalanceDelta, error)
}

// AfterRemoveLiquidityDeltaHook is the removal counterpart of
// AfterAddLiquidityDeltaHook.
type AfterRemoveLiquidityDeltaHook interface {
	AfterRemoveLiquidityDelta(ctx context.Context, pc PoolContext, params pool.LiquidityParams, delta types.BalanceDelta) (types.BalanceDelta, error)
}
