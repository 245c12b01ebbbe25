package settle

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/meridex/settle/hooks"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/pricing"
	"github.com/meridex/settle/types"
)

// curveState projects the pricing-relevant slice of pool state.
func curveState(p *pool.Pool) pricing.State {
	return pricing.State{SqrtPriceX96: p.SqrtPriceX96, Liquidity: p.Liquidity}
}

// Swap executes a swap against the pool for key and books the resulting
// delta against the session caller. The returned delta is what was booked:
// positive legs are owed to the caller, negative legs are owed by the caller.
//
// The pipeline runs pre-hook, curve pricing, delta composition, then
// post-hook. An extension with a delta-returning pre-hook may consume or
// supply part of the specified leg before pricing; the curve then prices
// only the remainder. The composed result must keep the caller's trade
// direction, otherwise the swap fails with ErrInvalidExtensionDelta.
//
// A zero-amount swap with no extension participation books nothing and
// returns an all-zero delta.
//
// A failed swap marks the session failed: the session rolls back at close
// even if the caller ignores the returned error.
func (e *Engine) Swap(ctx context.Context, key pool.Key, params pool.SwapParams) (types.BalanceDelta, error) {
	d, err := e.swap(ctx, key, params)
	if err != nil {
		return types.BalanceDelta{}, e.fail(err)
	}
	return d, nil
}

func (e *Engine) swap(ctx context.Context, key pool.Key, params pool.SwapParams) (types.BalanceDelta, error) {
	if err := e.requireSession(); err != nil {
		return types.BalanceDelta{}, err
	}

	p, err := e.lookupPool(key)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	if err := types.CheckAmount(params.AmountSpecified); err != nil {
		return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	hs, err := e.hookset(key)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	caller := e.sessionCaller()
	pc := hooks.PoolContext{Caller: caller, Key: key, ID: p.Key.ID()}

	// Pre-hook. A delta-returning variant supersedes the notification.
	hookPre := types.ZeroPackedDelta()
	feePips := key.Fee
	switch {
	case hs != nil && hs.BeforeSwapDelta != nil:
		claimed, override, err := hs.BeforeSwapDelta.BeforeSwapDelta(ctx, pc, params)
		if err != nil {
			return types.BalanceDelta{}, fmt.Errorf("settle: before-swap hook: %w", err)
		}
		if err := types.CheckAmount(claimed.Specified); err != nil {
			return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrInvalidExtensionDelta, err)
		}
		if err := types.CheckAmount(claimed.Unspecified); err != nil {
			return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrInvalidExtensionDelta, err)
		}
		hookPre = claimed
		if fee, ok := override.Fee(); ok {
			if fee > pool.FeeMax {
				return types.BalanceDelta{}, fmt.Errorf("%w: override %d exceeds max %d", ErrInvalidFee, fee, pool.FeeMax)
			}
			feePips = fee
		}
	case hs != nil && hs.BeforeSwap != nil:
		if err := hs.BeforeSwap.BeforeSwap(ctx, pc, params); err != nil {
			return types.BalanceDelta{}, fmt.Errorf("settle: before-swap hook: %w", err)
		}
	}

	// The extension's specified-leg claim shrinks or grows what the curve
	// must price. It may reduce the trade to nothing, never reverse it.
	requested := types.CloneAmount(params.AmountSpecified)
	amountToSwap := new(big.Int).Add(requested, hookPre.Specified)
	if amountToSwap.Sign() != 0 && amountToSwap.Sign() != requested.Sign() {
		return types.BalanceDelta{}, fmt.Errorf("%w: specified leg %s reverses trade direction of %s",
			ErrInvalidExtensionDelta, hookPre.Specified, requested)
	}

	exactIn := requested.Sign() > 0
	curveSpecified := new(big.Int)
	curveUnspecified := new(big.Int)
	if amountToSwap.Sign() != 0 {
		if p.Liquidity.Sign() == 0 {
			return types.BalanceDelta{}, fmt.Errorf("%w: pool %s", ErrNoLiquidity, pc.ID)
		}
		res, err := e.pricing.ComputeSwapStep(curveState(p), pricing.Params{
			ZeroForOne:        params.ZeroForOne,
			AmountRemaining:   amountToSwap,
			SqrtPriceLimitX96: params.SqrtPriceLimitX96,
			FeePips:           feePips,
		})
		if err != nil {
			return types.BalanceDelta{}, fmt.Errorf("settle: pricing: %w", err)
		}
		if exactIn {
			curveSpecified.Neg(res.AmountIn)
			curveUnspecified.Set(res.AmountOut)
		} else {
			curveSpecified.Set(res.AmountOut)
			curveUnspecified.Neg(res.AmountIn)
		}

		p.SqrtPriceX96 = res.NewState.SqrtPriceX96
		if res.FeeAmount != nil && res.FeeAmount.Sign() > 0 {
			if params.ZeroForOne {
				err = p.AccrueFees(res.FeeAmount, nil)
			} else {
				err = p.AccrueFees(nil, res.FeeAmount)
			}
			if err != nil {
				return types.BalanceDelta{}, err
			}
		}
	}

	composedSpecified := new(big.Int).Add(curveSpecified, hookPre.Specified)
	composedUnspecified := new(big.Int).Add(curveUnspecified, hookPre.Unspecified)

	// Post-hook. The delta variant sees the pre-swap claim and may adjust
	// the unspecified leg.
	if hs != nil && hs.AfterSwapDelta != nil {
		adj, err := hs.AfterSwapDelta.AfterSwapDelta(ctx, pc, params,
			swapDelta(params, exactIn, composedSpecified, composedUnspecified), hookPre)
		if err != nil {
			return types.BalanceDelta{}, fmt.Errorf("settle: after-swap hook: %w", err)
		}
		if err := types.CheckAmount(adj); err != nil {
			return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrInvalidExtensionDelta, err)
		}
		composedUnspecified.Add(composedUnspecified, types.CloneAmount(adj))
	}

	if err := types.CheckAmount(composedSpecified); err != nil {
		return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrDeltaOverflow, err)
	}
	if err := types.CheckAmount(composedUnspecified); err != nil {
		return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrDeltaOverflow, err)
	}

	final := swapDelta(params, exactIn, composedSpecified, composedUnspecified)
	if err := e.applyDelta(caller, key.Asset0, final.Amount0); err != nil {
		return types.BalanceDelta{}, err
	}
	if err := e.applyDelta(caller, key.Asset1, final.Amount1); err != nil {
		return types.BalanceDelta{}, err
	}

	if hs != nil && hs.AfterSwapDelta == nil && hs.AfterSwap != nil {
		if err := hs.AfterSwap.AfterSwap(ctx, pc, params, final); err != nil {
			return types.BalanceDelta{}, fmt.Errorf("settle: after-swap hook: %w", err)
		}
	}

	e.logger.Debug("swap executed",
		slog.String("pool_id", pc.ID.String()),
		slog.Bool("zero_for_one", params.ZeroForOne),
		slog.String("amount0", final.Amount0.String()),
		slog.String("amount1", final.Amount1.String()),
	)
	return final, nil
}

// swapDelta maps the (specified, unspecified) legs onto (asset0, asset1).
// For exact input the specified leg is the input asset; for exact output it
// is the output asset.
func swapDelta(params pool.SwapParams, exactIn bool, specified, unspecified *big.Int) types.BalanceDelta {
	specifiedIsZero := params.ZeroForOne == exactIn
	if specifiedIsZero {
		return types.NewBalanceDelta(specified, unspecified)
	}
	return types.NewBalanceDelta(unspecified, specified)
}
