package settle

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/meridex/settle/hooks"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/types"
)

// ModifyLiquidity adds or removes liquidity in the session caller's position
// and books the resulting delta. The delta is principal plus the position's
// accrued fees, minus whatever fee share a delta-returning post-hook claims.
// Extension claims are bounded leg-wise by the accrued fees: an extension
// may redirect fees, never the caller's principal.
//
// A zero LiquidityDelta settles the position's accrued fees without moving
// principal.
//
// A failed modification marks the session failed: the session rolls back at
// close even if the caller ignores the returned error.
func (e *Engine) ModifyLiquidity(ctx context.Context, key pool.Key, params pool.LiquidityParams) (types.BalanceDelta, error) {
	d, err := e.modifyLiquidity(ctx, key, params)
	if err != nil {
		return types.BalanceDelta{}, e.fail(err)
	}
	return d, nil
}

func (e *Engine) modifyLiquidity(ctx context.Context, key pool.Key, params pool.LiquidityParams) (types.BalanceDelta, error) {
	if err := e.requireSession(); err != nil {
		return types.BalanceDelta{}, err
	}

	p, err := e.lookupPool(key)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	if err := types.CheckAmount(params.LiquidityDelta); err != nil {
		return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	hs, err := e.hookset(key)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	caller := e.sessionCaller()
	pc := hooks.PoolContext{Caller: caller, Key: key, ID: p.Key.ID()}
	liquidityDelta := types.CloneAmount(params.LiquidityDelta)
	adding := liquidityDelta.Sign() >= 0

	if hs != nil {
		if adding && hs.BeforeAddLiquidity != nil {
			if err := hs.BeforeAddLiquidity.BeforeAddLiquidity(ctx, pc, params); err != nil {
				return types.BalanceDelta{}, fmt.Errorf("settle: before-add-liquidity hook: %w", err)
			}
		}
		if !adding && hs.BeforeRemoveLiquidity != nil {
			if err := hs.BeforeRemoveLiquidity.BeforeRemoveLiquidity(ctx, pc, params); err != nil {
				return types.BalanceDelta{}, fmt.Errorf("settle: before-remove-liquidity hook: %w", err)
			}
		}
	}

	pos := p.UpsertPosition(caller.String(), params.Salt)
	if liquidityDelta.Sign() < 0 {
		need := new(big.Int).Neg(liquidityDelta)
		if pos.Liquidity.Cmp(need) < 0 {
			return types.BalanceDelta{}, fmt.Errorf("%w: position holds %s, removing %s",
				ErrInsufficientLiquidity, pos.Liquidity, need)
		}
	}

	// Fees accrued since the last touch are settled to the caller before the
	// principal moves.
	fee0, fee1 := p.SettleFees(pos)
	fees := types.NewBalanceDelta(fee0, fee1)

	principal := types.ZeroBalanceDelta()
	if liquidityDelta.Sign() != 0 {
		amount0, amount1, err := e.pricing.LiquidityAmounts(curveState(p), liquidityDelta)
		if err != nil {
			return types.BalanceDelta{}, fmt.Errorf("settle: pricing: %w", err)
		}
		// LiquidityAmounts carries the liquidity sign: adding yields positive
		// amounts the caller owes, removing yields negative amounts owed back.
		principal = types.NewBalanceDelta(amount0, amount1).Negate()

		pos.Liquidity.Add(pos.Liquidity, liquidityDelta)
		p.Liquidity.Add(p.Liquidity, liquidityDelta)
		p.Touch()
	}
	if pos.Liquidity.Sign() == 0 {
		p.DropPosition(caller.String(), params.Salt)
	}

	callerDelta := principal.Add(fees)

	if hs != nil {
		claimed, err := dispatchLiquidityPostHook(ctx, hs, pc, params, adding, callerDelta)
		if err != nil {
			return types.BalanceDelta{}, err
		}
		if claimed != nil {
			norm := types.NewBalanceDelta(claimed.Amount0, claimed.Amount1)
			if err := checkFeeClaim(norm, fees); err != nil {
				return types.BalanceDelta{}, err
			}
			callerDelta = callerDelta.Sub(norm)
		}
	}

	if err := types.CheckAmount(callerDelta.Amount0); err != nil {
		return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrDeltaOverflow, err)
	}
	if err := types.CheckAmount(callerDelta.Amount1); err != nil {
		return types.BalanceDelta{}, fmt.Errorf("%w: %v", ErrDeltaOverflow, err)
	}
	if err := e.applyDelta(caller, key.Asset0, callerDelta.Amount0); err != nil {
		return types.BalanceDelta{}, err
	}
	if err := e.applyDelta(caller, key.Asset1, callerDelta.Amount1); err != nil {
		return types.BalanceDelta{}, err
	}

	e.logger.Debug("liquidity modified",
		slog.String("pool_id", pc.ID.String()),
		slog.String("liquidity_delta", liquidityDelta.String()),
		slog.String("amount0", callerDelta.Amount0.String()),
		slog.String("amount1", callerDelta.Amount1.String()),
	)
	return callerDelta, nil
}

// dispatchLiquidityPostHook runs the matching post-hook. It returns the
// extension's fee claim when the delta variant ran, nil otherwise.
func dispatchLiquidityPostHook(ctx context.Context, hs *hooks.Hookset, pc hooks.PoolContext, params pool.LiquidityParams, adding bool, delta types.BalanceDelta) (*types.BalanceDelta, error) {
	if adding {
		if hs.AfterAddLiquidityDelta != nil {
			claimed, err := hs.AfterAddLiquidityDelta.AfterAddLiquidityDelta(ctx, pc, params, delta)
			if err != nil {
				return nil, fmt.Errorf("settle: after-add-liquidity hook: %w", err)
			}
			return &claimed, nil
		}
		if hs.AfterAddLiquidity != nil {
			if err := hs.AfterAddLiquidity.AfterAddLiquidity(ctx, pc, params, delta); err != nil {
				return nil, fmt.Errorf("settle: after-add-liquidity hook: %w", err)
			}
		}
		return nil, nil
	}

	if hs.AfterRemoveLiquidityDelta != nil {
		claimed, err := hs.AfterRemoveLiquidityDelta.AfterRemoveLiquidityDelta(ctx, pc, params, delta)
		if err != nil {
			return nil, fmt.Errorf("settle: after-remove-liquidity hook: %w", err)
		}
		return &claimed, nil
	}
	if hs.AfterRemoveLiquidity != nil {
		if err := hs.AfterRemoveLiquidity.AfterRemoveLiquidity(ctx, pc, params, delta); err != nil {
			return nil, fmt.Errorf("settle: after-remove-liquidity hook: %w", err)
		}
	}
	return nil, nil
}

// checkFeeClaim validates that an extension's fee claim stays within the
// fees actually accrued, leg by leg.
func checkFeeClaim(claimed, fees types.BalanceDelta) error {
	for _, leg := range []struct {
		claimed *big.Int
		fee     *big.Int
		name    string
	}{
		{claimed.Amount0, fees.Amount0, "amount0"},
		{claimed.Amount1, fees.Amount1, "amount1"},
	} {
		c := types.CloneAmount(leg.claimed)
		if c.Sign() < 0 || c.Cmp(types.CloneAmount(leg.fee)) > 0 {
			return fmt.Errorf("%w: %s claim %s exceeds accrued fees %s",
				ErrInvalidExtensionDelta, leg.name, c, leg.fee)
		}
	}
	return nil
}
