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

// Donate credits amount0 and amount1 to the pool's fee growth, paid by the
// session caller. The pool must have active liquidity to receive the
// donation. Donation hooks are notification-only; they observe but never
// adjust the amounts.
//
// A failed donation marks the session failed: the session rolls back at
// close even if the caller ignores the returned error.
func (e *Engine) Donate(ctx context.Context, key pool.Key, amount0, amount1 *big.Int) (types.BalanceDelta, error) {
	d, err := e.donate(ctx, key, amount0, amount1)
	if err != nil {
		return types.BalanceDelta{}, e.fail(err)
	}
	return d, nil
}

func (e *Engine) donate(ctx context.Context, key pool.Key, amount0, amount1 *big.Int) (types.BalanceDelta, error) {
	if err := e.requireSession(); err != nil {
		return types.BalanceDelta{}, err
	}

	p, err := e.lookupPool(key)
	if err != nil {
		return types.BalanceDelta{}, err
	}
	if err := checkDonation(amount0); err != nil {
		return types.BalanceDelta{}, err
	}
	if err := checkDonation(amount1); err != nil {
		return types.BalanceDelta{}, err
	}
	if p.Liquidity.Sign() == 0 {
		return types.BalanceDelta{}, fmt.Errorf("%w: pool %s has no liquidity to donate to", ErrNoLiquidity, p.Key.ID())
	}

	hs, err := e.hookset(key)
	if err != nil {
		return types.BalanceDelta{}, err
	}

	caller := e.sessionCaller()
	pc := hooks.PoolContext{Caller: caller, Key: key, ID: p.Key.ID()}

	if hs != nil && hs.BeforeDonate != nil {
		if err := hs.BeforeDonate.BeforeDonate(ctx, pc, amount0, amount1); err != nil {
			return types.BalanceDelta{}, fmt.Errorf("settle: before-donate hook: %w", err)
		}
	}

	if err := p.AccrueFees(amount0, amount1); err != nil {
		return types.BalanceDelta{}, err
	}

	callerDelta := types.NewBalanceDelta(amount0, amount1).Negate()
	if err := e.applyDelta(caller, key.Asset0, callerDelta.Amount0); err != nil {
		return types.BalanceDelta{}, err
	}
	if err := e.applyDelta(caller, key.Asset1, callerDelta.Amount1); err != nil {
		return types.BalanceDelta{}, err
	}

	if hs != nil && hs.AfterDonate != nil {
		if err := hs.AfterDonate.AfterDonate(ctx, pc, amount0, amount1); err != nil {
			return types.BalanceDelta{}, fmt.Errorf("settle: after-donate hook: %w", err)
		}
	}

	e.logger.Debug("donation applied",
		slog.String("pool_id", pc.ID.String()),
		slog.String("amount0", callerDelta.Amount0.String()),
		slog.String("amount1", callerDelta.Amount1.String()),
	)
	return callerDelta, nil
}

func checkDonation(amount *big.Int) error {
	if amount != nil && amount.Sign() < 0 {
		return fmt.Errorf("%w: negative donation %s", ErrInvalidAmount, amount)
	}
	if err := types.CheckAmount(amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return nil
}
