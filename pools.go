package settle

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/meridex/settle/hooks"
	"github.com/meridex/settle/id"
	"github.com/meridex/settle/pool"
)

// InitializePool creates the pool for key at the given starting price.
// Initialization is callable with or without an active session; when done
// mid-session it participates in the session's rollback, and a failure marks
// the session failed.
func (e *Engine) InitializePool(ctx context.Context, caller id.AccountID, key pool.Key, sqrtPriceX96 *big.Int) (pool.ID, error) {
	pid, err := e.initializePool(ctx, caller, key, sqrtPriceX96)
	if err != nil {
		return pool.ID{}, e.fail(err)
	}
	return pid, nil
}

func (e *Engine) initializePool(ctx context.Context, caller id.AccountID, key pool.Key, sqrtPriceX96 *big.Int) (pool.ID, error) {
	if !key.Sorted() {
		return pool.ID{}, fmt.Errorf("%w: %s / %s", ErrAssetsNotSorted, key.Asset0, key.Asset1)
	}
	if key.Fee > pool.FeeMax {
		return pool.ID{}, fmt.Errorf("%w: %d exceeds max %d", ErrInvalidFee, key.Fee, pool.FeeMax)
	}
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return pool.ID{}, fmt.Errorf("%w: %s", ErrInvalidPrice, sqrtPriceX96)
	}

	hs, err := e.hookset(key)
	if err != nil {
		return pool.ID{}, err
	}

	pid := key.ID()
	if _, exists := e.pools[pid]; exists {
		return pool.ID{}, fmt.Errorf("%w: %s", ErrPoolExists, pid)
	}

	pc := hooks.PoolContext{Caller: caller, Key: key, ID: pid}
	if hs != nil && hs.BeforeInitialize != nil {
		if err := hs.BeforeInitialize.BeforeInitialize(ctx, pc, sqrtPriceX96); err != nil {
			return pool.ID{}, fmt.Errorf("settle: before-initialize hook: %w", err)
		}
	}

	p := pool.New(key)
	p.Initialize(sqrtPriceX96)
	e.pools[pid] = p

	if hs != nil && hs.AfterInitialize != nil {
		if err := hs.AfterInitialize.AfterInitialize(ctx, pc, sqrtPriceX96); err != nil {
			delete(e.pools, pid)
			return pool.ID{}, fmt.Errorf("settle: after-initialize hook: %w", err)
		}
	}

	e.logger.Info("pool initialized",
		slog.String("pool_id", pid.String()),
		slog.String("asset0", key.Asset0.String()),
		slog.String("asset1", key.Asset1.String()),
		slog.Uint64("fee", uint64(key.Fee)),
	)
	return pid, nil
}
