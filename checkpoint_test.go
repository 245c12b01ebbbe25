package settle_test

import (
	"context"
	"math/big"
	"testing"

	settle "github.com/meridex/settle"
	"github.com/meridex/settle/id"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/store/memory"
)

func TestCheckpointRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	e := newTestEngine(settle.WithStore(st))
	if err := e.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	key := testKey()
	lp := id.NewAccountID()
	if _, err := e.InitializePool(ctx, lp, key, sqrtPriceOne()); err != nil {
		t.Fatal(err)
	}

	runSession(t, e, lp, func(sctx context.Context) error {
		if _, err := e.ModifyLiquidity(sctx, key, pool.LiquidityParams{LiquidityDelta: big.NewInt(1000)}); err != nil {
			return err
		}
		if err := e.Mint(lp, assetA, big.NewInt(50)); err != nil {
			return err
		}
		if err := settleDeposit(e, assetA, 1050); err != nil {
			return err
		}
		return settleDeposit(e, assetB, 1000)
	})

	if got := st.SaveCount(); got != 1 {
		t.Fatalf("SaveCount() = %d, want 1 after one committed session", got)
	}
	if err := e.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	// A fresh engine over the same store resumes from the checkpoint.
	restored := newTestEngine(settle.WithStore(st))
	if err := restored.Start(ctx); err != nil {
		t.Fatalf("Start() on restored engine error = %v", err)
	}

	if got := restored.Sequence(); got != 1 {
		t.Errorf("Sequence() = %d, want 1", got)
	}
	p, err := restored.GetPool(key)
	if err != nil {
		t.Fatalf("GetPool() error = %v", err)
	}
	if p.Liquidity.Int64() != 1000 {
		t.Errorf("restored pool liquidity = %s, want 1000", p.Liquidity)
	}
	if p.SqrtPriceX96.Cmp(sqrtPriceOne()) != 0 {
		t.Errorf("restored pool price = %s, want %s", p.SqrtPriceX96, sqrtPriceOne())
	}
	if p.PositionCount() != 1 {
		t.Errorf("restored PositionCount() = %d, want 1", p.PositionCount())
	}

	if got := restored.ClaimBalanceOf(lp, assetA); got.Int64() != 50 {
		t.Errorf("restored claim balance = %s, want 50", got)
	}
	if got := restored.TotalSupply(assetA); got.Int64() != 50 {
		t.Errorf("restored supply = %s, want 50", got)
	}
}

func TestRollbackDoesNotCheckpoint(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	e := newTestEngine(settle.WithStore(st))
	if err := e.Start(ctx); err != nil {
		t.Fatal(err)
	}

	_, err := e.RunSession(ctx, id.NewAccountID(), nil, settle.ExecutorFunc(
		func(context.Context, []byte) ([]byte, error) {
			return nil, e.Mint(id.NewAccountID(), assetA, big.NewInt(1))
		}))
	if err == nil {
		t.Fatal("RunSession() succeeded with an unsettled delta")
	}

	if got := st.SaveCount(); got != 0 {
		t.Errorf("SaveCount() = %d after rollback, want 0", got)
	}
}

func TestStartWithEmptyStore(t *testing.T) {
	e := newTestEngine(settle.WithStore(memory.New()))
	if err := e.Start(context.Background()); err != nil {
		t.Fatalf("Start() with empty store error = %v", err)
	}
	if got := e.Sequence(); got != 0 {
		t.Errorf("Sequence() = %d, want 0", got)
	}
}
