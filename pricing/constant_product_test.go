package pricing

import (
	"errors"
	"math/big"
	"testing"
)

func state(liquidity int64) State {
	return State{
		SqrtPriceX96: new(big.Int).Set(Q96),
		Liquidity:    big.NewInt(liquidity),
	}
}

func TestExactInputNoFee(t *testing.T) {
	c := NewConstantProduct()

	res, err := c.ComputeSwapStep(state(1000), Params{
		ZeroForOne:      true,
		AmountRemaining: big.NewInt(100),
	})
	if err != nil {
		t.Fatalf("ComputeSwapStep() error = %v", err)
	}

	if res.AmountIn.Int64() != 100 {
		t.Errorf("AmountIn = %s, want 100", res.AmountIn)
	}
	// out = 100 * 1000 / 1100
	if res.AmountOut.Int64() != 90 {
		t.Errorf("AmountOut = %s, want 90", res.AmountOut)
	}
	if res.FeeAmount.Sign() != 0 {
		t.Errorf("FeeAmount = %s, want 0", res.FeeAmount)
	}
	if res.LimitReached {
		t.Error("LimitReached = true without a limit")
	}

	// Selling asset0 moves the price down by L/(L+in).
	wantPrice := new(big.Int).Mul(Q96, big.NewInt(1000))
	wantPrice.Quo(wantPrice, big.NewInt(1100))
	if res.NewState.SqrtPriceX96.Cmp(wantPrice) != 0 {
		t.Errorf("new price = %s, want %s", res.NewState.SqrtPriceX96, wantPrice)
	}
}

func TestExactOutput(t *testing.T) {
	c := NewConstantProduct()

	res, err := c.ComputeSwapStep(state(1000), Params{
		ZeroForOne:      true,
		AmountRemaining: big.NewInt(-90),
	})
	if err != nil {
		t.Fatalf("ComputeSwapStep() error = %v", err)
	}

	// in = ceil(90 * 1000 / 910) = 99
	if res.AmountIn.Int64() != 99 {
		t.Errorf("AmountIn = %s, want 99", res.AmountIn)
	}
	if res.AmountOut.Int64() != 90 {
		t.Errorf("AmountOut = %s, want 90", res.AmountOut)
	}
}

func TestExactOutputExceedsReserve(t *testing.T) {
	c := NewConstantProduct()

	_, err := c.ComputeSwapStep(state(1000), Params{
		ZeroForOne:      true,
		AmountRemaining: big.NewInt(-1000),
	})
	if !errors.Is(err, ErrNoLiquidity) {
		t.Fatalf("ComputeSwapStep() error = %v, want ErrNoLiquidity", err)
	}
}

func TestFeeOnInput(t *testing.T) {
	c := NewConstantProduct()

	// 1% fee: 100 gross -> 1 fee -> 99 net -> out = 99*1000/1099 = 90
	res, err := c.ComputeSwapStep(state(1000), Params{
		ZeroForOne:      true,
		AmountRemaining: big.NewInt(100),
		FeePips:         10_000,
	})
	if err != nil {
		t.Fatal(err)
	}

	if res.AmountIn.Int64() != 100 {
		t.Errorf("AmountIn = %s, want 100", res.AmountIn)
	}
	if res.FeeAmount.Int64() != 1 {
		t.Errorf("FeeAmount = %s, want 1", res.FeeAmount)
	}
	if res.AmountOut.Int64() != 90 {
		t.Errorf("AmountOut = %s, want 90", res.AmountOut)
	}
}

func TestPriceLimitTruncatesToPartialFill(t *testing.T) {
	c := NewConstantProduct()

	// Limit at 95% of the current price. Full input of 100 would push the
	// price to ~90.9%, so the trade truncates: in = 1000*(1/19) = 52.
	limit := new(big.Int).Mul(Q96, big.NewInt(19))
	limit.Quo(limit, big.NewInt(20))

	res, err := c.ComputeSwapStep(state(1000), Params{
		ZeroForOne:        true,
		AmountRemaining:   big.NewInt(100),
		SqrtPriceLimitX96: limit,
	})
	if err != nil {
		t.Fatal(err)
	}

	if !res.LimitReached {
		t.Fatal("LimitReached = false, want true")
	}
	if res.NewState.SqrtPriceX96.Cmp(limit) != 0 {
		t.Errorf("new price = %s, want the limit %s", res.NewState.SqrtPriceX96, limit)
	}
	if res.AmountIn.Int64() != 52 {
		t.Errorf("AmountIn = %s, want 52", res.AmountIn)
	}
	// out = 52*1000/1052
	if res.AmountOut.Int64() != 49 {
		t.Errorf("AmountOut = %s, want 49", res.AmountOut)
	}
}

func TestNoLiquidity(t *testing.T) {
	c := NewConstantProduct()

	_, err := c.ComputeSwapStep(state(0), Params{
		ZeroForOne:      true,
		AmountRemaining: big.NewInt(100),
	})
	if !errors.Is(err, ErrNoLiquidity) {
		t.Fatalf("ComputeSwapStep() error = %v, want ErrNoLiquidity", err)
	}
}

func TestLiquidityAmounts(t *testing.T) {
	c := NewConstantProduct()

	// At sqrt price 2 (price 4), 1000 liquidity is 500 of asset0 and 2000
	// of asset1.
	s := State{
		SqrtPriceX96: new(big.Int).Mul(Q96, big.NewInt(2)),
		Liquidity:    big.NewInt(0),
	}

	amount0, amount1, err := c.LiquidityAmounts(s, big.NewInt(1000))
	if err != nil {
		t.Fatalf("LiquidityAmounts() error = %v", err)
	}
	if amount0.Int64() != 500 {
		t.Errorf("amount0 = %s, want 500", amount0)
	}
	if amount1.Int64() != 2000 {
		t.Errorf("amount1 = %s, want 2000", amount1)
	}

	// Removing mirrors the signs.
	amount0, amount1, err = c.LiquidityAmounts(s, big.NewInt(-1000))
	if err != nil {
		t.Fatal(err)
	}
	if amount0.Int64() != -500 || amount1.Int64() != -2000 {
		t.Errorf("negative delta amounts = %s, %s, want -500, -2000", amount0, amount1)
	}
}

func TestLiquidityAmountsRequiresPrice(t *testing.T) {
	c := NewConstantProduct()

	_, _, err := c.LiquidityAmounts(State{SqrtPriceX96: new(big.Int)}, big.NewInt(10))
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("LiquidityAmounts() error = %v, want ErrInvalidParams", err)
	}
}
