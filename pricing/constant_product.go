package pricing

import (
	"fmt"
	"math/big"
)

// Q96 scales square-root prices.
var Q96 = new(big.Int).Lsh(big.NewInt(1), 96)

const feeDenominator = 1_000_000

// ConstantProduct prices swaps against symmetric virtual reserves of size
// equal to the active liquidity. Fees are charged on the input leg. A price
// limit truncates the trade to a partial fill rather than failing it.
type ConstantProduct struct{}

// NewConstantProduct returns the reference curve.
func NewConstantProduct() *ConstantProduct { return &ConstantProduct{} }

var _ Engine = (*ConstantProduct)(nil)

// ComputeSwapStep implements Engine.
func (c *ConstantProduct) ComputeSwapStep(state State, params Params) (Result, error) {
	if state.Liquidity == nil || state.Liquidity.Sign() <= 0 {
		return Result{}, ErrNoLiquidity
	}
	if params.AmountRemaining == nil || params.AmountRemaining.Sign() == 0 {
		return Result{}, fmt.Errorf("%w: zero amount", ErrInvalidParams)
	}
	if params.FeePips >= feeDenominator {
		return Result{}, fmt.Errorf("%w: fee %d out of range", ErrInvalidParams, params.FeePips)
	}

	liquidity := state.Liquidity
	exactIn := params.AmountRemaining.Sign() > 0

	var netIn *big.Int
	if exactIn {
		gross := new(big.Int).Set(params.AmountRemaining)
		netIn = applyFee(gross, params.FeePips)
	} else {
		out := new(big.Int).Neg(params.AmountRemaining)
		if out.Cmp(liquidity) >= 0 {
			return Result{}, fmt.Errorf("%w: output %s exceeds reserve %s", ErrNoLiquidity, out, liquidity)
		}
		// in = ceil(out * L / (L - out))
		netIn = ceilDiv(new(big.Int).Mul(out, liquidity), new(big.Int).Sub(liquidity, out))
	}

	newPrice := priceAfter(state.SqrtPriceX96, liquidity, netIn, params.ZeroForOne)

	limited := false
	if limit := params.SqrtPriceLimitX96; limit != nil && limit.Sign() > 0 {
		crossed := (params.ZeroForOne && newPrice.Cmp(limit) < 0) ||
			(!params.ZeroForOne && newPrice.Cmp(limit) > 0)
		if crossed {
			netIn = inputToPrice(state.SqrtPriceX96, limit, liquidity, params.ZeroForOne)
			newPrice = new(big.Int).Set(limit)
			limited = true
		}
	}

	// out = in * L / (L + in)
	amountOut := new(big.Int).Mul(netIn, liquidity)
	amountOut.Quo(amountOut, new(big.Int).Add(liquidity, netIn))

	grossIn, fee := grossUp(netIn, params.FeePips)

	return Result{
		AmountIn:  grossIn,
		AmountOut: amountOut,
		FeeAmount: fee,
		NewState: State{
			SqrtPriceX96: newPrice,
			Liquidity:    new(big.Int).Set(liquidity),
		},
		LimitReached: limited,
	}, nil
}

// LiquidityAmounts implements Engine. At price sqrt(P), a liquidity stake L
// corresponds to L/sqrt(P) of asset0 and L*sqrt(P) of asset1.
func (c *ConstantProduct) LiquidityAmounts(state State, liquidityDelta *big.Int) (*big.Int, *big.Int, error) {
	if state.SqrtPriceX96 == nil || state.SqrtPriceX96.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: pool has no price", ErrInvalidParams)
	}
	if liquidityDelta == nil {
		return nil, nil, fmt.Errorf("%w: nil liquidity delta", ErrInvalidParams)
	}

	magnitude := new(big.Int).Abs(liquidityDelta)
	amount0 := new(big.Int).Mul(magnitude, Q96)
	amount0.Quo(amount0, state.SqrtPriceX96)
	amount1 := new(big.Int).Mul(magnitude, state.SqrtPriceX96)
	amount1.Quo(amount1, Q96)

	if liquidityDelta.Sign() < 0 {
		amount0.Neg(amount0)
		amount1.Neg(amount1)
	}
	return amount0, amount1, nil
}

// applyFee returns gross minus the input fee, rounding the fee up.
func applyFee(gross *big.Int, feePips uint32) *big.Int {
	if feePips == 0 {
		return new(big.Int).Set(gross)
	}
	fee := ceilDiv(new(big.Int).Mul(gross, big.NewInt(int64(feePips))), big.NewInt(feeDenominator))
	return new(big.Int).Sub(gross, fee)
}

// grossUp inverts applyFee: given the net input, it returns the gross input
// the caller must pay and the fee portion.
func grossUp(net *big.Int, feePips uint32) (gross, fee *big.Int) {
	if feePips == 0 {
		return new(big.Int).Set(net), new(big.Int)
	}
	gross = ceilDiv(new(big.Int).Mul(net, big.NewInt(feeDenominator)),
		big.NewInt(int64(feeDenominator-feePips)))
	fee = new(big.Int).Sub(gross, net)
	return gross, fee
}

// priceAfter moves the square-root price by the reserve ratio L/(L+in).
func priceAfter(sqrtPriceX96, liquidity, netIn *big.Int, zeroForOne bool) *big.Int {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() == 0 {
		return new(big.Int)
	}
	denom := new(big.Int).Add(liquidity, netIn)
	p := new(big.Int).Set(sqrtPriceX96)
	if zeroForOne {
		p.Mul(p, liquidity)
		p.Quo(p, denom)
	} else {
		p.Mul(p, denom)
		p.Quo(p, liquidity)
	}
	return p
}

// inputToPrice returns the net input that moves the price exactly to target.
func inputToPrice(sqrtPriceX96, target, liquidity *big.Int, zeroForOne bool) *big.Int {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() == 0 {
		return new(big.Int)
	}
	// zeroForOne:  target = p*L/(L+in)  =>  in = L*(p-target)/target
	// oneForZero:  target = p*(L+in)/L  =>  in = L*(target-p)/p
	in := new(big.Int)
	if zeroForOne {
		in.Sub(sqrtPriceX96, target)
		in.Mul(in, liquidity)
		in.Quo(in, target)
	} else {
		in.Sub(target, sqrtPriceX96)
		in.Mul(in, liquidity)
		in.Quo(in, sqrtPriceX96)
	}
	if in.Sign() < 0 {
		in.SetInt64(0)
	}
	return in
}

func ceilDiv(num, den *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}
