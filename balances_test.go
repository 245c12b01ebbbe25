package settle_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	settle "github.com/meridex/settle"
	"github.com/meridex/settle/id"
)

func TestMintThenBurnAcrossSessions(t *testing.T) {
	e := newTestEngine()
	holder := id.NewAccountID()

	runSession(t, e, holder, func(context.Context) error {
		if err := e.Mint(holder, assetA, big.NewInt(100)); err != nil {
			return err
		}
		return settleDeposit(e, assetA, 100)
	})

	if got := e.ClaimBalanceOf(holder, assetA); got.Int64() != 100 {
		t.Fatalf("ClaimBalanceOf() = %s, want 100", got)
	}
	if got := e.TotalSupply(assetA); got.Int64() != 100 {
		t.Fatalf("TotalSupply() = %s, want 100", got)
	}

	runSession(t, e, holder, func(context.Context) error {
		if err := e.Burn(holder, assetA, big.NewInt(100)); err != nil {
			return err
		}
		return e.Take("holder-wallet", assetA, big.NewInt(100))
	})

	if got := e.TotalSupply(assetA); got.Sign() != 0 {
		t.Errorf("TotalSupply() = %s after burn, want 0", got)
	}
	if got := e.Gateway().BalanceOf(assetA); got.Sign() != 0 {
		t.Errorf("gateway balance = %s after payout, want 0", got)
	}
}

func TestBurnRequiresAuthorization(t *testing.T) {
	e := newTestEngine()
	holder := id.NewAccountID()
	operator := id.NewAccountID()

	runSession(t, e, holder, func(context.Context) error {
		if err := e.Mint(holder, assetA, big.NewInt(100)); err != nil {
			return err
		}
		return settleDeposit(e, assetA, 100)
	})

	// An unapproved caller may not burn the holder's claims.
	var burnErr error
	_, _ = e.RunSession(context.Background(), operator, nil, settle.ExecutorFunc(
		func(context.Context, []byte) ([]byte, error) {
			burnErr = e.Burn(holder, assetA, big.NewInt(100))
			return nil, burnErr
		}))
	if !errors.Is(burnErr, settle.ErrUnauthorized) {
		t.Fatalf("Burn() error = %v, want ErrUnauthorized", burnErr)
	}

	// After approval the operator can burn and take the freed balance.
	e.ApproveOperator(holder, operator, true)
	runSession(t, e, operator, func(context.Context) error {
		if err := e.Burn(holder, assetA, big.NewInt(100)); err != nil {
			return err
		}
		return e.Take("operator-wallet", assetA, big.NewInt(100))
	})

	if got := e.TotalSupply(assetA); got.Sign() != 0 {
		t.Errorf("TotalSupply() = %s after operator burn, want 0", got)
	}
}

func TestTransferClaims(t *testing.T) {
	e := newTestEngine()
	a := id.NewAccountID()
	b := id.NewAccountID()

	runSession(t, e, a, func(context.Context) error {
		if err := e.Mint(a, assetA, big.NewInt(100)); err != nil {
			return err
		}
		return settleDeposit(e, assetA, 100)
	})

	runSession(t, e, a, func(context.Context) error {
		return e.TransferClaims(a, b, assetA, big.NewInt(60))
	})

	if got := e.ClaimBalanceOf(a, assetA); got.Int64() != 40 {
		t.Errorf("sender balance = %s, want 40", got)
	}
	if got := e.ClaimBalanceOf(b, assetA); got.Int64() != 60 {
		t.Errorf("recipient balance = %s, want 60", got)
	}
	if got := e.TotalSupply(assetA); got.Int64() != 100 {
		t.Errorf("TotalSupply() = %s, want 100 unchanged by transfer", got)
	}
}

func TestSettleRequiresSync(t *testing.T) {
	e := newTestEngine()

	var settleErr error
	_, _ = e.RunSession(context.Background(), id.NewAccountID(), nil, settle.ExecutorFunc(
		func(context.Context, []byte) ([]byte, error) {
			_, settleErr = e.Settle(assetA)
			return nil, settleErr
		}))
	if !errors.Is(settleErr, settle.ErrReserveNotSynced) {
		t.Errorf("Settle() error = %v, want ErrReserveNotSynced", settleErr)
	}
}

func TestTakeRejectsNegativeAmount(t *testing.T) {
	e := newTestEngine()

	var takeErr error
	_, _ = e.RunSession(context.Background(), id.NewAccountID(), nil, settle.ExecutorFunc(
		func(context.Context, []byte) ([]byte, error) {
			takeErr = e.Take("wallet", assetA, big.NewInt(-1))
			return nil, takeErr
		}))
	if !errors.Is(takeErr, settle.ErrInvalidAmount) {
		t.Errorf("Take() error = %v, want ErrInvalidAmount", takeErr)
	}
}
