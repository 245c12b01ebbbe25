package claims

import (
	"errors"
	"math/big"
	"testing"

	"github.com/meridex/settle/id"
	"github.com/meridex/settle/types"
)

func TestMintBurnRoundTrip(t *testing.T) {
	l := NewLedger()
	holder := id.NewAccountID()
	asset := types.Asset("usdc")

	if err := l.Mint(holder, asset, big.NewInt(500)); err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if got := l.BalanceOf(holder, asset); got.Int64() != 500 {
		t.Errorf("BalanceOf() = %s, want 500", got)
	}
	if got := l.TotalSupply(asset); got.Int64() != 500 {
		t.Errorf("TotalSupply() = %s, want 500", got)
	}

	if err := l.Burn(holder, asset, big.NewInt(500)); err != nil {
		t.Fatalf("Burn() error = %v", err)
	}
	if got := l.BalanceOf(holder, asset); got.Sign() != 0 {
		t.Errorf("BalanceOf() after burn = %s, want 0", got)
	}
	if got := l.TotalSupply(asset); got.Sign() != 0 {
		t.Errorf("TotalSupply() after burn = %s, want 0", got)
	}
}

func TestBurnInsufficient(t *testing.T) {
	l := NewLedger()
	holder := id.NewAccountID()

	if err := l.Mint(holder, "usdc", big.NewInt(10)); err != nil {
		t.Fatal(err)
	}
	err := l.Burn(holder, "usdc", big.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("Burn() error = %v, want ErrInsufficientBalance", err)
	}
	if got := l.BalanceOf(holder, "usdc"); got.Int64() != 10 {
		t.Errorf("failed burn mutated balance: %s", got)
	}
}

func TestTransferAuthorization(t *testing.T) {
	l := NewLedger()
	owner := id.NewAccountID()
	operator := id.NewAccountID()
	recipient := id.NewAccountID()

	if err := l.Mint(owner, "usdc", big.NewInt(100)); err != nil {
		t.Fatal(err)
	}

	// A stranger may not move the owner's balance.
	err := l.Transfer(operator, owner, recipient, "usdc", big.NewInt(40))
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Transfer() error = %v, want ErrUnauthorized", err)
	}

	// The holder may always move its own balance.
	if err := l.Transfer(owner, owner, recipient, "usdc", big.NewInt(40)); err != nil {
		t.Fatalf("self transfer error = %v", err)
	}

	// An approved operator may move it too.
	l.SetOperator(owner, operator, true)
	if err := l.Transfer(operator, owner, recipient, "usdc", big.NewInt(60)); err != nil {
		t.Fatalf("operator transfer error = %v", err)
	}

	if got := l.BalanceOf(recipient, "usdc"); got.Int64() != 100 {
		t.Errorf("recipient balance = %s, want 100", got)
	}

	// Revocation takes effect immediately.
	l.SetOperator(owner, operator, false)
	if l.Authorized(operator, owner) {
		t.Error("operator still authorized after revocation")
	}
}

func TestTransferDoesNotTouchSupply(t *testing.T) {
	l := NewLedger()
	a := id.NewAccountID()
	b := id.NewAccountID()

	if err := l.Mint(a, "weth", big.NewInt(77)); err != nil {
		t.Fatal(err)
	}
	if err := l.Transfer(a, a, b, "weth", big.NewInt(77)); err != nil {
		t.Fatal(err)
	}
	if got := l.TotalSupply("weth"); got.Int64() != 77 {
		t.Errorf("TotalSupply() = %s, want 77", got)
	}
}

func TestInvalidAmounts(t *testing.T) {
	l := NewLedger()
	holder := id.NewAccountID()

	if err := l.Mint(holder, "usdc", big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Mint(-1) error = %v, want ErrInvalidAmount", err)
	}
	if err := l.Mint(holder, "usdc", nil); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Mint(nil) error = %v, want ErrInvalidAmount", err)
	}
}

func TestExportImport(t *testing.T) {
	l := NewLedger()
	a := id.NewAccountID()
	b := id.NewAccountID()

	if err := l.Mint(a, "usdc", big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := l.Mint(b, "weth", big.NewInt(5)); err != nil {
		t.Fatal(err)
	}

	balances, supplies := l.Export()

	restored := NewLedger()
	if err := restored.Import(balances, supplies); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if got := restored.BalanceOf(a, "usdc"); got.Int64() != 100 {
		t.Errorf("restored balance = %s, want 100", got)
	}
	if got := restored.TotalSupply("weth"); got.Int64() != 5 {
		t.Errorf("restored supply = %s, want 5", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := NewLedger()
	holder := id.NewAccountID()

	if err := l.Mint(holder, "usdc", big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	clone := l.Clone()
	if err := l.Burn(holder, "usdc", big.NewInt(100)); err != nil {
		t.Fatal(err)
	}

	if got := clone.BalanceOf(holder, "usdc"); got.Int64() != 100 {
		t.Errorf("clone balance = %s, want 100 despite burn on original", got)
	}
}
