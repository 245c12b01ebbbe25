package gateway

import (
	"errors"
	"math/big"
	"testing"
)

func TestDepositWithdraw(t *testing.T) {
	b := NewBank()

	if err := b.Deposit("usdc", big.NewInt(1000)); err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if got := b.BalanceOf("usdc"); got.Int64() != 1000 {
		t.Errorf("BalanceOf() = %s, want 1000", got)
	}

	if err := b.Withdraw("wallet", "usdc", big.NewInt(400)); err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if got := b.BalanceOf("usdc"); got.Int64() != 600 {
		t.Errorf("BalanceOf() = %s, want 600", got)
	}
}

func TestWithdrawInsufficient(t *testing.T) {
	b := NewBank()

	if err := b.Deposit("usdc", big.NewInt(10)); err != nil {
		t.Fatal(err)
	}
	err := b.Withdraw("wallet", "usdc", big.NewInt(11))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Withdraw() error = %v, want ErrInsufficientFunds", err)
	}
	if got := b.BalanceOf("usdc"); got.Int64() != 10 {
		t.Errorf("failed withdraw mutated balance: %s", got)
	}
}

func TestWithdrawUnknownAsset(t *testing.T) {
	b := NewBank()

	err := b.Withdraw("wallet", "weth", big.NewInt(1))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Withdraw() error = %v, want ErrInsufficientFunds", err)
	}
}

func TestInvalidAmounts(t *testing.T) {
	b := NewBank()

	if err := b.Deposit("usdc", nil); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Deposit(nil) error = %v, want ErrInvalidAmount", err)
	}
	if err := b.Deposit("usdc", big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Deposit(-1) error = %v, want ErrInvalidAmount", err)
	}
	if err := b.Withdraw("wallet", "usdc", big.NewInt(-1)); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Withdraw(-1) error = %v, want ErrInvalidAmount", err)
	}

	overflow := new(big.Int).Lsh(big.NewInt(1), 256)
	if err := b.Deposit("usdc", overflow); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Deposit(2^256) error = %v, want ErrInvalidAmount", err)
	}
}

func TestBalanceOfReturnsCopy(t *testing.T) {
	b := NewBank()

	if err := b.Deposit("usdc", big.NewInt(100)); err != nil {
		t.Fatal(err)
	}
	got := b.BalanceOf("usdc")
	got.SetInt64(0)
	if b.BalanceOf("usdc").Int64() != 100 {
		t.Error("BalanceOf() exposed internal state")
	}
}
