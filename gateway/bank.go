package gateway

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/holiman/uint256"

	"github.com/meridex/settle/types"
)

// Bank is an in-memory Gateway keeping unsigned 256-bit balances per asset.
// It serves tests and single-process deployments.
type Bank struct {
	mu       sync.RWMutex
	balances map[types.Asset]*uint256.Int
}

// NewBank creates an empty in-memory gateway.
func NewBank() *Bank {
	return &Bank{balances: make(map[types.Asset]*uint256.Int)}
}

var _ Gateway = (*Bank)(nil)

func toUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, fmt.Errorf("%w: %s exceeds 256 bits", ErrInvalidAmount, amount)
	}
	return v, nil
}

// Deposit implements Gateway.
func (b *Bank) Deposit(asset types.Asset, amount *big.Int) error {
	v, err := toUint256(amount)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.balances[asset]
	if !ok {
		current = uint256.NewInt(0)
		b.balances[asset] = current
	}
	current.Add(current, v)
	return nil
}

// Withdraw implements Gateway. The in-memory bank has no transport, so
// releasing funds to recipient just burns them from the held balance.
func (b *Bank) Withdraw(recipient string, asset types.Asset, amount *big.Int) error {
	v, err := toUint256(amount)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current, ok := b.balances[asset]
	if !ok || current.Lt(v) {
		return fmt.Errorf("%w: %s of %s for %s", ErrInsufficientFunds, amount, asset, recipient)
	}
	current.Sub(current, v)
	if current.IsZero() {
		delete(b.balances, asset)
	}
	return nil
}

// BalanceOf implements Gateway.
func (b *Bank) BalanceOf(asset types.Asset) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if v, ok := b.balances[asset]; ok {
		return v.ToBig()
	}
	return new(big.Int)
}
