// Package gateway abstracts the external asset custody the settlement engine
// moves value through. The engine never touches external balances directly;
// it withdraws through Take and observes deposits through BalanceOf.
package gateway

import (
	"errors"
	"math/big"

	"github.com/meridex/settle/types"
)

var (
	// ErrInsufficientFunds is returned when a withdrawal exceeds the held
	// balance.
	ErrInsufficientFunds = errors.New("gateway: insufficient funds")

	// ErrInvalidAmount is returned for negative or nil amounts.
	ErrInvalidAmount = errors.New("gateway: invalid amount")
)

// Gateway is the custody surface the engine depends on. BalanceOf doubles as
// the reserve tracker's balance source.
type Gateway interface {
	// Deposit credits the gateway's holdings of asset. Callers use this to
	// pay obligations before settling.
	Deposit(asset types.Asset, amount *big.Int) error

	// Withdraw debits the gateway's holdings of asset and releases the
	// funds to recipient.
	Withdraw(recipient string, asset types.Asset, amount *big.Int) error

	// BalanceOf returns the gateway's current holdings of asset.
	BalanceOf(asset types.Asset) *big.Int
}
