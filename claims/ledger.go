// Package claims implements the internal fungible claim-balance ledger.
// A claim stands in for an unsettled external asset: minting a claim lets a
// caller defer the physical transfer while keeping the session balanced.
// The package is pure balance bookkeeping; the engine is responsible for the
// matching delta-ledger adjustments on mint and burn.
package claims

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/meridex/settle/id"
	"github.com/meridex/settle/types"
)

var (
	// ErrInsufficientBalance is returned when a burn or transfer exceeds the
	// holder's claim balance.
	ErrInsufficientBalance = errors.New("claims: insufficient balance")

	// ErrUnauthorized is returned when the acting caller has no delegated
	// rights over the source holder's balance.
	ErrUnauthorized = errors.New("claims: caller not authorized for holder")

	// ErrInvalidAmount is returned for negative or out-of-range amounts.
	ErrInvalidAmount = errors.New("claims: invalid amount")
)

type balanceKey struct {
	holder string
	asset  types.Asset
}

type operatorKey struct {
	owner    string
	operator string
}

// Ledger is the process-wide claim-balance table with per-asset total supply
// and operator approvals. It is mutated only by the engine under the
// single-active-session discipline, so it carries no locking of its own.
type Ledger struct {
	balances  map[balanceKey]*big.Int
	supply    map[types.Asset]*big.Int
	operators map[operatorKey]bool
}

// NewLedger creates an empty claim-balance ledger.
func NewLedger() *Ledger {
	return &Ledger{
		balances:  make(map[balanceKey]*big.Int),
		supply:    make(map[types.Asset]*big.Int),
		operators: make(map[operatorKey]bool),
	}
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if err := types.CheckAmount(amount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return nil
}

// BalanceOf returns holder's claim balance for asset. Missing entries are zero.
func (l *Ledger) BalanceOf(holder id.AccountID, asset types.Asset) *big.Int {
	if v, ok := l.balances[balanceKey{holder.String(), asset}]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// TotalSupply returns the outstanding claim supply for asset.
func (l *Ledger) TotalSupply(asset types.Asset) *big.Int {
	if v, ok := l.supply[asset]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Mint increases to's claim balance and the asset's total supply.
func (l *Ledger) Mint(to id.AccountID, asset types.Asset, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.credit(to, asset, amount)
	l.addSupply(asset, amount)
	return nil
}

// Burn decreases from's claim balance and the asset's total supply.
func (l *Ledger) Burn(from id.AccountID, asset types.Asset, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := l.debit(from, asset, amount); err != nil {
		return err
	}
	l.addSupply(asset, new(big.Int).Neg(amount))
	return nil
}

// Transfer moves claim balance from one holder to another. Supply and the
// delta ledger are unaffected. The caller must be the source holder or an
// approved operator for it.
func (l *Ledger) Transfer(caller, from, to id.AccountID, asset types.Asset, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if !l.Authorized(caller, from) {
		return fmt.Errorf("%w: %s over %s", ErrUnauthorized, caller, from)
	}
	if err := l.debit(from, asset, amount); err != nil {
		return err
	}
	l.credit(to, asset, amount)
	return nil
}

// SetOperator grants or revokes operator rights over owner's balances.
func (l *Ledger) SetOperator(owner, operator id.AccountID, approved bool) {
	k := operatorKey{owner.String(), operator.String()}
	if approved {
		l.operators[k] = true
	} else {
		delete(l.operators, k)
	}
}

// Authorized reports whether caller may move holder's balances.
func (l *Ledger) Authorized(caller, holder id.AccountID) bool {
	if caller == holder {
		return true
	}
	return l.operators[operatorKey{holder.String(), caller.String()}]
}

func (l *Ledger) credit(holder id.AccountID, asset types.Asset, amount *big.Int) {
	k := balanceKey{holder.String(), asset}
	current, ok := l.balances[k]
	if !ok {
		current = new(big.Int)
	}
	l.balances[k] = new(big.Int).Add(current, amount)
}

func (l *Ledger) debit(holder id.AccountID, asset types.Asset, amount *big.Int) error {
	k := balanceKey{holder.String(), asset}
	current, ok := l.balances[k]
	if !ok || current.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s %s, need %s", ErrInsufficientBalance,
			holder, l.BalanceOf(holder, asset), asset, amount)
	}
	next := new(big.Int).Sub(current, amount)
	if next.Sign() == 0 {
		delete(l.balances, k)
	} else {
		l.balances[k] = next
	}
	return nil
}

func (l *Ledger) addSupply(asset types.Asset, amount *big.Int) {
	current, ok := l.supply[asset]
	if !ok {
		current = new(big.Int)
	}
	next := new(big.Int).Add(current, amount)
	if next.Sign() == 0 {
		delete(l.supply, asset)
	} else {
		l.supply[asset] = next
	}
}

// Clone returns a deep copy of the ledger, used for session snapshots.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		balances:  make(map[balanceKey]*big.Int, len(l.balances)),
		supply:    make(map[types.Asset]*big.Int, len(l.supply)),
		operators: make(map[operatorKey]bool, len(l.operators)),
	}
	for k, v := range l.balances {
		c.balances[k] = new(big.Int).Set(v)
	}
	for k, v := range l.supply {
		c.supply[k] = new(big.Int).Set(v)
	}
	for k, v := range l.operators {
		c.operators[k] = v
	}
	return c
}

// Record is one committed claim balance, used for checkpointing.
type Record struct {
	Holder string
	Asset  types.Asset
	Amount *big.Int
}

// SupplyRecord is one committed per-asset supply total, used for checkpointing.
type SupplyRecord struct {
	Asset  types.Asset
	Amount *big.Int
}

// Export returns the committed balances and supplies in no particular order.
func (l *Ledger) Export() ([]Record, []SupplyRecord) {
	balances := make([]Record, 0, len(l.balances))
	for k, v := range l.balances {
		balances = append(balances, Record{
			Holder: k.holder,
			Asset:  k.asset,
			Amount: new(big.Int).Set(v),
		})
	}
	supplies := make([]SupplyRecord, 0, len(l.supply))
	for k, v := range l.supply {
		supplies = append(supplies, SupplyRecord{Asset: k, Amount: new(big.Int).Set(v)})
	}
	return balances, supplies
}

// Import replaces the ledger contents with the given committed records.
// Operator approvals are not part of checkpoints and are left untouched.
func (l *Ledger) Import(balances []Record, supplies []SupplyRecord) error {
	next := make(map[balanceKey]*big.Int, len(balances))
	for _, r := range balances {
		if err := checkAmount(r.Amount); err != nil {
			return fmt.Errorf("claims: import %s/%s: %w", r.Holder, r.Asset, err)
		}
		next[balanceKey{r.Holder, r.Asset}] = new(big.Int).Set(r.Amount)
	}
	supply := make(map[types.Asset]*big.Int, len(supplies))
	for _, r := range supplies {
		if err := checkAmount(r.Amount); err != nil {
			return fmt.Errorf("claims: import supply %s: %w", r.Asset, err)
		}
		supply[r.Asset] = new(big.Int).Set(r.Amount)
	}
	l.balances = next
	l.supply = supply
	return nil
}
