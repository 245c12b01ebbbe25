// Package delta tracks per-(caller, asset) signed obligations accrued during
// a settlement session. Positive means the ledger owes the caller; negative
// means the caller owes the ledger. A session may only close once every entry
// is zero again.
package delta

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/meridex/settle/id"
	"github.com/meridex/settle/types"
)

// ErrOverflow is returned when applying an amount would push an entry outside
// the signed 128-bit domain.
var ErrOverflow = errors.New("delta: amount overflows signed 128-bit range")

// Counter counts entries that are currently nonzero. It is owned by the
// engine and passed by reference into every ledger mutation so that the
// all-settled check at session close is a single comparison.
type Counter struct {
	n int
}

// Count returns the number of outstanding nonzero entries.
func (c *Counter) Count() int { return c.n }

func (c *Counter) increment() { c.n++ }

func (c *Counter) decrement() {
	if c.n == 0 {
		panic("delta: nonzero counter underflow")
	}
	c.n--
}

type key struct {
	caller string
	asset  types.Asset
}

// Ledger is the per-(caller, asset) obligation table. Entries are created
// lazily on the first nonzero write and removed when they return to zero, so
// the table only ever holds outstanding obligations.
type Ledger struct {
	entries map[key]*big.Int
}

// NewLedger creates an empty delta ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[key]*big.Int)}
}

// Get returns the current delta for (caller, asset). Missing entries are zero.
func (l *Ledger) Get(caller id.AccountID, asset types.Asset) *big.Int {
	if v, ok := l.entries[key{caller.String(), asset}]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// Apply adds amount to the stored delta for (caller, asset) and returns the
// new value. The counter is adjusted on the zero/nonzero transition only:
// incremented when an entry leaves zero, decremented when it returns to zero,
// untouched otherwise. Applying zero to a missing entry creates nothing.
func (l *Ledger) Apply(caller id.AccountID, asset types.Asset, amount *big.Int, nonzero *Counter) (*big.Int, error) {
	if amount == nil || amount.Sign() == 0 {
		return l.Get(caller, asset), nil
	}

	k := key{caller.String(), asset}
	current, exists := l.entries[k]
	if !exists {
		current = new(big.Int)
	}

	next := new(big.Int).Add(current, amount)
	if !types.InRange(next) {
		return nil, fmt.Errorf("%w: %s + %s for (%s, %s)", ErrOverflow, current, amount, caller, asset)
	}

	wasZero := current.Sign() == 0
	isZero := next.Sign() == 0

	switch {
	case wasZero && !isZero:
		nonzero.increment()
	case !wasZero && isZero:
		nonzero.decrement()
	}

	if isZero {
		delete(l.entries, k)
	} else {
		l.entries[k] = next
	}

	return new(big.Int).Set(next), nil
}

// Len returns the number of outstanding entries. It always matches the
// counter maintained through Apply.
func (l *Ledger) Len() int { return len(l.entries) }

// Clone returns a deep copy of the ledger, used for session snapshots.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{entries: make(map[key]*big.Int, len(l.entries))}
	for k, v := range l.entries {
		c.entries[k] = new(big.Int).Set(v)
	}
	return c
}
