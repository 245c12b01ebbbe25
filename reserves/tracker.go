// Package reserves snapshots externally held balances so that settlement can
// compute how much a caller actually deposited. A baseline is written by Sync,
// consumed exactly once by Settle, and the synthetic native asset is exempt:
// it has no external balance and always reports as unsynced.
package reserves

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/meridex/settle/types"
)

// ErrNotSynced is returned when settling an asset with no pending baseline.
// A legitimately zero deposit settles fine; only a missing Sync fails.
var ErrNotSynced = errors.New("reserves: asset not synced")

// BalanceSource reports the ledger's externally observed balance of an asset.
// The transfer gateway implements it.
type BalanceSource interface {
	BalanceOf(asset types.Asset) *big.Int
}

// Tracker holds the pending reserve baselines.
type Tracker struct {
	source  BalanceSource
	pending map[types.Asset]*big.Int
}

// NewTracker creates a tracker reading balances from source.
func NewTracker(source BalanceSource) *Tracker {
	return &Tracker{
		source:  source,
		pending: make(map[types.Asset]*big.Int),
	}
}

// Sync snapshots the current external balance of asset as the settlement
// baseline. Syncing the native asset is a no-op: it is exempt and never
// carries a baseline. A repeated Sync overwrites the previous baseline.
func (t *Tracker) Sync(asset types.Asset) {
	if asset.IsNative() {
		return
	}
	t.pending[asset] = new(big.Int).Set(t.source.BalanceOf(asset))
}

// Settle returns balanceNow - baseline for asset and clears the baseline.
// It fails with ErrNotSynced when no baseline is pending, which includes the
// native asset.
func (t *Tracker) Settle(asset types.Asset) (*big.Int, error) {
	baseline, ok := t.pending[asset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotSynced, asset)
	}
	delete(t.pending, asset)

	received := new(big.Int).Sub(t.source.BalanceOf(asset), baseline)
	return received, nil
}

// ReserveOf returns the pending baseline for asset. The second return is
// false when the asset is unsynced, distinguishing that state from a synced
// baseline of zero.
func (t *Tracker) ReserveOf(asset types.Asset) (*big.Int, bool) {
	baseline, ok := t.pending[asset]
	if !ok {
		return nil, false
	}
	return new(big.Int).Set(baseline), true
}

// Clone returns a deep copy of the tracker sharing the same balance source,
// used for session snapshots.
func (t *Tracker) Clone() *Tracker {
	c := NewTracker(t.source)
	for k, v := range t.pending {
		c.pending[k] = new(big.Int).Set(v)
	}
	return c
}
