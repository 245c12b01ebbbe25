package settle

import (
	"fmt"
	"math/big"

	"github.com/meridex/settle/id"
	"github.com/meridex/settle/types"
)

// Mint issues claim tokens for asset to the recipient and books the backing
// obligation against the session caller: the caller now owes the ledger the
// minted amount of the underlying asset.
func (e *Engine) Mint(to id.AccountID, asset types.Asset, amount *big.Int) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	if err := e.claims.Mint(to, asset, amount); err != nil {
		return e.fail(err)
	}
	return e.fail(e.applyDelta(e.sessionCaller(), asset, new(big.Int).Neg(amount)))
}

// Burn retires claim tokens held by from and credits the session caller's
// delta with the freed underlying amount. The caller must be the holder or
// an approved operator.
func (e *Engine) Burn(from id.AccountID, asset types.Asset, amount *big.Int) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	caller := e.sessionCaller()
	if !e.claims.Authorized(caller, from) {
		return e.fail(fmt.Errorf("%w: %s over %s", ErrUnauthorized, caller, from))
	}
	if err := e.claims.Burn(from, asset, amount); err != nil {
		return e.fail(err)
	}
	return e.fail(e.applyDelta(caller, asset, types.CloneAmount(amount)))
}

// TransferClaims moves claim balance between holders. Deltas and supply are
// unaffected. The session caller must be the source holder or an approved
// operator.
func (e *Engine) TransferClaims(from, to id.AccountID, asset types.Asset, amount *big.Int) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	return e.fail(e.claims.Transfer(e.sessionCaller(), from, to, asset, amount))
}

// ApproveOperator grants or revokes operator rights over owner's claim
// balances. Approvals do not touch deltas and are callable outside sessions.
func (e *Engine) ApproveOperator(owner, operator id.AccountID, approved bool) {
	e.claims.SetOperator(owner, operator, approved)
}

// Sync snapshots the gateway's current balance of asset as the settlement
// baseline for a later Settle. Syncing the native asset is a no-op.
func (e *Engine) Sync(asset types.Asset) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	e.reserves.Sync(asset)
	return nil
}

// Settle measures what was deposited to the gateway since the last Sync of
// asset and credits it to the session caller's delta. The asset must have a
// pending baseline; settling unsynced assets fails with ErrReserveNotSynced.
func (e *Engine) Settle(asset types.Asset) (*big.Int, error) {
	if err := e.requireSession(); err != nil {
		return nil, err
	}
	received, err := e.reserves.Settle(asset)
	if err != nil {
		return nil, e.fail(err)
	}
	if err := types.CheckAmount(received); err != nil {
		return nil, e.fail(fmt.Errorf("%w: %v", ErrDeltaOverflow, err))
	}
	if err := e.applyDelta(e.sessionCaller(), asset, received); err != nil {
		return nil, e.fail(err)
	}
	return received, nil
}

// Take withdraws amount of asset to recipient, debited from the session
// caller's delta. The gateway withdrawal is buffered and flushed when the
// session commits, so a rolled-back session releases nothing.
func (e *Engine) Take(recipient string, asset types.Asset, amount *big.Int) error {
	if err := e.requireSession(); err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return e.fail(fmt.Errorf("%w: take %s", ErrInvalidAmount, amount))
	}
	if err := types.CheckAmount(amount); err != nil {
		return e.fail(fmt.Errorf("%w: %v", ErrInvalidAmount, err))
	}
	if err := e.applyDelta(e.sessionCaller(), asset, new(big.Int).Neg(amount)); err != nil {
		return e.fail(err)
	}

	e.mu.Lock()
	e.withdrawals = append(e.withdrawals, withdrawal{
		recipient: recipient,
		asset:     asset,
		amount:    new(big.Int).Set(amount),
	})
	e.mu.Unlock()
	return nil
}
