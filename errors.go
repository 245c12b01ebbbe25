package settle

import (
	"errors"

	"github.com/meridex/settle/claims"
	"github.com/meridex/settle/delta"
	"github.com/meridex/settle/hooks"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/reserves"
	"github.com/meridex/settle/store"
)

// Session and pool errors.
var (
	// ErrManagerLocked is returned when a state-changing operation runs
	// outside an active session.
	ErrManagerLocked = errors.New("settle: manager is locked")

	// ErrAlreadyUnlocked is returned when a session is opened while another
	// is active. Sessions do not nest.
	ErrAlreadyUnlocked = errors.New("settle: session already active")

	// ErrCurrencyNotSettled is returned when a session body completes with
	// outstanding nonzero deltas. The session is rolled back.
	ErrCurrencyNotSettled = errors.New("settle: unsettled deltas at session close")

	// ErrInvalidExtensionDelta is returned when an extension's claimed delta
	// flips the swap direction or exceeds the fees it may claim.
	ErrInvalidExtensionDelta = errors.New("settle: invalid extension delta")

	// ErrPoolExists is returned when initializing a pool whose key is
	// already taken.
	ErrPoolExists = errors.New("settle: pool already initialized")

	// ErrPoolNotFound is returned when operating on an unknown pool.
	ErrPoolNotFound = errors.New("settle: pool not found")

	// ErrAssetsNotSorted is returned when a pool key's assets are not in
	// canonical order.
	ErrAssetsNotSorted = errors.New("settle: pool assets not sorted")

	// ErrInvalidFee is returned when a pool fee exceeds the maximum tier.
	ErrInvalidFee = errors.New("settle: invalid fee")

	// ErrInvalidPrice is returned when a starting price is zero or negative.
	ErrInvalidPrice = errors.New("settle: invalid starting price")

	// ErrInvalidAmount is returned for negative or out-of-range operation
	// amounts.
	ErrInvalidAmount = errors.New("settle: invalid amount")
)

// Re-exported component errors, so callers can match everything through this
// package.
var (
	// ErrDeltaOverflow is returned when a delta leaves the signed 128-bit
	// domain.
	ErrDeltaOverflow = delta.ErrOverflow

	// ErrReserveNotSynced is returned when settling an asset with no pending
	// reserve baseline.
	ErrReserveNotSynced = reserves.ErrNotSynced

	// ErrInsufficientClaims is returned when a burn or transfer exceeds the
	// holder's claim balance.
	ErrInsufficientClaims = claims.ErrInsufficientBalance

	// ErrUnauthorized is returned when the caller lacks operator rights over
	// the source holder.
	ErrUnauthorized = claims.ErrUnauthorized

	// ErrInvalidExtensionPermissions is returned when an extension's
	// declared permissions do not match its implementation.
	ErrInvalidExtensionPermissions = hooks.ErrInvalidPermissions

	// ErrExtensionNotFound is returned when a pool key names an unregistered
	// extension.
	ErrExtensionNotFound = hooks.ErrNotFound

	// ErrNoLiquidity is returned when an operation needs active liquidity
	// and the pool has none.
	ErrNoLiquidity = pool.ErrNoLiquidity

	// ErrInsufficientLiquidity is returned when removing more liquidity than
	// the position holds.
	ErrInsufficientLiquidity = pool.ErrInsufficientLiquidity

	// ErrCheckpointNotFound is returned when no checkpoint has been saved.
	ErrCheckpointNotFound = store.ErrNotFound
)

// IsLocked reports whether err means the operation needed an active session.
func IsLocked(err error) bool {
	return errors.Is(err, ErrManagerLocked)
}

// IsNotSettled reports whether err is a failed all-settled check.
func IsNotSettled(err error) bool {
	return errors.Is(err, ErrCurrencyNotSettled)
}

// IsOverflow reports whether err is a delta overflow.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrDeltaOverflow)
}

// IsNotFound reports whether err is any of the not-found conditions.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPoolNotFound) ||
		errors.Is(err, ErrExtensionNotFound) ||
		errors.Is(err, ErrCheckpointNotFound)
}

// IsUnauthorized reports whether err is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
