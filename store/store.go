// Package store defines the checkpoint persistence interface and its shared
// record types. Checkpoints capture committed state only: claim balances,
// per-asset supplies and pool state as of a closed session. Sessions in
// flight are never persisted, so restoring the latest checkpoint always
// yields a consistent, fully settled ledger.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no checkpoint has been saved yet.
var ErrNotFound = errors.New("store: checkpoint not found")

// Store persists engine checkpoints.
type Store interface {
	// SaveCheckpoint writes cp. Sequence numbers are monotonically
	// increasing; implementations may prune older checkpoints.
	SaveCheckpoint(ctx context.Context, cp *Checkpoint) error

	// LatestCheckpoint returns the highest-sequence checkpoint, or
	// ErrNotFound when none exists.
	LatestCheckpoint(ctx context.Context) (*Checkpoint, error)

	// Migrate prepares the backing schema.
	Migrate(ctx context.Context) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Checkpoint is a committed-state snapshot. All amounts are decimal strings
// so that backends without 128-bit integer types can store them losslessly.
type Checkpoint struct {
	Sequence  uint64         `json:"sequence" bson:"sequence"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	Claims    []ClaimRecord  `json:"claims" bson:"claims"`
	Supplies  []SupplyRecord `json:"supplies" bson:"supplies"`
	Pools     []PoolRecord   `json:"pools" bson:"pools"`
}

// ClaimRecord is one holder's claim balance.
type ClaimRecord struct {
	Holder string `json:"holder" bson:"holder"`
	Asset  string `json:"asset" bson:"asset"`
	Amount string `json:"amount" bson:"amount"`
}

// SupplyRecord is one asset's outstanding claim supply.
type SupplyRecord struct {
	Asset  string `json:"asset" bson:"asset"`
	Amount string `json:"amount" bson:"amount"`
}

// PoolRecord is one pool's committed state.
type PoolRecord struct {
	ID             string           `json:"id" bson:"id"`
	Asset0         string           `json:"asset0" bson:"asset0"`
	Asset1         string           `json:"asset1" bson:"asset1"`
	Fee            uint32           `json:"fee" bson:"fee"`
	Spacing        int32            `json:"spacing" bson:"spacing"`
	Extension      string           `json:"extension,omitempty" bson:"extension,omitempty"`
	SqrtPriceX96   string           `json:"sqrt_price_x96" bson:"sqrt_price_x96"`
	Liquidity      string           `json:"liquidity" bson:"liquidity"`
	FeeGrowth0X128 string           `json:"fee_growth0_x128" bson:"fee_growth0_x128"`
	FeeGrowth1X128 string           `json:"fee_growth1_x128" bson:"fee_growth1_x128"`
	Positions      []PositionRecord `json:"positions" bson:"positions"`
}

// PositionRecord is one position inside a pool record.
type PositionRecord struct {
	Owner              string `json:"owner" bson:"owner"`
	Salt               string `json:"salt,omitempty" bson:"salt,omitempty"`
	Liquidity          string `json:"liquidity" bson:"liquidity"`
	FeeGrowthLast0X128 string `json:"fee_growth_last0_x128" bson:"fee_growth_last0_x128"`
	FeeGrowthLast1X128 string `json:"fee_growth_last1_x128" bson:"fee_growth_last1_x128"`
}
