package settle

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/meridex/settle/claims"
	"github.com/meridex/settle/delta"
	"github.com/meridex/settle/gateway"
	"github.com/meridex/settle/hooks"
	"github.com/meridex/settle/id"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/pricing"
	"github.com/meridex/settle/reserves"
	"github.com/meridex/settle/store"
	"github.com/meridex/settle/types"
)

// Engine is the flash-accounting settlement engine. All pool operations run
// inside a session opened by RunSession; the session commits only when every
// delta has returned to zero and rolls back otherwise.
//
// The engine admits one session at a time. Within a session, operations are
// expected from a single goroutine; cross-session concurrency is guarded by
// the session latch alone.
type Engine struct {
	logger  *slog.Logger
	store   store.Store
	pricing pricing.Engine
	gateway gateway.Gateway

	hooks    *hooks.Registry
	deltas   *delta.Ledger
	nonzero  delta.Counter
	claims   *claims.Ledger
	reserves *reserves.Tracker
	pools    map[pool.ID]*pool.Pool

	mu         sync.Mutex
	unlocked   bool
	caller     id.AccountID
	session    id.SessionID
	sessionErr error
	sequence   uint64

	withdrawals []withdrawal
}

type withdrawal struct {
	recipient string
	asset     types.Asset
	amount    *big.Int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStore enables checkpoint persistence. Without a store the engine is
// purely in-memory.
func WithStore(s store.Store) Option {
	return func(e *Engine) { e.store = s }
}

// WithPricing replaces the default constant-product curve.
func WithPricing(p pricing.Engine) Option {
	return func(e *Engine) {
		if p != nil {
			e.pricing = p
		}
	}
}

// WithGateway replaces the default in-memory bank gateway.
func WithGateway(g gateway.Gateway) Option {
	return func(e *Engine) {
		if g != nil {
			e.gateway = g
		}
	}
}

// New creates an engine with the given options applied over defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:  slog.Default(),
		pricing: pricing.NewConstantProduct(),
		gateway: gateway.NewBank(),
		deltas:  delta.NewLedger(),
		claims:  claims.NewLedger(),
		pools:   make(map[pool.ID]*pool.Pool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hooks = hooks.NewRegistry(e.logger)
	e.reserves = reserves.NewTracker(e.gateway)
	return e
}

// Start prepares the configured store and restores the latest checkpoint.
// With no store it is a no-op.
func (e *Engine) Start(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Migrate(ctx); err != nil {
		return fmt.Errorf("settle: migrate store: %w", err)
	}

	cp, err := e.store.LatestCheckpoint(ctx)
	if err != nil {
		if IsNotFound(err) {
			e.logger.Info("no checkpoint to restore, starting fresh")
			return nil
		}
		return fmt.Errorf("settle: load checkpoint: %w", err)
	}

	if err := e.restoreCheckpoint(cp); err != nil {
		return err
	}
	e.logger.Info("checkpoint restored",
		slog.Uint64("sequence", cp.Sequence),
		slog.Int("pools", len(cp.Pools)),
		slog.Int("claims", len(cp.Claims)),
	)
	return nil
}

// Stop closes the configured store. With no store it is a no-op.
func (e *Engine) Stop(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Close(ctx)
}

// Hooks returns the extension registry.
func (e *Engine) Hooks() *hooks.Registry { return e.hooks }

// Gateway returns the configured asset gateway.
func (e *Engine) Gateway() gateway.Gateway { return e.gateway }

// RegisterExtension registers ext with its declared permissions. Callable
// whether or not a session is active.
func (e *Engine) RegisterExtension(ext hooks.Extension, declared hooks.PermissionSet) (id.ExtensionID, error) {
	return e.hooks.Register(ext, declared)
}

// requireSession rejects operations outside an active session.
func (e *Engine) requireSession() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.unlocked {
		return ErrManagerLocked
	}
	return nil
}

// IsUnlocked reports whether a session is currently active.
func (e *Engine) IsUnlocked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.unlocked
}

// DeltaOf returns the outstanding delta for (caller, asset). Missing entries
// are zero.
func (e *Engine) DeltaOf(caller id.AccountID, asset types.Asset) *big.Int {
	return e.deltas.Get(caller, asset)
}

// NonzeroDeltaCount returns the number of outstanding nonzero deltas. It is
// zero whenever no session is active.
func (e *Engine) NonzeroDeltaCount() int {
	return e.nonzero.Count()
}

// ReserveOf returns the pending reserve baseline for asset. The second
// return is false when the asset is unsynced, which is distinct from a
// synced baseline of zero.
func (e *Engine) ReserveOf(asset types.Asset) (*big.Int, bool) {
	return e.reserves.ReserveOf(asset)
}

// ClaimBalanceOf returns holder's claim balance for asset.
func (e *Engine) ClaimBalanceOf(holder id.AccountID, asset types.Asset) *big.Int {
	return e.claims.BalanceOf(holder, asset)
}

// TotalSupply returns the outstanding claim supply for asset.
func (e *Engine) TotalSupply(asset types.Asset) *big.Int {
	return e.claims.TotalSupply(asset)
}

// Sequence returns the number of committed sessions.
func (e *Engine) Sequence() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sequence
}

// GetPool returns a copy of the pool state for key.
func (e *Engine) GetPool(key pool.Key) (*pool.Pool, error) {
	p, ok := e.pools[key.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, key.ID())
	}
	return p.Clone(), nil
}

// lookupPool returns the live pool for key, which must be initialized.
func (e *Engine) lookupPool(key pool.Key) (*pool.Pool, error) {
	p, ok := e.pools[key.ID()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, key.ID())
	}
	return p, nil
}

// hookset resolves the cached hookset for key's extension, or nil when the
// pool has none.
func (e *Engine) hookset(key pool.Key) (*hooks.Hookset, error) {
	if !key.HasExtension() {
		return nil, nil
	}
	return e.hooks.Get(key.Extension)
}

// applyDelta books amount against (caller, asset) on the session ledger.
func (e *Engine) applyDelta(caller id.AccountID, asset types.Asset, amount *big.Int) error {
	_, err := e.deltas.Apply(caller, asset, amount, &e.nonzero)
	return err
}
