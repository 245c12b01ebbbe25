// Package audithook bridges pool lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not depend on
// any particular audit system. Callers inject a RecorderFunc adapter that
// bridges to their backend at wiring time.
//
// The extension is notification-only: it observes operations after they
// execute and never returns deltas.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/meridex/settle/hooks"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/types"
)

// Compile-time interface checks.
var (
	_ hooks.Extension                = (*Extension)(nil)
	_ hooks.AfterInitializeHook      = (*Extension)(nil)
	_ hooks.AfterSwapHook            = (*Extension)(nil)
	_ hooks.AfterAddLiquidityHook    = (*Extension)(nil)
	_ hooks.AfterRemoveLiquidityHook = (*Extension)(nil)
	_ hooks.AfterDonateHook          = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement. It is
// defined locally so that this package carries no backend dependency —
// callers inject the concrete recorder at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension observes pool operations and emits audit events.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided
// Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements hooks.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// Permissions returns the permission set matching this extension's hooks,
// for passing to RegisterExtension.
func (e *Extension) Permissions() hooks.PermissionSet {
	return hooks.PermissionSet{
		AfterInitialize:      true,
		AfterSwap:            true,
		AfterAddLiquidity:    true,
		AfterRemoveLiquidity: true,
		AfterDonate:          true,
	}
}

// AfterInitialize implements hooks.AfterInitializeHook.
func (e *Extension) AfterInitialize(ctx context.Context, pc hooks.PoolContext, sqrtPriceX96 *big.Int) error {
	e.record(ctx, ActionPoolInitialized, SeverityInfo, pc,
		"sqrt_price_x96", sqrtPriceX96.String(),
		"fee", pc.Key.Fee,
	)
	return nil
}

// AfterSwap implements hooks.AfterSwapHook.
func (e *Extension) AfterSwap(ctx context.Context, pc hooks.PoolContext, params pool.SwapParams, delta types.BalanceDelta) error {
	e.record(ctx, ActionSwap, SeverityInfo, pc,
		"zero_for_one", params.ZeroForOne,
		"amount_specified", params.AmountSpecified.String(),
		"amount0", delta.Amount0.String(),
		"amount1", delta.Amount1.String(),
	)
	return nil
}

// AfterAddLiquidity implements hooks.AfterAddLiquidityHook.
func (e *Extension) AfterAddLiquidity(ctx context.Context, pc hooks.PoolContext, params pool.LiquidityParams, delta types.BalanceDelta) error {
	e.record(ctx, ActionLiquidityAdded, SeverityInfo, pc,
		"liquidity_delta", params.LiquidityDelta.String(),
		"amount0", delta.Amount0.String(),
		"amount1", delta.Amount1.String(),
	)
	return nil
}

// AfterRemoveLiquidity implements hooks.AfterRemoveLiquidityHook.
func (e *Extension) AfterRemoveLiquidity(ctx context.Context, pc hooks.PoolContext, params pool.LiquidityParams, delta types.BalanceDelta) error {
	e.record(ctx, ActionLiquidityRemoved, SeverityInfo, pc,
		"liquidity_delta", params.LiquidityDelta.String(),
		"amount0", delta.Amount0.String(),
		"amount1", delta.Amount1.String(),
	)
	return nil
}

// AfterDonate implements hooks.AfterDonateHook.
func (e *Extension) AfterDonate(ctx context.Context, pc hooks.PoolContext, amount0, amount1 *big.Int) error {
	e.record(ctx, ActionDonation, SeverityInfo, pc,
		"amount0", amount0.String(),
		"amount1", amount1.String(),
	)
	return nil
}

// record builds and sends an audit event if the action is enabled. Recorder
// failures are logged, never surfaced: auditing must not fail settlement.
func (e *Extension) record(ctx context.Context, action, severity string, pc hooks.PoolContext, kvPairs ...any) {
	if e.enabled != nil && !e.enabled[action] {
		return
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}
	meta["caller"] = pc.Caller.String()

	evt := &AuditEvent{
		Action:     action,
		Resource:   ResourcePool,
		Category:   CategorySettlement,
		ResourceID: pc.ID.String(),
		Metadata:   meta,
		Outcome:    OutcomeSuccess,
		Severity:   severity,
	}

	if err := e.recorder.Record(ctx, evt); err != nil {
		e.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"pool_id", pc.ID.String(),
			"error", err,
		)
	}
}
