// Package observability provides a metrics extension that records pool
// operation counts and sizes via a caller-supplied MetricFactory.
package observability

import (
	"context"
	"math/big"

	"github.com/meridex/settle/hooks"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/types"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ hooks.Extension                = (*MetricsExtension)(nil)
	_ hooks.AfterInitializeHook      = (*MetricsExtension)(nil)
	_ hooks.AfterSwapHook            = (*MetricsExtension)(nil)
	_ hooks.AfterAddLiquidityHook    = (*MetricsExtension)(nil)
	_ hooks.AfterRemoveLiquidityHook = (*MetricsExtension)(nil)
	_ hooks.AfterDonateHook          = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records pool operation metrics. Attach it to pools whose
// activity should be tracked.
type MetricsExtension struct {
	factory MetricFactory

	PoolsInitialized Counter

	SwapsExecuted Counter
	SwapAmount0   Histogram
	SwapAmount1   Histogram

	LiquidityAdded   Counter
	LiquidityRemoved Counter

	DonationsApplied Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided
// MetricFactory. Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		PoolsInitialized: factory.Counter("settle.pool.initialized"),

		SwapsExecuted: factory.Counter("settle.swap.executed"),
		SwapAmount0:   factory.Histogram("settle.swap.amount0"),
		SwapAmount1:   factory.Histogram("settle.swap.amount1"),

		LiquidityAdded:   factory.Counter("settle.liquidity.added"),
		LiquidityRemoved: factory.Counter("settle.liquidity.removed"),

		DonationsApplied: factory.Counter("settle.donation.applied"),
	}
}

// Name implements hooks.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// Permissions returns the permission set matching this extension's hooks,
// for passing to RegisterExtension.
func (m *MetricsExtension) Permissions() hooks.PermissionSet {
	return hooks.PermissionSet{
		AfterInitialize:      true,
		AfterSwap:            true,
		AfterAddLiquidity:    true,
		AfterRemoveLiquidity: true,
		AfterDonate:          true,
	}
}

// AfterInitialize implements hooks.AfterInitializeHook.
func (m *MetricsExtension) AfterInitialize(_ context.Context, _ hooks.PoolContext, _ *big.Int) error {
	m.PoolsInitialized.Inc()
	return nil
}

// AfterSwap implements hooks.AfterSwapHook.
func (m *MetricsExtension) AfterSwap(_ context.Context, _ hooks.PoolContext, _ pool.SwapParams, delta types.BalanceDelta) error {
	m.SwapsExecuted.Inc()
	m.SwapAmount0.Observe(asFloat(delta.Amount0))
	m.SwapAmount1.Observe(asFloat(delta.Amount1))
	return nil
}

// AfterAddLiquidity implements hooks.AfterAddLiquidityHook.
func (m *MetricsExtension) AfterAddLiquidity(_ context.Context, _ hooks.PoolContext, _ pool.LiquidityParams, _ types.BalanceDelta) error {
	m.LiquidityAdded.Inc()
	return nil
}

// AfterRemoveLiquidity implements hooks.AfterRemoveLiquidityHook.
func (m *MetricsExtension) AfterRemoveLiquidity(_ context.Context, _ hooks.PoolContext, _ pool.LiquidityParams, _ types.BalanceDelta) error {
	m.LiquidityRemoved.Inc()
	return nil
}

// AfterDonate implements hooks.AfterDonateHook.
func (m *MetricsExtension) AfterDonate(_ context.Context, _ hooks.PoolContext, _, _ *big.Int) error {
	m.DonationsApplied.Inc()
	return nil
}

func asFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
