package hooks

import "strings"

// PermissionSet declares which lifecycle points an extension participates in.
// The declared set must exactly match what the extension's type implements;
// Registry.Register rejects any mismatch.
type PermissionSet struct {
	BeforeInitialize      bool
	AfterInitialize       bool
	BeforeAddLiquidity    bool
	AfterAddLiquidity     bool
	BeforeRemoveLiquidity bool
	AfterRemoveLiquidity  bool
	BeforeSwap            bool
	AfterSwap             bool
	BeforeDonate          bool
	AfterDonate           bool

	// Delta permissions. Each implies the matching notification point is
	// superseded: a delta hook is dispatched instead of, not in addition
	// to, its notification counterpart.
	BeforeSwapReturnsDelta           bool
	AfterSwapReturnsDelta            bool
	AfterAddLiquidityReturnsDelta    bool
	AfterRemoveLiquidityReturnsDelta bool
}

// Any reports whether at least one permission is set.
func (p PermissionSet) Any() bool {
	return p != PermissionSet{}
}

// String lists the enabled permissions, for logs and error messages.
func (p PermissionSet) String() string {
	var on []string
	add := func(set bool, name string) {
		if set {
			on = append(on, name)
		}
	}
	add(p.BeforeInitialize, "before_initialize")
	add(p.AfterInitialize, "after_initialize")
	add(p.BeforeAddLiquidity, "before_add_liquidity")
	add(p.AfterAddLiquidity, "after_add_liquidity")
	add(p.BeforeRemoveLiquidity, "before_remove_liquidity")
	add(p.AfterRemoveLiquidity, "after_remove_liquidity")
	add(p.BeforeSwap, "before_swap")
	add(p.AfterSwap, "after_swap")
	add(p.BeforeDonate, "before_donate")
	add(p.AfterDonate, "after_donate")
	add(p.BeforeSwapReturnsDelta, "before_swap_returns_delta")
	add(p.AfterSwapReturnsDelta, "after_swap_returns_delta")
	add(p.AfterAddLiquidityReturnsDelta, "after_add_liquidity_returns_delta")
	add(p.AfterRemoveLiquidityReturnsDelta, "after_remove_liquidity_returns_delta")
	if len(on) == 0 {
		return "none"
	}
	return strings.Join(on, ",")
}

// DeriveCapabilities inspects ext's type and returns the permission set it
// actually implements. This runs once per extension, at registration.
func DeriveCapabilities(ext Extension) PermissionSet {
	var p PermissionSet
	_, p.BeforeInitialize = ext.(BeforeInitializeHook)
	_, p.AfterInitialize = ext.(AfterInitializeHook)
	_, p.BeforeAddLiquidity = ext.(BeforeAddLiquidityHook)
	_, p.AfterAddLiquidity = ext.(AfterAddLiquidityHook)
	_, p.BeforeRemoveLiquidity = ext.(BeforeRemoveLiquidityHook)
	_, p.AfterRemoveLiquidity = ext.(AfterRemoveLiquidityHook)
	_, p.BeforeSwap = ext.(BeforeSwapHook)
	_, p.AfterSwap = ext.(AfterSwapHook)
	_, p.BeforeDonate = ext.(BeforeDonateHook)
	_, p.AfterDonate = ext.(AfterDonateHook)
	_, p.BeforeSwapReturnsDelta = ext.(BeforeSwapDeltaHook)
	_, p.AfterSwapReturnsDelta = ext.(AfterSwapDeltaHook)
	_, p.AfterAddLiquidityReturnsDelta = ext.(AfterAddLiquidityDeltaHook)
	_, p.AfterRemoveLiquidityReturnsDelta = ext.(AfterRemoveLiquidityDeltaHook)
	return p
}
