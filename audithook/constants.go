package audithook

// Audit action identifiers.
const (
	ActionPoolInitialized  = "settle.pool.initialized"
	ActionSwap             = "settle.swap.executed"
	ActionLiquidityAdded   = "settle.liquidity.added"
	ActionLiquidityRemoved = "settle.liquidity.removed"
	ActionDonation         = "settle.donation.applied"
)

// Resource and category identifiers.
const (
	ResourcePool       = "pool"
	CategorySettlement = "settlement"
)

// Severity levels.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)
