package pool

import (
	"errors"
	"math/big"

	"github.com/meridex/settle/types"
)

var (
	// ErrNotInitialized is returned when operating on a pool whose price has
	// not been set.
	ErrNotInitialized = errors.New("pool: not initialized")

	// ErrNoLiquidity is returned when an operation needs active liquidity and
	// the pool has none.
	ErrNoLiquidity = errors.New("pool: no liquidity")

	// ErrInsufficientLiquidity is returned when removing more liquidity than a
	// position holds.
	ErrInsufficientLiquidity = errors.New("pool: insufficient position liquidity")
)

func errInvalidPoolID(s string) error {
	return errors.New("pool: invalid pool id " + s)
}

// Q128 scales per-unit fee growth accumulators.
var Q128 = new(big.Int).Lsh(big.NewInt(1), 128)

type positionKey struct {
	owner string
	salt  string
}

// Position is one owner's liquidity stake in a pool, keyed by (owner, salt).
type Position struct {
	Liquidity *big.Int

	// Fee growth per unit of liquidity at the position's last touch,
	// Q128-scaled. Fees owed are (current - last) * liquidity / Q128.
	FeeGrowthLast0X128 *big.Int
	FeeGrowthLast1X128 *big.Int
}

func newPosition() *Position {
	return &Position{
		Liquidity:          new(big.Int),
		FeeGrowthLast0X128: new(big.Int),
		FeeGrowthLast1X128: new(big.Int),
	}
}

func (p *Position) clone() *Position {
	return &Position{
		Liquidity:          new(big.Int).Set(p.Liquidity),
		FeeGrowthLast0X128: new(big.Int).Set(p.FeeGrowthLast0X128),
		FeeGrowthLast1X128: new(big.Int).Set(p.FeeGrowthLast1X128),
	}
}

// Pool is the priced state of one asset pair. All amounts live in the signed
// 128-bit domain enforced by the engine.
type Pool struct {
	Key Key
	types.Entity

	// SqrtPriceX96 is the current price of asset1 in asset0, square-rooted
	// and Q96-scaled. Zero until initialization.
	SqrtPriceX96 *big.Int

	// Liquidity currently active in the pool.
	Liquidity *big.Int

	// Cumulative fees per unit of liquidity, Q128-scaled.
	FeeGrowth0X128 *big.Int
	FeeGrowth1X128 *big.Int

	positions map[positionKey]*Position
}

// New creates an uninitialized pool for key.
func New(key Key) *Pool {
	return &Pool{
		Key:            key,
		Entity:         types.NewEntity(),
		SqrtPriceX96:   new(big.Int),
		Liquidity:      new(big.Int),
		FeeGrowth0X128: new(big.Int),
		FeeGrowth1X128: new(big.Int),
		positions:      make(map[positionKey]*Position),
	}
}

// IsInitialized reports whether the pool price has been set.
func (p *Pool) IsInitialized() bool {
	return p.SqrtPriceX96.Sign() != 0
}

// Initialize sets the starting price. Idempotent checks belong to the engine.
func (p *Pool) Initialize(sqrtPriceX96 *big.Int) {
	p.SqrtPriceX96 = new(big.Int).Set(sqrtPriceX96)
	p.Touch()
}

// Position returns the position for (owner, salt), or nil when it does not
// exist. The returned value is live pool state, not a copy.
func (p *Pool) Position(owner, salt string) *Position {
	return p.positions[positionKey{owner, salt}]
}

// UpsertPosition returns the position for (owner, salt), creating it if
// missing.
func (p *Pool) UpsertPosition(owner, salt string) *Position {
	k := positionKey{owner, salt}
	pos, ok := p.positions[k]
	if !ok {
		pos = newPosition()
		p.positions[k] = pos
	}
	return pos
}

// DropPosition removes an emptied position.
func (p *Pool) DropPosition(owner, salt string) {
	delete(p.positions, positionKey{owner, salt})
}

// PositionCount returns the number of live positions.
func (p *Pool) PositionCount() int { return len(p.positions) }

// AccrueFees folds donated or swap-fee amounts into the per-liquidity growth
// accumulators. The pool must have active liquidity.
func (p *Pool) AccrueFees(amount0, amount1 *big.Int) error {
	if p.Liquidity.Sign() == 0 {
		return ErrNoLiquidity
	}
	if amount0 != nil && amount0.Sign() > 0 {
		growth := new(big.Int).Mul(amount0, Q128)
		growth.Quo(growth, p.Liquidity)
		p.FeeGrowth0X128.Add(p.FeeGrowth0X128, growth)
	}
	if amount1 != nil && amount1.Sign() > 0 {
		growth := new(big.Int).Mul(amount1, Q128)
		growth.Quo(growth, p.Liquidity)
		p.FeeGrowth1X128.Add(p.FeeGrowth1X128, growth)
	}
	p.Touch()
	return nil
}

// SettleFees computes the fees owed to pos since its last touch and advances
// its growth markers to the current accumulators.
func (p *Pool) SettleFees(pos *Position) (fee0, fee1 *big.Int) {
	fee0 = feesOwed(p.FeeGrowth0X128, pos.FeeGrowthLast0X128, pos.Liquidity)
	fee1 = feesOwed(p.FeeGrowth1X128, pos.FeeGrowthLast1X128, pos.Liquidity)
	pos.FeeGrowthLast0X128.Set(p.FeeGrowth0X128)
	pos.FeeGrowthLast1X128.Set(p.FeeGrowth1X128)
	return fee0, fee1
}

func feesOwed(current, last, liquidity *big.Int) *big.Int {
	if liquidity.Sign() == 0 {
		return new(big.Int)
	}
	owed := new(big.Int).Sub(current, last)
	owed.Mul(owed, liquidity)
	owed.Quo(owed, Q128)
	return owed
}

// PositionExport is one position flattened for persistence.
type PositionExport struct {
	Owner              string
	Salt               string
	Liquidity          *big.Int
	FeeGrowthLast0X128 *big.Int
	FeeGrowthLast1X128 *big.Int
}

// ExportPositions returns all live positions in no particular order.
func (p *Pool) ExportPositions() []PositionExport {
	out := make([]PositionExport, 0, len(p.positions))
	for k, v := range p.positions {
		out = append(out, PositionExport{
			Owner:              k.owner,
			Salt:               k.salt,
			Liquidity:          new(big.Int).Set(v.Liquidity),
			FeeGrowthLast0X128: new(big.Int).Set(v.FeeGrowthLast0X128),
			FeeGrowthLast1X128: new(big.Int).Set(v.FeeGrowthLast1X128),
		})
	}
	return out
}

// RestorePosition reinstates a persisted position.
func (p *Pool) RestorePosition(exp PositionExport) {
	pos := p.UpsertPosition(exp.Owner, exp.Salt)
	pos.Liquidity.Set(exp.Liquidity)
	pos.FeeGrowthLast0X128.Set(exp.FeeGrowthLast0X128)
	pos.FeeGrowthLast1X128.Set(exp.FeeGrowthLast1X128)
}

// Clone returns a deep copy of the pool, used for session snapshots.
func (p *Pool) Clone() *Pool {
	c := &Pool{
		Key:            p.Key,
		Entity:         p.Entity,
		SqrtPriceX96:   new(big.Int).Set(p.SqrtPriceX96),
		Liquidity:      new(big.Int).Set(p.Liquidity),
		FeeGrowth0X128: new(big.Int).Set(p.FeeGrowth0X128),
		FeeGrowth1X128: new(big.Int).Set(p.FeeGrowth1X128),
		positions:      make(map[positionKey]*Position, len(p.positions)),
	}
	for k, v := range p.positions {
		c.positions[k] = v.clone()
	}
	return c
}
