package settle

import (
	"fmt"
	"math/big"
	"time"

	"github.com/meridex/settle/claims"
	"github.com/meridex/settle/id"
	"github.com/meridex/settle/pool"
	"github.com/meridex/settle/store"
	"github.com/meridex/settle/types"
)

// exportCheckpoint flattens committed state into a checkpoint. It runs only
// after a session has closed, so no transient deltas or reserve baselines
// need to be captured.
func (e *Engine) exportCheckpoint(seq uint64) *store.Checkpoint {
	balances, supplies := e.claims.Export()

	cp := &store.Checkpoint{
		Sequence:  seq,
		CreatedAt: time.Now().UTC(),
		Claims:    make([]store.ClaimRecord, 0, len(balances)),
		Supplies:  make([]store.SupplyRecord, 0, len(supplies)),
		Pools:     make([]store.PoolRecord, 0, len(e.pools)),
	}
	for _, b := range balances {
		cp.Claims = append(cp.Claims, store.ClaimRecord{
			Holder: b.Holder,
			Asset:  string(b.Asset),
			Amount: b.Amount.String(),
		})
	}
	for _, s := range supplies {
		cp.Supplies = append(cp.Supplies, store.SupplyRecord{
			Asset:  string(s.Asset),
			Amount: s.Amount.String(),
		})
	}
	for pid, p := range e.pools {
		rec := store.PoolRecord{
			ID:             pid.String(),
			Asset0:         string(p.Key.Asset0),
			Asset1:         string(p.Key.Asset1),
			Fee:            p.Key.Fee,
			Spacing:        p.Key.Spacing,
			Extension:      p.Key.Extension.String(),
			SqrtPriceX96:   p.SqrtPriceX96.String(),
			Liquidity:      p.Liquidity.String(),
			FeeGrowth0X128: p.FeeGrowth0X128.String(),
			FeeGrowth1X128: p.FeeGrowth1X128.String(),
		}
		for _, pos := range p.ExportPositions() {
			rec.Positions = append(rec.Positions, store.PositionRecord{
				Owner:              pos.Owner,
				Salt:               pos.Salt,
				Liquidity:          pos.Liquidity.String(),
				FeeGrowthLast0X128: pos.FeeGrowthLast0X128.String(),
				FeeGrowthLast1X128: pos.FeeGrowthLast1X128.String(),
			})
		}
		cp.Pools = append(cp.Pools, rec)
	}
	return cp
}

// restoreCheckpoint replaces committed state with the checkpoint contents.
// Extension registrations are runtime-only: a restored pool keeps its
// extension binding, and the extension must be re-registered before the pool
// is usable again.
func (e *Engine) restoreCheckpoint(cp *store.Checkpoint) error {
	balances := make([]claims.Record, 0, len(cp.Claims))
	for _, r := range cp.Claims {
		amount, err := parseAmount(r.Amount)
		if err != nil {
			return fmt.Errorf("settle: restore claim %s/%s: %w", r.Holder, r.Asset, err)
		}
		balances = append(balances, claims.Record{Holder: r.Holder, Asset: types.Asset(r.Asset), Amount: amount})
	}
	supplies := make([]claims.SupplyRecord, 0, len(cp.Supplies))
	for _, r := range cp.Supplies {
		amount, err := parseAmount(r.Amount)
		if err != nil {
			return fmt.Errorf("settle: restore supply %s: %w", r.Asset, err)
		}
		supplies = append(supplies, claims.SupplyRecord{Asset: types.Asset(r.Asset), Amount: amount})
	}

	pools := make(map[pool.ID]*pool.Pool, len(cp.Pools))
	for _, r := range cp.Pools {
		p, err := restorePool(r)
		if err != nil {
			return err
		}
		pools[p.Key.ID()] = p
	}

	if err := e.claims.Import(balances, supplies); err != nil {
		return err
	}
	e.pools = pools
	e.mu.Lock()
	e.sequence = cp.Sequence
	e.mu.Unlock()
	return nil
}

func restorePool(r store.PoolRecord) (*pool.Pool, error) {
	key := pool.Key{
		Asset0:  types.Asset(r.Asset0),
		Asset1:  types.Asset(r.Asset1),
		Fee:     r.Fee,
		Spacing: r.Spacing,
	}
	if r.Extension != "" {
		extID, err := id.ParseExtensionID(r.Extension)
		if err != nil {
			return nil, fmt.Errorf("settle: restore pool %s: %w", r.ID, err)
		}
		key.Extension = extID
	}

	price, err := parseAmount(r.SqrtPriceX96)
	if err != nil {
		return nil, fmt.Errorf("settle: restore pool %s price: %w", r.ID, err)
	}
	liquidity, err := parseAmount(r.Liquidity)
	if err != nil {
		return nil, fmt.Errorf("settle: restore pool %s liquidity: %w", r.ID, err)
	}
	growth0, err := parseAmount(r.FeeGrowth0X128)
	if err != nil {
		return nil, fmt.Errorf("settle: restore pool %s fee growth: %w", r.ID, err)
	}
	growth1, err := parseAmount(r.FeeGrowth1X128)
	if err != nil {
		return nil, fmt.Errorf("settle: restore pool %s fee growth: %w", r.ID, err)
	}

	p := pool.New(key)
	p.SqrtPriceX96.Set(price)
	p.Liquidity.Set(liquidity)
	p.FeeGrowth0X128.Set(growth0)
	p.FeeGrowth1X128.Set(growth1)

	for _, posRec := range r.Positions {
		liq, err := parseAmount(posRec.Liquidity)
		if err != nil {
			return nil, fmt.Errorf("settle: restore position %s in pool %s: %w", posRec.Owner, r.ID, err)
		}
		last0, err := parseAmount(posRec.FeeGrowthLast0X128)
		if err != nil {
			return nil, fmt.Errorf("settle: restore position %s in pool %s: %w", posRec.Owner, r.ID, err)
		}
		last1, err := parseAmount(posRec.FeeGrowthLast1X128)
		if err != nil {
			return nil, fmt.Errorf("settle: restore position %s in pool %s: %w", posRec.Owner, r.ID, err)
		}
		p.RestorePosition(pool.PositionExport{
			Owner:              posRec.Owner,
			Salt:               posRec.Salt,
			Liquidity:          liq,
			FeeGrowthLast0X128: last0,
			FeeGrowthLast1X128: last1,
		})
	}
	return p, nil
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
