package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/meridex/settle/store"
)

type checkpointModel struct {
	grove.BaseModel `grove:"table:settle_checkpoints"`

	Sequence  uint64          `grove:"sequence,pk"`
	CreatedAt time.Time       `grove:"created_at"`
	Claims    json.RawMessage `grove:"claims,type:jsonb"`
	Supplies  json.RawMessage `grove:"supplies,type:jsonb"`
	Pools     json.RawMessage `grove:"pools,type:jsonb"`
}

func toCheckpointModel(cp *store.Checkpoint) (*checkpointModel, error) {
	claims, err := json.Marshal(cp.Claims)
	if err != nil {
		return nil, fmt.Errorf("settle/postgres: encode claims: %w", err)
	}
	supplies, err := json.Marshal(cp.Supplies)
	if err != nil {
		return nil, fmt.Errorf("settle/postgres: encode supplies: %w", err)
	}
	pools, err := json.Marshal(cp.Pools)
	if err != nil {
		return nil, fmt.Errorf("settle/postgres: encode pools: %w", err)
	}

	return &checkpointModel{
		Sequence:  cp.Sequence,
		CreatedAt: cp.CreatedAt,
		Claims:    claims,
		Supplies:  supplies,
		Pools:     pools,
	}, nil
}

func fromCheckpointModel(m *checkpointModel) (*store.Checkpoint, error) {
	cp := &store.Checkpoint{
		Sequence:  m.Sequence,
		CreatedAt: m.CreatedAt,
	}
	if len(m.Claims) > 0 {
		if err := json.Unmarshal(m.Claims, &cp.Claims); err != nil {
			return nil, fmt.Errorf("settle/postgres: decode claims: %w", err)
		}
	}
	if len(m.Supplies) > 0 {
		if err := json.Unmarshal(m.Supplies, &cp.Supplies); err != nil {
			return nil, fmt.Errorf("settle/postgres: decode supplies: %w", err)
		}
	}
	if len(m.Pools) > 0 {
		if err := json.Unmarshal(m.Pools, &cp.Pools); err != nil {
			return nil, fmt.Errorf("settle/postgres: decode pools: %w", err)
		}
	}
	return cp, nil
}
