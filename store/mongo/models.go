package mongo

import (
	"time"

	"github.com/meridex/settle/store"
)

type checkpointModel struct {
	Sequence  uint64               `bson:"sequence"`
	CreatedAt time.Time            `bson:"created_at"`
	Claims    []store.ClaimRecord  `bson:"claims"`
	Supplies  []store.SupplyRecord `bson:"supplies"`
	Pools     []store.PoolRecord   `bson:"pools"`
}

func toCheckpointModel(cp *store.Checkpoint) *checkpointModel {
	return &checkpointModel{
		Sequence:  cp.Sequence,
		CreatedAt: cp.CreatedAt,
		Claims:    cp.Claims,
		Supplies:  cp.Supplies,
		Pools:     cp.Pools,
	}
}

func fromCheckpointModel(m *checkpointModel) *store.Checkpoint {
	return &store.Checkpoint{
		Sequence:  m.Sequence,
		CreatedAt: m.CreatedAt,
		Claims:    m.Claims,
		Supplies:  m.Supplies,
		Pools:     m.Pools,
	}
}
