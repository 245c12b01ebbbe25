// Package mongo implements the checkpoint store on MongoDB via Grove ORM.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/meridex/settle/store"
)

const colCheckpoints = "settle_checkpoints"

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB

	// Keep retains at most this many checkpoints; older ones are pruned on
	// save. Zero keeps everything.
	Keep int64
}

// New creates a MongoDB checkpoint store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:   db,
		mdb:  mongodriver.Unwrap(db),
		Keep: 16,
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// SaveCheckpoint writes cp and prunes checkpoints beyond the retention
// window.
func (s *Store) SaveCheckpoint(ctx context.Context, cp *store.Checkpoint) error {
	m := toCheckpointModel(cp)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("settle/mongo: save checkpoint: %w", err)
	}

	if s.Keep > 0 && cp.Sequence > uint64(s.Keep) {
		cutoff := cp.Sequence - uint64(s.Keep)
		_, err := s.mdb.NewDelete((*checkpointModel)(nil)).
			Filter(bson.M{"sequence": bson.M{"$lt": cutoff}}).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("settle/mongo: prune checkpoints: %w", err)
		}
	}
	return nil
}

// LatestCheckpoint returns the highest-sequence checkpoint.
func (s *Store) LatestCheckpoint(ctx context.Context) (*store.Checkpoint, error) {
	var m checkpointModel
	err := s.mdb.NewFind(&m).
		Sort(bson.D{{Key: "sequence", Value: -1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("settle/mongo: latest checkpoint: %w", err)
	}
	return fromCheckpointModel(&m), nil
}

// Migrate creates the checkpoint collection indexes.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sequence", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	_, err := s.mdb.Collection(colCheckpoints).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("settle/mongo: migrate indexes: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
