package app

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"estates_console/internal/domain"
)

// SnapshotKey is the single durable key holding the Cached Collection.
const SnapshotKey = "imperial_estates_db"

// SnapshotCache serializes the whole collection under one key. Storage
// problems are logged and read as "nothing cached"; they never fail the
// caller.
type SnapshotCache struct {
	store domain.Store
	key   string
}

func NewSnapshotCache(s domain.Store) *SnapshotCache {
	return &SnapshotCache{store: s, key: SnapshotKey}
}

// Load returns the persisted collection, or nil when nothing usable is stored.
func (c *SnapshotCache) Load(ctx context.Context) []domain.Listing {
	b, ok, err := c.store.Get(ctx, c.key)
	if err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("snapshot load failed; treating as empty")
		return nil
	}
	if !ok || len(b) == 0 {
		return nil
	}
	var ls []domain.Listing
	if err := json.Unmarshal(b, &ls); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("snapshot is corrupt; treating as empty")
		return nil
	}
	return ls
}

// Save reports whether the collection reached the store.
func (c *SnapshotCache) Save(ctx context.Context, ls []domain.Listing) bool {
	if ls == nil {
		ls = []domain.Listing{}
	}
	b, err := json.Marshal(ls)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot encode failed")
		return false
	}
	if err := c.store.Set(ctx, c.key, b); err != nil {
		log.Warn().Err(err).Str("key", c.key).Int("count", len(ls)).Msg("snapshot save failed")
		return false
	}
	return true
}
