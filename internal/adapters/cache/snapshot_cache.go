package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/phenrril/bikeconfig/internal/domain"
)

var (
	_ domain.SnapshotSource      = (*SnapshotCache)(nil)
	_ domain.SnapshotInvalidator = (*SnapshotCache)(nil)
)

// SnapshotCache keeps whole snapshots in the cache keyed by a generation
// counter. Writers bump the counter, so a reader either sees the previous
// snapshot in full or the next one in full.
type SnapshotCache struct {
	cache  Cache
	source domain.SnapshotSource
	ttl    time.Duration
	log    zerolog.Logger
}

func NewSnapshotCache(c Cache, source domain.SnapshotSource, ttl time.Duration, log zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{cache: c, source: source, ttl: ttl, log: log}
}

func (s *SnapshotCache) genKey() string { return s.cache.GenerateKey("snapshot", "gen") }

func (s *SnapshotCache) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	gen, err := s.cache.Get(ctx, s.genKey())
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot cache unavailable, reading source")
		return s.source.LoadSnapshot(ctx)
	}
	if gen == "" {
		gen = "0"
	}
	key := s.cache.GenerateKey("snapshot", gen)

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("key", key).Msg("snapshot cache read failed, reading source")
		return s.source.LoadSnapshot(ctx)
	case raw != "":
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err == nil {
			return &snap, nil
		}
		s.log.Warn().Str("key", key).Msg("corrupt cached snapshot discarded")
	}

	snap, err := s.source.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return snap, nil
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("snapshot cache write failed")
	}
	return snap, nil
}

// Invalidate moves readers to a new generation; the old blob expires by TTL.
func (s *SnapshotCache) Invalidate(ctx context.Context) error {
	_, err := s.cache.Incr(ctx, s.genKey())
	return err
}
