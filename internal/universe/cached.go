package universe

import (
	"context"
	"time"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/pkg/logger"
	"github.com/wonny/energyls/pkg/redis"
)

// CachedProvider memoizes snapshot sets per strategy version and date.
// Cache failures fall through to the wrapped provider.
type CachedProvider struct {
	inner        contracts.SnapshotProvider
	cache        *redis.Cache
	strategyHash string
	ttl          time.Duration
	logger       *logger.Logger
}

// NewCachedProvider wraps inner with a Redis-backed cache
func NewCachedProvider(inner contracts.SnapshotProvider, cache *redis.Cache, strategyHash string, log *logger.Logger) *CachedProvider {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedProvider{
		inner:        inner,
		cache:        cache,
		strategyHash: strategyHash,
		ttl:          redis.TTLDaily,
		logger:       log,
	}
}

// Snapshots implements contracts.SnapshotProvider
func (p *CachedProvider) Snapshots(ctx context.Context, date time.Time) (*contracts.SnapshotSet, error) {
	key := redis.SnapshotKey(p.strategyHash, date.Format("2006-01-02"))

	var cached contracts.SnapshotSet
	found, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).Warn("Snapshot cache read failed")
	}
	if found {
		p.logger.WithField("key", key).Debug("Snapshot cache hit")
		return &cached, nil
	}

	set, err := p.inner.Snapshots(ctx, date)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, set, p.ttl); err != nil {
		p.logger.WithError(err).Warn("Snapshot cache write failed")
	}

	return set, nil
}
