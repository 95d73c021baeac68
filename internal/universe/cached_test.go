package universe

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/energyls/internal/contracts"
	"github.com/wonny/energyls/pkg/redis"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Snapshots(ctx context.Context, date time.Time) (*contracts.SnapshotSet, error) {
	p.calls++
	return &contracts.SnapshotSet{
		Date:      date,
		Snapshots: []contracts.SecuritySnapshot{{SecurityID: "OIL", Close: 50, Mean10: 51, Mean30: 49, Tradable: true}},
		Universe:  1,
	}, nil
}

func TestCachedProvider_DisabledRedisPassesThrough(t *testing.T) {
	inner := &countingProvider{}
	cache := redis.NewCache(redis.NewFromRedis(nil), "test")
	provider := NewCachedProvider(inner, cache, "abc", nil)

	for i := 0; i < 2; i++ {
		set, err := provider.Snapshots(context.Background(), cycleDate)
		require.NoError(t, err)
		assert.Equal(t, []string{"OIL"}, set.IDs())
	}
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProvider_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" || testing.Short() {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(ctx).Err())
	defer rdb.Close()

	cache := redis.NewCache(redis.NewFromRedis(rdb), "energyls-test")
	hash := time.Now().Format("150405.000000")
	defer cache.Delete(ctx, redis.SnapshotKey(hash, cycleDate.Format("2006-01-02")))

	inner := &countingProvider{}
	provider := NewCachedProvider(inner, cache, hash, nil)

	first, err := provider.Snapshots(ctx, cycleDate)
	require.NoError(t, err)
	second, err := provider.Snapshots(ctx, cycleDate)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.IDs(), second.IDs())
	assert.Equal(t, first.Universe, second.Universe)
}
