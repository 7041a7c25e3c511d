package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCache is an in-process stand-in for the Redis client
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	gets    int
	sets    int
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.failGet {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	val, ok := c.entries[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	switch v := value.(type) {
	case []byte:
		c.entries[key] = string(v)
	case string:
		c.entries[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func seedStats(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	svc := NewCrimeService(f.crimes, f.users)

	for _, ct := range []models.CrimeType{models.CrimeTheft, models.CrimeTheft, models.CrimeAssault} {
		req := reportRequest()
		req.CrimeType = ct
		_, err := svc.Report(ctx, "", req)
		require.NoError(t, err)
	}

	noCoords := reportRequest()
	noCoords.Latitude, noCoords.Longitude = nil, nil
	_, err := svc.Report(ctx, "", noCoords)
	require.NoError(t, err)

	// hidden crimes are left out of every aggregate
	f.crime(t, nil, false)
}

func TestStatsSummary(t *testing.T) {
	f := newFixture(t)
	seedStats(t, f)
	svc := NewStatsService(f.stats, nil, time.Minute)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, summary.Live)
	assert.EqualValues(t, 4, summary.Last30Days)
	assert.EqualValues(t, 2, summary.ByType[string(models.CrimeTheft)])
	assert.EqualValues(t, 1, summary.ByType[string(models.CrimeAssault)])
	assert.EqualValues(t, 1, summary.ByType[string(models.CrimeRobbery)])
	assert.EqualValues(t, 4, summary.ByVerification[string(models.VerificationPending)])
}

func TestStatsMapPoints(t *testing.T) {
	f := newFixture(t)
	seedStats(t, f)
	svc := NewStatsService(f.stats, nil, time.Minute)

	points, err := svc.MapPoints(context.Background())
	require.NoError(t, err)
	assert.Len(t, points, 3)
	for _, p := range points {
		assert.InDelta(t, 31.51, p.Latitude, 1e-9)
		assert.InDelta(t, 74.34, p.Longitude, 1e-9)
	}
}

func TestStatsCache(t *testing.T) {
	f := newFixture(t)
	seedStats(t, f)
	cache := newMemoryCache()
	svc := NewStatsService(f.stats, cache, time.Minute)
	ctx := context.Background()

	first, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// a new report is not visible until the entry expires
	f.crime(t, nil, true)

	second, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Live, second.Live)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)

	points, err := svc.MapPoints(ctx)
	require.NoError(t, err)
	cached, err := svc.MapPoints(ctx)
	require.NoError(t, err)
	require.Len(t, cached, len(points))
	for i := range points {
		assert.Equal(t, points[i].ID, cached[i].ID)
	}
	assert.Equal(t, 2, cache.sets)
}

func TestStatsCache_FailureFallsBackToDatabase(t *testing.T) {
	f := newFixture(t)
	seedStats(t, f)
	cache := newMemoryCache()
	cache.failGet = true
	svc := NewStatsService(f.stats, cache, time.Minute)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 4, summary.Live)
}
