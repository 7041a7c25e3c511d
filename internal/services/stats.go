package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nexcodes/softec-25-sub000/internal/metrics"
	"github.com/nexcodes/softec-25-sub000/internal/repository"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const (
	statsCacheKey     = "crimewatch:stats:summary"
	mapPointsCacheKey = "crimewatch:stats:map"
	recentWindow      = 30 * 24 * time.Hour
	maxMapPoints      = 1000
)

// Cache is the slice of the Redis client the dashboard needs. *redis.Client
// satisfies it.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// StatsSummary is the analytics dashboard payload
type StatsSummary struct {
	ByType         map[string]int64 `json:"by_type"`
	ByVerification map[string]int64 `json:"by_verification"`
	Live           int64            `json:"live"`
	Last30Days     int64            `json:"last_30_days"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// StatsService aggregates crime analytics, read through an optional cache
type StatsService struct {
	statsRepo *repository.StatsRepository
	cache     Cache
	ttl       time.Duration
	now       func() time.Time
}

// NewStatsService creates a new stats service. A nil cache disables caching.
func NewStatsService(statsRepo *repository.StatsRepository, cache Cache, ttl time.Duration) *StatsService {
	return &StatsService{
		statsRepo: statsRepo,
		cache:     cache,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Summary returns totals by type and verification, the live count and the
// number of reports in the last 30 days
func (s *StatsService) Summary(ctx context.Context) (*StatsSummary, error) {
	var summary StatsSummary
	if s.cached(ctx, statsCacheKey, &summary) {
		return &summary, nil
	}

	byType, err := s.statsRepo.CountByType(ctx)
	if err != nil {
		return nil, err
	}
	byVerification, err := s.statsRepo.CountByVerification(ctx)
	if err != nil {
		return nil, err
	}
	live, err := s.statsRepo.CountLive(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	recent, err := s.statsRepo.CountReportedSince(ctx, now.Add(-recentWindow))
	if err != nil {
		return nil, err
	}

	summary = StatsSummary{
		ByType:         byType,
		ByVerification: byVerification,
		Live:           live,
		Last30Days:     recent,
		GeneratedAt:    now,
	}
	s.store(ctx, statsCacheKey, summary)
	return &summary, nil
}

// MapPoints returns live crimes with coordinates, newest incident first
func (s *StatsService) MapPoints(ctx context.Context) ([]repository.MapPoint, error) {
	var points []repository.MapPoint
	if s.cached(ctx, mapPointsCacheKey, &points) {
		return points, nil
	}

	points, err := s.statsRepo.MapPoints(ctx, maxMapPoints)
	if err != nil {
		return nil, err
	}
	s.store(ctx, mapPointsCacheKey, points)
	return points, nil
}

// cached loads key into dst. Cache failures are logged and treated as misses.
func (s *StatsService) cached(ctx context.Context, key string, dst interface{}) bool {
	if s.cache == nil {
		return false
	}

	data, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.StatsCache.WithLabelValues("miss").Inc()
		return false
	case err != nil:
		metrics.StatsCache.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("Stats cache read failed")
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		metrics.StatsCache.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("Stats cache entry is corrupt")
		return false
	}
	metrics.StatsCache.WithLabelValues("hit").Inc()
	return true
}

func (s *StatsService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode stats for cache")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Stats cache write failed")
	}
}

// NewRedisCache connects the analytics cache. An empty address returns nil.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}
