package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/climatecare/repairdesk/internal/config"
	"github.com/climatecare/repairdesk/internal/domain"
	"github.com/climatecare/repairdesk/internal/events"
	"github.com/climatecare/repairdesk/internal/observability"
	"github.com/climatecare/repairdesk/internal/rbac"
	"github.com/climatecare/repairdesk/internal/repository"
	"github.com/climatecare/repairdesk/internal/stats"
	apperrors "github.com/climatecare/repairdesk/pkg/util"
)

const statsCacheKey = "stats:overview"

// OverviewCache is the subset of redis commands the stats service uses.
// Cache failures degrade to recomputation, never to request failures.
type OverviewCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Overview is the statistics payload served to managers.
type Overview struct {
	Summary        stats.Summary
	SpecialistLoad []stats.LoadEntry
	GeneratedAt    time.Time
}

// StatsService assembles the statistics overview with short-lived caching.
type StatsService struct {
	records repository.StatsRepository
	cache   OverviewCache
	metrics *observability.Metrics
	logger  *zap.Logger
	ttl     time.Duration
}

// StatsDependencies bundles collaborators for the stats service.
type StatsDependencies struct {
	StatsRepo repository.StatsRepository
	Cache     OverviewCache
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

// NewStatsService constructs the service.
func NewStatsService(cfg config.Config, deps StatsDependencies) *StatsService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		records: deps.StatsRepo,
		cache:   deps.Cache,
		metrics: deps.Metrics,
		logger:  logger,
		ttl:     cfg.Stats.CacheTTL(),
	}
}

// Overview returns workshop-wide statistics for managers, from cache when a
// fresh copy exists.
func (s *StatsService) Overview(ctx context.Context, actor *domain.User) (*Overview, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if !rbac.CanViewStatistics(actor.Role) {
		return nil, apperrors.NewForbidden("statistics are restricted to managers")
	}

	if cached, ok := s.fromCache(ctx); ok {
		s.metrics.RecordStatsCache("hit")
		return cached, nil
	}
	s.metrics.RecordStatsCache("miss")

	records, err := s.records.CollectRecords(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	assignments, err := s.records.CollectAssignments(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	overview := &Overview{
		Summary:        stats.Summarize(records),
		SpecialistLoad: stats.SpecialistLoad(assignments),
		GeneratedAt:    time.Now().UTC(),
	}
	s.toCache(ctx, overview)
	return overview, nil
}

// Invalidate drops the cached overview so the next read recomputes it.
func (s *StatsService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, statsCacheKey).Err(); err != nil && !errors.Is(err, redis.Nil) {
		s.logger.Warn("stats cache invalidation failed", zap.Error(err))
	}
}

// RegisterInvalidation subscribes cache invalidation to every event that
// changes what the overview reports. Comments do not affect it.
func (s *StatsService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, _ events.Event) error {
		s.Invalidate(ctx)
		return nil
	}
	for _, eventType := range []events.EventType{
		events.EventRequestCreated,
		events.EventRequestUpdated,
		events.EventRequestStatusChanged,
		events.EventRequestDeleted,
	} {
		dispatcher.Subscribe(eventType, handler)
	}
}

func (s *StatsService) fromCache(ctx context.Context) (*Overview, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var overview Overview
	if err := json.Unmarshal(raw, &overview); err != nil {
		s.logger.Warn("stats cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return &overview, true
}

func (s *StatsService) toCache(ctx context.Context, overview *Overview) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(overview)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("stats cache write failed", zap.Error(err))
	}
}
