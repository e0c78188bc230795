package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/repository"
)

const (
	dashboardCacheKey = "support-desk:dashboard:metrics"
	dashboardCacheTTL = 30 * time.Second
)

// DashboardMetrics is the headline counters block.
type DashboardMetrics struct {
	OpenTickets       int `json:"open_tickets"`
	InProgressTickets int `json:"in_progress_tickets"`
	ResolvedToday     int `json:"resolved_today"`
}

// DashboardService aggregates ticket counters, with a short redis cache in
// front of the counting query. A cold or unreachable cache degrades to a
// direct query.
type DashboardService struct {
	tickets repository.TicketRepository
	cache   *redis.Client
	logger  *zap.Logger
}

// NewDashboardService constructs the service. The cache client may be nil.
func NewDashboardService(tickets repository.TicketRepository, cache *redis.Client, logger *zap.Logger) *DashboardService {
	return &DashboardService{tickets: tickets, cache: cache, logger: logger}
}

// Metrics returns the current counters, serving from cache when fresh.
func (s *DashboardService) Metrics(ctx context.Context) (DashboardMetrics, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	counts, err := s.tickets.Counts(ctx, time.Now())
	if err != nil {
		return DashboardMetrics{}, err
	}
	metrics := DashboardMetrics{
		OpenTickets:       counts.Open,
		InProgressTickets: counts.InProgress,
		ResolvedToday:     counts.ResolvedToday,
	}
	s.toCache(ctx, metrics)
	return metrics, nil
}

func (s *DashboardService) fromCache(ctx context.Context) (DashboardMetrics, bool) {
	if s.cache == nil {
		return DashboardMetrics{}, false
	}
	raw, err := s.cache.Get(ctx, dashboardCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("dashboard cache read failed", zap.Error(err))
		}
		return DashboardMetrics{}, false
	}
	var metrics DashboardMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return DashboardMetrics{}, false
	}
	return metrics, true
}

func (s *DashboardService) toCache(ctx context.Context, metrics DashboardMetrics) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardCacheKey, raw, dashboardCacheTTL).Err(); err != nil {
		s.logger.Debug("dashboard cache write failed", zap.Error(err))
	}
}
