// Package app wires the compute engines, the result cache, and metrics
// into the service facade the calling layer talks to.
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/openlift/ironstats/internal/adapters/cache"
	"github.com/openlift/ironstats/internal/adapters/duckdb"
	"github.com/openlift/ironstats/internal/domain/dataset"
	"github.com/openlift/ironstats/internal/domain/model"
	"github.com/openlift/ironstats/internal/domain/viz"
	"github.com/openlift/ironstats/pkg/logger"
	"github.com/openlift/ironstats/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithBinCount sets the visualization histogram bin count.
func WithBinCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.binCount = n
		}
	}
}

// WithCacheTTL sets the result cache time-to-live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithCacheMaxEntries bounds the result cache.
func WithCacheMaxEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheMax = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// Service exposes the analytics operations. All methods are safe for
// concurrent use: the dataset is read-only, the viz engine is stateless,
// and the SQL engine serializes internally.
type Service struct {
	ds  *dataset.Dataset
	viz *viz.Engine
	sql *duckdb.Engine

	results  *cache.Cache
	binCount int
	cacheTTL time.Duration
	cacheMax int

	log logger.Logger
}

// New creates the service over a loaded dataset and an open SQL engine.
func New(ds *dataset.Dataset, sqlEngine *duckdb.Engine, opts ...Option) *Service {
	s := &Service{
		ds:       ds,
		sql:      sqlEngine,
		binCount: 20,
		cacheTTL: 5 * time.Minute,
		cacheMax: 1024,
		log:      logger.Named("app"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.viz = viz.NewEngine(ds, viz.WithBinCount(s.binCount))
	s.results = cache.New(cache.WithTTL(s.cacheTTL), cache.WithMaxEntries(s.cacheMax))
	metrics.UpdateDatasetRows(ds.Len())
	return s
}

// Visualize runs the visualization compute pass, memoized by the
// request's canonical key.
func (s *Service) Visualize(ctx context.Context, req model.FilterRequest) (model.VizResult, error) {
	const op = "visualize"
	start := time.Now()
	qid := uuid.NewString()

	key := cache.Key(op, req, cache.FormatJSON)
	res, err := cache.GetOrCompute(ctx, s.results, key, func(ctx context.Context) (model.VizResult, error) {
		return s.viz.Compute(ctx, req)
	})
	s.observe(ctx, op, qid, start, err)
	metrics.UpdateCacheEntries(s.results.Len())
	return res, err
}

// PercentileBands returns score percentiles per (sex, equipment) group.
func (s *Service) PercentileBands(ctx context.Context) ([]model.PercentileBand, error) {
	const op = "percentile_bands"
	start := time.Now()
	qid := uuid.NewString()
	res, err := s.sql.PercentileBands(ctx)
	s.observe(ctx, op, qid, start, err)
	return res, err
}

// WeightDistribution returns the SQL engine's dynamic-width histogram.
func (s *Service) WeightDistribution(ctx context.Context, req model.FilterRequest, binCount int) (model.WeightDistribution, error) {
	const op = "weight_distribution"
	start := time.Now()
	qid := uuid.NewString()
	res, err := s.sql.WeightDistribution(ctx, req, binCount)
	s.observe(ctx, op, qid, start, err)
	return res, err
}

// CompetitivePosition ranks a hypothetical lift against the population.
func (s *Service) CompetitivePosition(ctx context.Context, req model.FilterRequest) (model.CompetitivePosition, error) {
	const op = "competitive_position"
	start := time.Now()
	qid := uuid.NewString()
	res, err := s.sql.CompetitivePosition(ctx, req)
	s.observe(ctx, op, qid, start, err)
	return res, err
}

// Leaderboard returns one page of the full-dataset ranking.
func (s *Service) Leaderboard(ctx context.Context, req model.LeaderboardRequest) (model.LeaderboardPage, error) {
	const op = "leaderboard"
	start := time.Now()
	qid := uuid.NewString()
	res, err := s.sql.Leaderboard(ctx, req)
	s.observe(ctx, op, qid, start, err)
	return res, err
}

// ClearCaches drops every memoized result on both compute paths.
func (s *Service) ClearCaches() {
	s.results.Clear()
	s.sql.ClearCache()
	metrics.UpdateCacheEntries(0)
}

// Stats reports service-level counters for diagnostics endpoints.
func (s *Service) Stats() map[string]any {
	return map[string]any{
		"dataset_rows":   s.ds.Len(),
		"dataset_path":   s.ds.Path(),
		"cached_results": s.results.Len(),
		"bin_count":      s.binCount,
		"cache_ttl":      s.cacheTTL.String(),
	}
}

func (s *Service) observe(ctx context.Context, op, qid string, start time.Time, err error) {
	elapsed := float64(time.Since(start).Microseconds()) / 1e3
	if err != nil {
		metrics.RecordComputeError(op)
		s.log.Error(ctx, "compute failed",
			logger.String("op", op),
			logger.String("query_id", qid),
			logger.Error(err))
		return
	}
	metrics.RecordComputeLatency(op, elapsed)
	s.log.Debug(ctx, "compute done",
		logger.String("op", op),
		logger.String("query_id", qid),
		logger.Float64("elapsed_ms", elapsed))
}
