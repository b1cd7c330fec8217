package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentdeck/agentdeck/internal/platform/httpx"
)

const dashboardCacheKey = "usage:dashboard"

// Service handles usage aggregation.
type Service struct {
	repo     Repository
	cache    *Cache
	validate *validator.Validate
	window   time.Duration
}

// NewService builds a Service instance. The dashboard covers the trailing
// window; 30 days when zero.
func NewService(repo Repository, cache *Cache, window time.Duration) *Service {
	if window <= 0 {
		window = 30 * 24 * time.Hour
	}
	return &Service{repo: repo, cache: cache, validate: validator.New(), window: window}
}

// Record stores a raw usage event and drops the cached dashboard.
func (s *Service) Record(ctx context.Context, input RecordInput) (Record, error) {
	if err := s.validate.Struct(input); err != nil {
		return Record{}, fmt.Errorf("%w: %s", httpx.ErrValidation, err)
	}
	record := Record{
		ID:           uuid.NewString(),
		Model:        input.Model,
		InputTokens:  input.InputTokens,
		OutputTokens: input.OutputTokens,
		CostUSD:      input.CostUSD,
		OccurredAt:   time.Now(),
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		return Record{}, err
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return record, nil
}

// Dashboard returns the combined usage view, served from cache when fresh.
// The three aggregates are loaded concurrently.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var dash Dashboard
	err := s.cache.FetchJSON(ctx, dashboardCacheKey, &dash, func(ctx context.Context) (any, error) {
		return s.loadDashboard(ctx)
	})
	if err != nil {
		return Dashboard{}, err
	}
	return dash, nil
}

func (s *Service) loadDashboard(ctx context.Context) (Dashboard, error) {
	since := time.Now().Add(-s.window)
	var dash Dashboard

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		in, out, cost, err := s.repo.Totals(gctx, since)
		if err != nil {
			return err
		}
		dash.TotalInputTokens, dash.TotalOutputTokens, dash.TotalCostUSD = in, out, cost
		return nil
	})
	g.Go(func() error {
		byModel, err := s.repo.ByModel(gctx, since)
		if err != nil {
			return err
		}
		dash.ByModel = byModel
		return nil
	})
	g.Go(func() error {
		byDay, err := s.repo.ByDay(gctx, since)
		if err != nil {
			return err
		}
		dash.ByDay = byDay
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	if dash.ByModel == nil {
		dash.ByModel = []ModelTotal{}
	}
	if dash.ByDay == nil {
		dash.ByDay = []DailyTotal{}
	}
	return dash, nil
}

// Rollup folds one day's events into the daily table. Empty day means
// yesterday (UTC).
func (s *Service) Rollup(ctx context.Context, day string) error {
	if day == "" {
		day = time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return fmt.Errorf("%w: day must be YYYY-MM-DD", httpx.ErrValidation)
	}
	if err := s.repo.RollupDay(ctx, day); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, dashboardCacheKey)
	return nil
}
