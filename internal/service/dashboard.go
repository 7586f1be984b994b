package service

import (
	"context"
	"time"

	"sheetdash/internal/analytics"
	"sheetdash/internal/repository"
)

// DashboardService aggregates the uploads of one account. Each call reads the
// store once; a store error fails the whole call.
type DashboardService interface {
	Summary(ctx context.Context, accountID string) (analytics.AccountSummary, error)
	Recent(ctx context.Context, accountID string, n int) ([]analytics.RecentUpload, error)
	Trend(ctx context.Context, accountID string, days int) (analytics.TrendChart, error)
	Chart(ctx context.Context, accountID string) (analytics.StatusChart, error)
}

type dashboardService struct {
	uploads     repository.UploadRepository
	recentLimit int
	trendDays   int
	now         func() time.Time
}

// NewDashboardService constructs a DashboardService. Non-positive defaults fall
// back to analytics.DefaultRecentLimit and analytics.DefaultTrendDays.
func NewDashboardService(uploads repository.UploadRepository, recentLimit, trendDays int) DashboardService {
	if recentLimit <= 0 {
		recentLimit = analytics.DefaultRecentLimit
	}
	if trendDays <= 0 {
		trendDays = analytics.DefaultTrendDays
	}
	return &dashboardService{
		uploads:     uploads,
		recentLimit: recentLimit,
		trendDays:   trendDays,
		now:         time.Now,
	}
}

func (s *dashboardService) Summary(ctx context.Context, accountID string) (analytics.AccountSummary, error) {
	if accountID == "" {
		return analytics.AccountSummary{}, ErrIDRequired
	}
	records, err := s.uploads.ListByOwner(ctx, accountID, repository.ListQuery{})
	if err != nil {
		return analytics.AccountSummary{}, err
	}
	return analytics.Summarize(records), nil
}

func (s *dashboardService) Recent(ctx context.Context, accountID string, n int) ([]analytics.RecentUpload, error) {
	if accountID == "" {
		return nil, ErrIDRequired
	}
	if n <= 0 {
		n = s.recentLimit
	}
	records, err := s.uploads.ListByOwner(ctx, accountID, repository.ListQuery{Sort: repository.SortNewest, Limit: n})
	if err != nil {
		return nil, err
	}
	return analytics.Recent(records, n), nil
}

func (s *dashboardService) Trend(ctx context.Context, accountID string, days int) (analytics.TrendChart, error) {
	if accountID == "" {
		return analytics.TrendChart{}, ErrIDRequired
	}
	if days <= 0 {
		days = s.trendDays
	}
	now := s.now()
	records, err := s.uploads.ListByOwner(ctx, accountID, repository.ListQuery{Since: analytics.WindowStart(now, days)})
	if err != nil {
		return analytics.TrendChart{}, err
	}
	return analytics.Series(analytics.Trend(records, now, days)), nil
}

func (s *dashboardService) Chart(ctx context.Context, accountID string) (analytics.StatusChart, error) {
	summary, err := s.Summary(ctx, accountID)
	if err != nil {
		return analytics.StatusChart{}, err
	}
	return analytics.Chart(summary), nil
}
