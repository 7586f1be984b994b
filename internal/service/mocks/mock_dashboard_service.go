package mocks

import (
	"context"

	"sheetdash/internal/analytics"

	"github.com/stretchr/testify/mock"
)

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Summary(ctx context.Context, accountID string) (analytics.AccountSummary, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(analytics.AccountSummary), args.Error(1)
}

func (m *MockDashboardService) Recent(ctx context.Context, accountID string, n int) ([]analytics.RecentUpload, error) {
	args := m.Called(ctx, accountID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]analytics.RecentUpload), args.Error(1)
}

func (m *MockDashboardService) Trend(ctx context.Context, accountID string, days int) (analytics.TrendChart, error) {
	args := m.Called(ctx, accountID, days)
	return args.Get(0).(analytics.TrendChart), args.Error(1)
}

func (m *MockDashboardService) Chart(ctx context.Context, accountID string) (analytics.StatusChart, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(analytics.StatusChart), args.Error(1)
}
