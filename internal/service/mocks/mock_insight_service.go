package mocks

import (
	"context"

	"sheetdash/internal/model"
	"sheetdash/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockInsightService struct {
	mock.Mock
}

func (m *MockInsightService) Generate(ctx context.Context, actor model.Actor, uploadID string) (*service.Insight, error) {
	args := m.Called(ctx, actor, uploadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Insight), args.Error(1)
}
