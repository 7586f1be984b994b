package mocks

import (
	"context"

	"sheetdash/internal/model"
	"sheetdash/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, name, email string) (*model.Account, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountService) Me(ctx context.Context, actor model.Actor) (*service.Profile, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Profile), args.Error(1)
}

func (m *MockAccountService) UpdateName(ctx context.Context, actor model.Actor, name string) (*model.Account, error) {
	args := m.Called(ctx, actor, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountService) DeleteMe(ctx context.Context, actor model.Actor) error {
	args := m.Called(ctx, actor)
	return args.Error(0)
}

func (m *MockAccountService) EnsureSuperadmin(ctx context.Context, name, email string) (*model.Account, error) {
	args := m.Called(ctx, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}
