package mocks

import (
	"context"

	"sheetdash/internal/model"
	"sheetdash/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Stats(ctx context.Context) (*service.AdminDashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AdminDashboard), args.Error(1)
}

func (m *MockAdminService) GlobalStats(ctx context.Context) (*service.SystemStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SystemStats), args.Error(1)
}

func (m *MockAdminService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *MockAdminService) AccountDetails(ctx context.Context, id string) (*service.AccountDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AccountDetails), args.Error(1)
}

func (m *MockAdminService) DeleteAccount(ctx context.Context, actor model.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockAdminService) DeleteAccountUpload(ctx context.Context, actor model.Actor, accountID, uploadID string) error {
	args := m.Called(ctx, actor, accountID, uploadID)
	return args.Error(0)
}

func (m *MockAdminService) Promote(ctx context.Context, actor model.Actor, id string) (*model.Account, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAdminService) Demote(ctx context.Context, actor model.Actor, id string) (*model.Account, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAdminService) ListAdmins(ctx context.Context) ([]model.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}
