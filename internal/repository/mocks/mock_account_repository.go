package mocks

import (
	"context"
	"time"

	"sheetdash/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) account(args mock.Arguments) (*model.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAccountRepository) accounts(args mock.Arguments) ([]model.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, acc *model.Account) (*model.Account, error) {
	return m.account(m.Called(ctx, acc))
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return m.account(m.Called(ctx, id))
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return m.account(m.Called(ctx, email))
}

func (m *MockAccountRepository) List(ctx context.Context, role *model.Role) ([]model.Account, error) {
	return m.accounts(m.Called(ctx, role))
}

func (m *MockAccountRepository) ListRecent(ctx context.Context, n int) ([]model.Account, error) {
	return m.accounts(m.Called(ctx, n))
}

func (m *MockAccountRepository) UpdateRole(ctx context.Context, id string, role model.Role) (*model.Account, error) {
	return m.account(m.Called(ctx, id, role))
}

func (m *MockAccountRepository) UpdateName(ctx context.Context, id, name string) (*model.Account, error) {
	return m.account(m.Called(ctx, id, name))
}

func (m *MockAccountRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.Role]int), args.Error(1)
}

func (m *MockAccountRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}
