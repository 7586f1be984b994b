package mocks

import (
	"context"

	"sheetdash/internal/model"
	"sheetdash/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockUploadRepository struct {
	mock.Mock
}

func (m *MockUploadRepository) Create(ctx context.Context, rec *model.UploadRecord) (*model.UploadRecord, error) {
	args := m.Called(ctx, rec)
	if f, ok := args.Get(0).(func(context.Context, *model.UploadRecord) *model.UploadRecord); ok {
		return f(ctx, rec), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadRecord), args.Error(1)
}

func (m *MockUploadRepository) FindByID(ctx context.Context, id string) (*model.UploadRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadRecord), args.Error(1)
}

func (m *MockUploadRepository) ListByOwner(ctx context.Context, ownerID string, q repository.ListQuery) ([]model.UploadMeta, error) {
	args := m.Called(ctx, ownerID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UploadMeta), args.Error(1)
}

func (m *MockUploadRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUploadRepository) DeleteAllByOwner(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUploadRepository) CountByOwner(ctx context.Context, ownerID string, tr *repository.TimeRange) (int, error) {
	args := m.Called(ctx, ownerID, tr)
	return args.Int(0), args.Error(1)
}

func (m *MockUploadRepository) CountAll(ctx context.Context, tr *repository.TimeRange) (int, error) {
	args := m.Called(ctx, tr)
	return args.Int(0), args.Error(1)
}

func (m *MockUploadRepository) TopOwners(ctx context.Context, n int) ([]repository.OwnerCount, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.OwnerCount), args.Error(1)
}
