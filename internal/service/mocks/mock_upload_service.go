package mocks

import (
	"context"
	"io"
	"time"

	"sheetdash/internal/model"
	"sheetdash/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Ingest(ctx context.Context, ownerID, originalName, contentType string, data []byte) (*model.UploadRecord, error) {
	args := m.Called(ctx, ownerID, originalName, contentType, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadRecord), args.Error(1)
}

func (m *MockUploadService) Get(ctx context.Context, actor model.Actor, id string) (*model.UploadRecord, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadRecord), args.Error(1)
}

func (m *MockUploadService) History(ctx context.Context, actor model.Actor, q repository.ListQuery) ([]model.UploadMeta, error) {
	args := m.Called(ctx, actor, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UploadMeta), args.Error(1)
}

func (m *MockUploadService) Download(ctx context.Context, actor model.Actor, id string) (io.ReadCloser, *model.UploadRecord, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.UploadRecord), args.Error(2)
}

func (m *MockUploadService) DownloadURL(ctx context.Context, actor model.Actor, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, actor, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockUploadService) Export(ctx context.Context, actor model.Actor, id string) ([]byte, *model.UploadRecord, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]byte), args.Get(1).(*model.UploadRecord), args.Error(2)
}

func (m *MockUploadService) Delete(ctx context.Context, actor model.Actor, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockUploadService) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}
