package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"sheetdash/internal/model"
	"sheetdash/internal/repository"
	repoMocks "sheetdash/internal/repository/mocks"
	"sheetdash/internal/storage"
	storeMocks "sheetdash/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type ingestion struct {
	status model.UploadStatus
	rows   int
}

type fakeRecorder struct {
	calls []ingestion
}

func (f *fakeRecorder) ObserveIngestion(status model.UploadStatus, rows int) {
	f.calls = append(f.calls, ingestion{status, rows})
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

type uploadMocks struct {
	store    *storeMocks.MockStorage
	uploads  *repoMocks.MockUploadRepository
	accounts *repoMocks.MockAccountRepository
	recorder *fakeRecorder
}

func newTestUploadService(now time.Time) (*uploadService, uploadMocks) {
	m := uploadMocks{
		store:    new(storeMocks.MockStorage),
		uploads:  new(repoMocks.MockUploadRepository),
		accounts: new(repoMocks.MockAccountRepository),
		recorder: &fakeRecorder{},
	}
	svc := NewUploadService(m.store, m.uploads, m.accounts, m.recorder).(*uploadService)
	svc.now = func() time.Time { return now }
	return svc, m
}

func (m uploadMocks) assert(t *testing.T) {
	m.store.AssertExpectations(t)
	m.uploads.AssertExpectations(t)
	m.accounts.AssertExpectations(t)
}

func echoKey(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
	return storage.ObjectInfo{Key: key, Size: opt.Size, ContentType: opt.ContentType}
}

func echoRecord(_ context.Context, rec *model.UploadRecord) *model.UploadRecord { return rec }

func TestUploadService_Ingest(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	owner := &model.Account{ID: "owner-1", Role: model.RoleUser}
	valid := workbook(t, [][]any{{"Name", "Score"}, {"A", 10}, {"B", 20}})
	headerOnly := workbook(t, [][]any{{"Name", "Score"}})

	tests := []struct {
		name       string
		filename   string
		data       []byte
		setupMocks func(m uploadMocks)
		wantErr    error
		wantErrMsg string
		check      func(t *testing.T, rec *model.UploadRecord, m uploadMocks)
	}{
		{
			name:     "happy path",
			filename: "scores.xlsx",
			data:     valid,
			setupMocks: func(m uploadMocks) {
				m.accounts.On("FindByID", mock.Anything, "owner-1").Return(owner, nil)
				m.store.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "uploads/owner-1/") && strings.HasSuffix(key, ".xlsx")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.Size == int64(len(valid)) && opt.Metadata["original-filename"] == "scores.xlsx"
				})).Return(echoKey, nil)
				m.uploads.On("Create", mock.Anything, mock.MatchedBy(func(rec *model.UploadRecord) bool {
					return rec.OwnerID == "owner-1" && rec.StoragePath == "uploads/owner-1/"+rec.ID+".xlsx"
				})).Return(echoRecord, nil)
			},
			check: func(t *testing.T, rec *model.UploadRecord, m uploadMocks) {
				assert.Equal(t, model.StatusUploaded, rec.Status)
				assert.Equal(t, 2, rec.RowCount)
				assert.Equal(t, []string{"Name", "Score"}, rec.Columns)
				assert.Equal(t, model.Number(20), rec.Rows[1]["Score"])
				assert.Equal(t, "scores.xlsx", rec.OriginalName)
				assert.Equal(t, rec.ID+".xlsx", rec.Filename)
				assert.Equal(t, now, rec.CreatedAt)
				assert.Equal(t, []ingestion{{model.StatusUploaded, 2}}, m.recorder.calls)
			},
		},
		{
			name:     "undecodable bytes become a failed record",
			filename: "notes.xlsx",
			data:     []byte("this is not a workbook"),
			setupMocks: func(m uploadMocks) {
				m.accounts.On("FindByID", mock.Anything, "owner-1").Return(owner, nil)
				m.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoKey, nil)
				m.uploads.On("Create", mock.Anything, mock.Anything).Return(echoRecord, nil)
			},
			check: func(t *testing.T, rec *model.UploadRecord, m uploadMocks) {
				assert.Equal(t, model.StatusFailed, rec.Status)
				assert.Equal(t, 0, rec.RowCount)
				assert.NotNil(t, rec.Rows)
				assert.Empty(t, rec.Rows)
				assert.Equal(t, []ingestion{{model.StatusFailed, 0}}, m.recorder.calls)
			},
		},
		{
			name:     "header only becomes a failed record",
			filename: "empty.xlsx",
			data:     headerOnly,
			setupMocks: func(m uploadMocks) {
				m.accounts.On("FindByID", mock.Anything, "owner-1").Return(owner, nil)
				m.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoKey, nil)
				m.uploads.On("Create", mock.Anything, mock.Anything).Return(echoRecord, nil)
			},
			check: func(t *testing.T, rec *model.UploadRecord, m uploadMocks) {
				assert.Equal(t, model.StatusFailed, rec.Status)
				assert.Equal(t, []string{"Name", "Score"}, rec.Columns)
			},
		},
		{
			name:     "unknown owner writes nothing",
			filename: "scores.xlsx",
			data:     valid,
			setupMocks: func(m uploadMocks) {
				m.accounts.On("FindByID", mock.Anything, "owner-1").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name:     "storage error",
			filename: "scores.xlsx",
			data:     valid,
			setupMocks: func(m uploadMocks) {
				m.accounts.On("FindByID", mock.Anything, "owner-1").Return(owner, nil)
				m.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:     "repository error with successful rollback",
			filename: "scores.xlsx",
			data:     valid,
			setupMocks: func(m uploadMocks) {
				m.accounts.On("FindByID", mock.Anything, "owner-1").Return(owner, nil)
				m.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoKey, nil)
				m.uploads.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				m.store.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "uploads/owner-1/")
				})).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name:     "repository error with failed rollback",
			filename: "scores.xlsx",
			data:     valid,
			setupMocks: func(m uploadMocks) {
				m.accounts.On("FindByID", mock.Anything, "owner-1").Return(owner, nil)
				m.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoKey, nil)
				m.uploads.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				m.store.On("Delete", mock.Anything, mock.Anything).Return(errors.New("delete fail"))
			},
			wantErrMsg: "rollback delete failed: delete fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestUploadService(now)
			tt.setupMocks(m)

			rec, err := svc.Ingest(context.Background(), "owner-1", tt.filename, "application/octet-stream", tt.data)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rec)
				assert.Empty(t, m.recorder.calls)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
				assert.Empty(t, m.recorder.calls)
			default:
				require.NoError(t, err)
				tt.check(t, rec, m)
			}
			m.assert(t)
		})
	}
}

func TestUploadService_IngestRequiresOwner(t *testing.T) {
	svc, m := newTestUploadService(time.Now())

	_, err := svc.Ingest(context.Background(), "", "a.xlsx", "", []byte("x"))

	assert.ErrorIs(t, err, ErrIDRequired)
	m.assert(t)
}

func TestUploadService_Get(t *testing.T) {
	ctx := context.Background()
	rec := &model.UploadRecord{ID: "u1", OwnerID: "owner-1"}

	tests := []struct {
		name       string
		actor      model.Actor
		id         string
		setupMocks func(m uploadMocks)
		wantErr    error
	}{
		{
			name:  "owner",
			actor: model.Actor{ID: "owner-1", Role: model.RoleUser},
			id:    "u1",
			setupMocks: func(m uploadMocks) {
				m.uploads.On("FindByID", ctx, "u1").Return(rec, nil)
			},
		},
		{
			name:  "admin reads any record",
			actor: model.Actor{ID: "admin-1", Role: model.RoleAdmin},
			id:    "u1",
			setupMocks: func(m uploadMocks) {
				m.uploads.On("FindByID", ctx, "u1").Return(rec, nil)
			},
		},
		{
			name:  "other user sees not found",
			actor: model.Actor{ID: "intruder", Role: model.RoleUser},
			id:    "u1",
			setupMocks: func(m uploadMocks) {
				m.uploads.On("FindByID", ctx, "u1").Return(rec, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name:       "validation - empty id",
			actor:      model.Actor{ID: "owner-1", Role: model.RoleUser},
			setupMocks: func(m uploadMocks) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:  "not found - mapping sql.ErrNoRows",
			actor: model.Actor{ID: "owner-1", Role: model.RoleUser},
			id:    "missing",
			setupMocks: func(m uploadMocks) {
				m.uploads.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestUploadService(time.Now())
			tt.setupMocks(m)

			got, err := svc.Get(ctx, tt.actor, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "u1", got.ID)
			}
			m.assert(t)
		})
	}
}

func TestUploadService_History(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUploadService(time.Now())
	q := repository.ListQuery{Sort: repository.SortNewest, Limit: 10}
	m.uploads.On("ListByOwner", ctx, "owner-1", q).Return([]model.UploadMeta{{ID: "b"}, {ID: "a"}}, nil)

	items, err := svc.History(ctx, model.Actor{ID: "owner-1", Role: model.RoleUser}, q)

	require.NoError(t, err)
	assert.Len(t, items, 2)
	m.assert(t)
}

func TestUploadService_DownloadAndExport(t *testing.T) {
	ctx := context.Background()
	actor := model.Actor{ID: "owner-1", Role: model.RoleUser}
	rec := &model.UploadRecord{
		ID:          "u1",
		OwnerID:     "owner-1",
		StoragePath: "uploads/owner-1/u1.xlsx",
		Columns:     []string{"Name"},
		Rows:        []model.Row{{"Name": model.String("A")}},
	}

	t.Run("download", func(t *testing.T) {
		svc, m := newTestUploadService(time.Now())
		m.uploads.On("FindByID", ctx, "u1").Return(rec, nil)
		m.store.On("Get", ctx, rec.StoragePath).Return(io.NopCloser(strings.NewReader("raw")), storage.ObjectInfo{}, nil)

		rc, got, err := svc.Download(ctx, actor, "u1")

		require.NoError(t, err)
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		assert.Equal(t, "raw", string(b))
		assert.Equal(t, rec, got)
		m.assert(t)
	})

	t.Run("download url clamps expiry", func(t *testing.T) {
		svc, m := newTestUploadService(time.Now())
		m.uploads.On("FindByID", ctx, "u1").Return(rec, nil).Twice()
		m.store.On("PresignGet", ctx, rec.StoragePath, rec.OriginalName, DefaultURLExpiry).Return("http://signed/default", nil)
		m.store.On("PresignGet", ctx, rec.StoragePath, rec.OriginalName, MaxURLExpiry).Return("http://signed/max", nil)

		u, err := svc.DownloadURL(ctx, actor, "u1", 0)
		require.NoError(t, err)
		assert.Equal(t, "http://signed/default", u)

		u, err = svc.DownloadURL(ctx, actor, "u1", 30*24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, "http://signed/max", u)
		m.assert(t)
	})

	t.Run("export", func(t *testing.T) {
		svc, m := newTestUploadService(time.Now())
		m.uploads.On("FindByID", ctx, "u1").Return(rec, nil)

		b, got, err := svc.Export(ctx, actor, "u1")

		require.NoError(t, err)
		assert.NotEmpty(t, b)
		assert.Equal(t, "u1", got.ID)
		m.assert(t)
	})

	t.Run("export failed record", func(t *testing.T) {
		svc, m := newTestUploadService(time.Now())
		m.uploads.On("FindByID", ctx, "u2").Return(&model.UploadRecord{ID: "u2", OwnerID: "owner-1", Rows: []model.Row{}}, nil)

		_, _, err := svc.Export(ctx, actor, "u2")

		assert.ErrorIs(t, err, ErrEmptyInput)
		m.assert(t)
	})
}

func TestUploadService_Delete(t *testing.T) {
	ctx := context.Background()
	owner := model.Actor{ID: "owner-1", Role: model.RoleUser}

	tests := []struct {
		name       string
		actor      model.Actor
		id         string
		setupMocks func(m uploadMocks)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:  "happy path",
			actor: owner,
			id:    "u1",
			setupMocks: func(m uploadMocks) {
				m.uploads.On("FindByID", ctx, "u1").Return(&model.UploadRecord{ID: "u1", OwnerID: "owner-1", StoragePath: "path/to/obj"}, nil)
				m.store.On("Delete", ctx, "path/to/obj").Return(nil)
				m.uploads.On("Delete", ctx, "u1").Return(nil)
			},
		},
		{
			name:       "validation - empty id",
			actor:      owner,
			setupMocks: func(m uploadMocks) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:  "missing record is a no-op",
			actor: owner,
			id:    "missing",
			setupMocks: func(m uploadMocks) {
				m.uploads.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)
			},
		},
		{
			name:  "other user's record",
			actor: model.Actor{ID: "intruder", Role: model.RoleUser},
			id:    "u1",
			setupMocks: func(m uploadMocks) {
				m.uploads.On("FindByID", ctx, "u1").Return(&model.UploadRecord{ID: "u1", OwnerID: "owner-1"}, nil)
			},
			wantErr: ErrNotFound,
		},
		{
			name:  "storage delete error keeps the row",
			actor: owner,
			id:    "u1",
			setupMocks: func(m uploadMocks) {
				m.uploads.On("FindByID", ctx, "u1").Return(&model.UploadRecord{ID: "u1", OwnerID: "owner-1", StoragePath: "path"}, nil)
				m.store.On("Delete", ctx, "path").Return(errors.New("storage fail"))
			},
			wantErrMsg: "delete storage: storage fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newTestUploadService(time.Now())
			tt.setupMocks(m)

			err := svc.Delete(ctx, tt.actor, tt.id)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				assert.NoError(t, err)
			}
			m.assert(t)
		})
	}
}

func TestUploadService_DeleteAllByOwner(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestUploadService(time.Now())
	m.uploads.On("DeleteAllByOwner", ctx, "owner-1").Return([]string{"p1", "p2", "p3"}, nil)
	m.store.On("Delete", ctx, "p1").Return(nil)
	m.store.On("Delete", ctx, "p2").Return(errors.New("gone wrong"))
	m.store.On("Delete", ctx, "p3").Return(nil)

	err := svc.DeleteAllByOwner(ctx, "owner-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete storage p2: gone wrong")
	m.assert(t)
}
