package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sheetdash/internal/metrics"
	"sheetdash/internal/model"
	"sheetdash/internal/repository"
	"sheetdash/internal/sheet"
	"sheetdash/internal/storage"
)

const (
	// DefaultURLExpiry is used when DownloadURL is called without an expiry.
	DefaultURLExpiry = 15 * time.Minute
	// MaxURLExpiry is the longest presign window S3 accepts.
	MaxURLExpiry = 7 * 24 * time.Hour
)

var tracer = otel.Tracer("sheetdash/internal/service")

// UploadService defines the ingestion pipeline and the per-record use cases.
type UploadService interface {
	// Ingest decodes data, stores the raw bytes and persists exactly one record.
	// Undecodable or empty spreadsheets become failed records, not errors.
	Ingest(ctx context.Context, ownerID, originalName, contentType string, data []byte) (*model.UploadRecord, error)

	// Get returns a record the actor may access.
	Get(ctx context.Context, actor model.Actor, id string) (*model.UploadRecord, error)

	// History lists the actor's own records.
	History(ctx context.Context, actor model.Actor, q repository.ListQuery) ([]model.UploadMeta, error)

	// Download streams the original bytes. The caller closes the reader.
	Download(ctx context.Context, actor model.Actor, id string) (io.ReadCloser, *model.UploadRecord, error)

	// DownloadURL returns a presigned URL for the original bytes.
	DownloadURL(ctx context.Context, actor model.Actor, id string, expiry time.Duration) (string, error)

	// Export re-encodes the decoded rows as a single-sheet xlsx.
	Export(ctx context.Context, actor model.Actor, id string) ([]byte, *model.UploadRecord, error)

	// Delete removes the blob and then the record. A missing record is not an error.
	Delete(ctx context.Context, actor model.Actor, id string) error

	// DeleteAllByOwner removes every record of an owner, then their blobs.
	DeleteAllByOwner(ctx context.Context, ownerID string) error
}

type uploadService struct {
	store    storage.Storage
	uploads  repository.UploadRepository
	accounts repository.AccountRepository
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewUploadService constructs a new UploadService.
func NewUploadService(store storage.Storage, uploads repository.UploadRepository, accounts repository.AccountRepository, rec metrics.Recorder) UploadService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &uploadService{
		store:    store,
		uploads:  uploads,
		accounts: accounts,
		metrics:  rec,
		now:      time.Now,
	}
}

func (s *uploadService) Ingest(ctx context.Context, ownerID, originalName, contentType string, data []byte) (rec *model.UploadRecord, err error) {
	ctx, span := tracer.Start(ctx, "UploadService.Ingest",
		trace.WithAttributes(attribute.String("upload.owner_id", ownerID), attribute.Int("upload.size", len(data))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if ownerID == "" {
		return nil, ErrIDRequired
	}
	if _, err := s.accounts.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find owner: %w", err)
	}

	decoded, decErr := sheet.Decode(data)
	if decErr != nil {
		slog.WarnContext(ctx, "spreadsheet decode failed", "owner_id", ownerID, "file", originalName, "error_message", decErr.Error())
		decoded = &sheet.Result{
			Columns:     []string{},
			ColumnTypes: map[string]model.ScalarKind{},
			Rows:        []model.Row{},
		}
	}

	id := uuid.New().String()
	name := path.Base(strings.ReplaceAll(originalName, "\\", "/"))
	key := storage.ObjectKey(ownerID, id, name)

	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": name,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rec = &model.UploadRecord{
		ID:           id,
		OwnerID:      ownerID,
		Filename:     path.Base(key),
		OriginalName: name,
		StoragePath:  objInfo.Key,
		Size:         int64(len(data)),
		ContentType:  contentType,
		Columns:      decoded.Columns,
		ColumnTypes:  decoded.ColumnTypes,
		Rows:         decoded.Rows,
		RowCount:     len(decoded.Rows),
		Status:       model.StatusForRows(len(decoded.Rows)),
		CreatedAt:    s.now().UTC(),
	}
	span.SetAttributes(
		attribute.String("upload.id", id),
		attribute.String("upload.status", string(rec.Status)),
		attribute.Int("upload.rows", rec.RowCount),
	)

	stored, err := s.uploads.Create(ctx, rec)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.metrics.ObserveIngestion(stored.Status, stored.RowCount)
	return stored, nil
}

func (s *uploadService) Get(ctx context.Context, actor model.Actor, id string) (*model.UploadRecord, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rec, err := s.uploads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !actor.CanAccess(rec.OwnerID) {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *uploadService) History(ctx context.Context, actor model.Actor, q repository.ListQuery) ([]model.UploadMeta, error) {
	return s.uploads.ListByOwner(ctx, actor.ID, q)
}

func (s *uploadService) Download(ctx context.Context, actor model.Actor, id string) (io.ReadCloser, *model.UploadRecord, error) {
	rec, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	rc, _, err := s.store.Get(ctx, rec.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("get from storage: %w", err)
	}
	return rc, rec, nil
}

func (s *uploadService) DownloadURL(ctx context.Context, actor model.Actor, id string, expiry time.Duration) (string, error) {
	rec, err := s.Get(ctx, actor, id)
	if err != nil {
		return "", err
	}
	switch {
	case expiry <= 0:
		expiry = DefaultURLExpiry
	case expiry > MaxURLExpiry:
		expiry = MaxURLExpiry
	}
	return s.store.PresignGet(ctx, rec.StoragePath, rec.OriginalName, expiry)
}

func (s *uploadService) Export(ctx context.Context, actor model.Actor, id string) ([]byte, *model.UploadRecord, error) {
	rec, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}
	if len(rec.Rows) == 0 {
		return nil, nil, ErrEmptyInput
	}
	b, err := sheet.Encode(rec.Columns, rec.Rows)
	if err != nil {
		return nil, nil, fmt.Errorf("encode workbook: %w", err)
	}
	return b, rec, nil
}

func (s *uploadService) Delete(ctx context.Context, actor model.Actor, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	rec, err := s.uploads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if !actor.CanAccess(rec.OwnerID) {
		return ErrNotFound
	}
	// Blob first; if it fails the row stays.
	if err := s.store.Delete(ctx, rec.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.uploads.Delete(ctx, id)
}

func (s *uploadService) DeleteAllByOwner(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return ErrIDRequired
	}
	paths, err := s.uploads.DeleteAllByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	var errs []error
	for _, p := range paths {
		if err := s.store.Delete(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("delete storage %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}
