// Package repository defines the persistence contracts for accounts and upload records.
// Implementations live in subpackages (postgres) and contain no business logic.
package repository

import (
	"context"
	"errors"
	"time"

	"sheetdash/internal/model"
)

// ErrDuplicate is returned when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// SortOrder orders listings by creation time.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// ParseSortOrder maps a query value to a SortOrder, defaulting to newest first.
func ParseSortOrder(s string) SortOrder {
	if SortOrder(s) == SortOldest {
		return SortOldest
	}
	return SortNewest
}

// ListQuery filters an owner's uploads. Limit <= 0 means no limit; a zero Since means no lower bound.
type ListQuery struct {
	Sort  SortOrder
	Limit int
	Since time.Time
}

// TimeRange is a half-open [From, To) interval; zero bounds are open.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// OwnerCount is the number of uploads of a single account.
type OwnerCount struct {
	OwnerID     string `json:"owner_id"`
	UploadCount int    `json:"upload_count"`
}

// UploadRepository persists upload records keyed by id with secondary lookup by owner.
type UploadRepository interface {
	// Create inserts a full record in a single statement.
	Create(ctx context.Context, rec *model.UploadRecord) (*model.UploadRecord, error)

	// FindByID returns the record with its rows, or sql.ErrNoRows.
	FindByID(ctx context.Context, id string) (*model.UploadRecord, error)

	// ListByOwner returns row-less projections of an owner's records.
	ListByOwner(ctx context.Context, ownerID string, q ListQuery) ([]model.UploadMeta, error)

	// Delete removes a record by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// DeleteAllByOwner removes every record of an owner and returns their storage paths.
	DeleteAllByOwner(ctx context.Context, ownerID string) ([]string, error)

	// CountByOwner counts an owner's records, optionally within a time range.
	CountByOwner(ctx context.Context, ownerID string, tr *TimeRange) (int, error)

	// CountAll counts all records, optionally within a time range.
	CountAll(ctx context.Context, tr *TimeRange) (int, error)

	// TopOwners ranks owners by upload count, descending; ties are ordered by owner id.
	TopOwners(ctx context.Context, n int) ([]OwnerCount, error)
}

// AccountRepository persists account profiles.
type AccountRepository interface {
	Create(ctx context.Context, acc *model.Account) (*model.Account, error)
	FindByID(ctx context.Context, id string) (*model.Account, error)
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// List returns accounts ordered by creation time, optionally restricted to one role.
	List(ctx context.Context, role *model.Role) ([]model.Account, error)

	// ListRecent returns the n most recently created accounts.
	ListRecent(ctx context.Context, n int) ([]model.Account, error)

	// UpdateRole and UpdateName return sql.ErrNoRows for unknown ids.
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.Account, error)
	UpdateName(ctx context.Context, id, name string) (*model.Account, error)

	// Delete removes an account; uploads cascade in the database. Missing ids are not an error.
	Delete(ctx context.Context, id string) error

	CountByRole(ctx context.Context) (map[model.Role]int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
}
