package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"sheetdash/internal/model"
	"sheetdash/internal/repository"
)

// UploadPostgres is a PostgreSQL implementation of repository.UploadRepository.
// Decoded rows, column names and column types are stored as JSONB next to the metadata.
type UploadPostgres struct {
	db *sql.DB
}

// NewUploadPostgres creates a new UploadPostgres repository.
func NewUploadPostgres(db *sql.DB) *UploadPostgres {
	return &UploadPostgres{db: db}
}

var _ repository.UploadRepository = (*UploadPostgres)(nil)

const metaColumns = `id, owner_id, filename, original_name, storage_path, size, content_type, row_count, status, created_at`

// Create inserts the record and returns it with the id and created_at stored by the database.
func (r *UploadPostgres) Create(ctx context.Context, rec *model.UploadRecord) (*model.UploadRecord, error) {
	columns, err := json.Marshal(nonNilColumns(rec.Columns))
	if err != nil {
		return nil, fmt.Errorf("encode columns: %w", err)
	}
	types := rec.ColumnTypes
	if types == nil {
		types = map[string]model.ScalarKind{}
	}
	columnTypes, err := json.Marshal(types)
	if err != nil {
		return nil, fmt.Errorf("encode column types: %w", err)
	}
	rows := rec.Rows
	if rows == nil {
		rows = []model.Row{}
	}
	dataRows, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode rows: %w", err)
	}

	const q = `
		INSERT INTO uploads (id, owner_id, filename, original_name, storage_path, size, content_type,
			column_names, column_types, data_rows, row_count, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	out := *rec
	out.Rows = rows
	out.ColumnTypes = types
	out.Columns = nonNilColumns(rec.Columns)
	if err := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.OwnerID,
		rec.Filename,
		rec.OriginalName,
		rec.StoragePath,
		rec.Size,
		rec.ContentType,
		string(columns),
		string(columnTypes),
		string(dataRows),
		rec.RowCount,
		rec.Status,
		rec.CreatedAt,
	).Scan(&out.ID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single record including its rows.
func (r *UploadPostgres) FindByID(ctx context.Context, id string) (*model.UploadRecord, error) {
	const q = `
		SELECT id, owner_id, filename, original_name, storage_path, size, content_type,
			column_names, column_types, data_rows, row_count, status, created_at
		FROM uploads
		WHERE id = $1
	`
	var rec model.UploadRecord
	var columns, columnTypes, dataRows []byte
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.Filename,
		&rec.OriginalName,
		&rec.StoragePath,
		&rec.Size,
		&rec.ContentType,
		&columns,
		&columnTypes,
		&dataRows,
		&rec.RowCount,
		&rec.Status,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(columns, &rec.Columns); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}
	if err := json.Unmarshal(columnTypes, &rec.ColumnTypes); err != nil {
		return nil, fmt.Errorf("decode column types: %w", err)
	}
	if err := json.Unmarshal(dataRows, &rec.Rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return &rec, nil
}

// ListByOwner returns an owner's records without rows, newest first unless q.Sort is oldest.
func (r *UploadPostgres) ListByOwner(ctx context.Context, ownerID string, q repository.ListQuery) ([]model.UploadMeta, error) {
	var sb strings.Builder
	args := []any{ownerID}
	sb.WriteString("SELECT " + metaColumns + " FROM uploads WHERE owner_id = $1")
	if !q.Since.IsZero() {
		args = append(args, q.Since)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if q.Sort == repository.SortOldest {
		sb.WriteString(" ORDER BY created_at ASC, id ASC")
	} else {
		sb.WriteString(" ORDER BY created_at DESC, id DESC")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.UploadMeta, 0)
	for rows.Next() {
		var m model.UploadMeta
		if err := rows.Scan(
			&m.ID,
			&m.OwnerID,
			&m.Filename,
			&m.OriginalName,
			&m.StoragePath,
			&m.Size,
			&m.ContentType,
			&m.RowCount,
			&m.Status,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a record by ID. It does not return an error if the row does not exist.
func (r *UploadPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = $1`, id)
	return err
}

// DeleteAllByOwner removes an owner's records in one statement and returns their storage paths.
func (r *UploadPostgres) DeleteAllByOwner(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `DELETE FROM uploads WHERE owner_id = $1 RETURNING storage_path`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make([]string, 0)
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// CountByOwner counts an owner's records within tr.
func (r *UploadPostgres) CountByOwner(ctx context.Context, ownerID string, tr *repository.TimeRange) (int, error) {
	where, args := rangeClause("owner_id = $1", []any{ownerID}, tr)
	return r.count(ctx, where, args)
}

// CountAll counts every record within tr.
func (r *UploadPostgres) CountAll(ctx context.Context, tr *repository.TimeRange) (int, error) {
	where, args := rangeClause("TRUE", nil, tr)
	return r.count(ctx, where, args)
}

func (r *UploadPostgres) count(ctx context.Context, where string, args []any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM uploads WHERE "+where, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// TopOwners returns the n owners with the most uploads.
func (r *UploadPostgres) TopOwners(ctx context.Context, n int) ([]repository.OwnerCount, error) {
	const q = `
		SELECT owner_id, COUNT(*) AS upload_count
		FROM uploads
		GROUP BY owner_id
		ORDER BY upload_count DESC, owner_id ASC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]repository.OwnerCount, 0, n)
	for rows.Next() {
		var oc repository.OwnerCount
		if err := rows.Scan(&oc.OwnerID, &oc.UploadCount); err != nil {
			return nil, err
		}
		out = append(out, oc)
	}
	return out, rows.Err()
}

// rangeClause appends created_at bounds of tr to a WHERE condition.
func rangeClause(where string, args []any, tr *repository.TimeRange) (string, []any) {
	if tr == nil {
		return where, args
	}
	if !tr.From.IsZero() {
		args = append(args, tr.From)
		where += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !tr.To.IsZero() {
		args = append(args, tr.To)
		where += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	return where, args
}

func nonNilColumns(c []string) []string {
	if c == nil {
		return []string{}
	}
	return c
}
