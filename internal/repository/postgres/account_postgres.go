package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"sheetdash/internal/model"
	"sheetdash/internal/repository"
)

// AccountPostgres is a PostgreSQL implementation of repository.AccountRepository.
type AccountPostgres struct {
	db *sql.DB
}

// NewAccountPostgres creates a new AccountPostgres repository.
func NewAccountPostgres(db *sql.DB) *AccountPostgres {
	return &AccountPostgres{db: db}
}

var _ repository.AccountRepository = (*AccountPostgres)(nil)

const accountColumns = `id, name, email, role, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(s rowScanner) (*model.Account, error) {
	var a model.Account
	if err := s.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new account. A taken email yields repository.ErrDuplicate.
func (r *AccountPostgres) Create(ctx context.Context, a *model.Account) (*model.Account, error) {
	const q = `
		INSERT INTO accounts (id, name, email, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + accountColumns
	acc, err := scanAccount(r.db.QueryRowContext(ctx, q, a.ID, a.Name, a.Email, a.Role, a.CreatedAt))
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: %v", repository.ErrDuplicate, err)
	}
	return acc, err
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// FindByID fetches one account. It returns sql.ErrNoRows when absent.
func (r *AccountPostgres) FindByID(ctx context.Context, id string) (*model.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// FindByEmail fetches one account by its unique email.
func (r *AccountPostgres) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	return scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
}

// List returns accounts ordered by creation time, optionally restricted to one role.
func (r *AccountPostgres) List(ctx context.Context, role *model.Role) ([]model.Account, error) {
	if role == nil {
		return r.query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id DESC`)
	}
	return r.query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE role = $1 ORDER BY created_at DESC, id DESC`, *role)
}

// ListRecent returns the n most recently created accounts.
func (r *AccountPostgres) ListRecent(ctx context.Context, n int) ([]model.Account, error) {
	return r.query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC, id DESC LIMIT $1`, n)
}

func (r *AccountPostgres) query(ctx context.Context, q string, args ...any) ([]model.Account, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateRole sets the account role. It returns sql.ErrNoRows when absent.
func (r *AccountPostgres) UpdateRole(ctx context.Context, id string, role model.Role) (*model.Account, error) {
	const q = `UPDATE accounts SET role = $2 WHERE id = $1 RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, q, id, role))
}

// UpdateName sets the display name. It returns sql.ErrNoRows when absent.
func (r *AccountPostgres) UpdateName(ctx context.Context, id, name string) (*model.Account, error) {
	const q = `UPDATE accounts SET name = $2 WHERE id = $1 RETURNING ` + accountColumns
	return scanAccount(r.db.QueryRowContext(ctx, q, id, name))
}

// Delete removes an account. Its uploads go with it through ON DELETE CASCADE.
func (r *AccountPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	return err
}

// CountByRole returns the number of accounts per role. Roles without accounts map to 0.
func (r *AccountPostgres) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM accounts GROUP BY role`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[model.Role]int{
		model.RoleUser:       0,
		model.RoleAdmin:      0,
		model.RoleSuperadmin: 0,
	}
	for rows.Next() {
		var (
			role model.Role
			n    int
		)
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		out[role] = n
	}
	return out, rows.Err()
}

// CountSince counts accounts created at or after since.
func (r *AccountPostgres) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
