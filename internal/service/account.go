package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"sheetdash/internal/model"
	"sheetdash/internal/repository"
)

// Profile is an account with the number of uploads it owns.
type Profile struct {
	model.Account
	UploadCount int `json:"upload_count"`
}

// AccountService covers self-service account operations.
type AccountService interface {
	Register(ctx context.Context, name, email string) (*model.Account, error)
	Me(ctx context.Context, actor model.Actor) (*Profile, error)
	UpdateName(ctx context.Context, actor model.Actor, name string) (*model.Account, error)
	// DeleteMe removes the caller's uploads, blobs and account.
	DeleteMe(ctx context.Context, actor model.Actor) error
	// EnsureSuperadmin creates the account with the superadmin role, or promotes it when the email exists.
	EnsureSuperadmin(ctx context.Context, name, email string) (*model.Account, error)
}

type accountService struct {
	accounts repository.AccountRepository
	uploads  repository.UploadRepository
	files    UploadService
	now      func() time.Time
}

// NewAccountService constructs a new AccountService.
func NewAccountService(accounts repository.AccountRepository, uploads repository.UploadRepository, files UploadService) AccountService {
	return &accountService{accounts: accounts, uploads: uploads, files: files, now: time.Now}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return email, nil
}

func (s *accountService) Register(ctx context.Context, name, email string) (*model.Account, error) {
	return s.create(ctx, name, email, model.RoleUser)
}

func (s *accountService) create(ctx context.Context, name, email string, role model.Role) (*model.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	acc, err := s.accounts.Create(ctx, &model.Account{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		Role:      role,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return acc, nil
}

func (s *accountService) Me(ctx context.Context, actor model.Actor) (*Profile, error) {
	acc, err := s.accounts.FindByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	n, err := s.uploads.CountByOwner(ctx, actor.ID, nil)
	if err != nil {
		return nil, err
	}
	return &Profile{Account: *acc, UploadCount: n}, nil
}

func (s *accountService) UpdateName(ctx context.Context, actor model.Actor, name string) (*model.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	acc, err := s.accounts.UpdateName(ctx, actor.ID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return acc, nil
}

func (s *accountService) DeleteMe(ctx context.Context, actor model.Actor) error {
	if err := s.files.DeleteAllByOwner(ctx, actor.ID); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, actor.ID)
}

func (s *accountService) EnsureSuperadmin(ctx context.Context, name, email string) (*model.Account, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	existing, err := s.accounts.FindByEmail(ctx, normalized)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return s.create(ctx, name, normalized, model.RoleSuperadmin)
	case err != nil:
		return nil, err
	case existing.Role == model.RoleSuperadmin:
		return existing, nil
	}
	return s.accounts.UpdateRole(ctx, existing.ID, model.RoleSuperadmin)
}
