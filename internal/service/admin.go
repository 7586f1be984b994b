package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sheetdash/internal/model"
	"sheetdash/internal/repository"
)

const (
	recentAccountsLimit = 10
	topUploadersLimit   = 10
)

// AdminStats is the activity overview of the admin dashboard.
type AdminStats struct {
	TotalUsers       int `json:"totalUsers"`
	UsersToday       int `json:"usersToday"`
	UsersThisWeek    int `json:"usersThisWeek"`
	UsersThisMonth   int `json:"usersThisMonth"`
	TotalUploads     int `json:"totalUploads"`
	UploadsToday     int `json:"uploadsToday"`
	UploadsThisWeek  int `json:"uploadsThisWeek"`
	UploadsThisMonth int `json:"uploadsThisMonth"`
}

// AdminDashboard pairs the activity overview with the newest accounts.
type AdminDashboard struct {
	Stats       AdminStats      `json:"stats"`
	RecentUsers []model.Account `json:"recentUsers"`
}

// RoleCount is the number of accounts holding one role.
type RoleCount struct {
	Role  model.Role `json:"role"`
	Count int        `json:"count"`
}

// SystemStats is the superadmin view over every account.
type SystemStats struct {
	TotalUsers       int                     `json:"totalUsers"`
	TotalAdmins      int                     `json:"totalAdmins"`
	TotalSuperadmins int                     `json:"totalSuperadmins"`
	TotalUploads     int                     `json:"totalUploads"`
	UsersByRole      []RoleCount             `json:"usersByRole"`
	TopUploaders     []repository.OwnerCount `json:"topUploaders"`
}

// AccountDetails is an account with the metadata of its uploads.
type AccountDetails struct {
	Account model.Account      `json:"user"`
	Files   []model.UploadMeta `json:"files"`
}

// AdminService holds the cross-account use cases. Role checks on the caller
// happen in the transport; the service enforces rules between caller and target.
type AdminService interface {
	Stats(ctx context.Context) (*AdminDashboard, error)
	GlobalStats(ctx context.Context) (*SystemStats, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	AccountDetails(ctx context.Context, id string) (*AccountDetails, error)
	// DeleteAccount removes an account with its uploads and blobs. A missing account is not an error.
	DeleteAccount(ctx context.Context, actor model.Actor, id string) error
	// DeleteAccountUpload removes one upload that must belong to accountID, under the
	// same hierarchy as DeleteAccount. A missing upload is not an error.
	DeleteAccountUpload(ctx context.Context, actor model.Actor, accountID, uploadID string) error
	Promote(ctx context.Context, actor model.Actor, id string) (*model.Account, error)
	Demote(ctx context.Context, actor model.Actor, id string) (*model.Account, error)
	ListAdmins(ctx context.Context) ([]model.Account, error)
}

type adminService struct {
	accounts repository.AccountRepository
	uploads  repository.UploadRepository
	files    UploadService
	now      func() time.Time
}

// NewAdminService constructs a new AdminService.
func NewAdminService(accounts repository.AccountRepository, uploads repository.UploadRepository, files UploadService) AdminService {
	return &adminService{accounts: accounts, uploads: uploads, files: files, now: time.Now}
}

func (s *adminService) Stats(ctx context.Context) (*AdminDashboard, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	windows := []time.Time{today, now.AddDate(0, 0, -7), now.AddDate(0, -1, 0)}

	var st AdminStats
	var err error
	users := []*int{&st.UsersToday, &st.UsersThisWeek, &st.UsersThisMonth}
	uploads := []*int{&st.UploadsToday, &st.UploadsThisWeek, &st.UploadsThisMonth}
	for i, since := range windows {
		if *users[i], err = s.accounts.CountSince(ctx, since); err != nil {
			return nil, fmt.Errorf("count accounts: %w", err)
		}
		if *uploads[i], err = s.uploads.CountAll(ctx, &repository.TimeRange{From: since}); err != nil {
			return nil, fmt.Errorf("count uploads: %w", err)
		}
	}
	byRole, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	for _, n := range byRole {
		st.TotalUsers += n
	}
	if st.TotalUploads, err = s.uploads.CountAll(ctx, nil); err != nil {
		return nil, fmt.Errorf("count uploads: %w", err)
	}

	recent, err := s.accounts.ListRecent(ctx, recentAccountsLimit)
	if err != nil {
		return nil, fmt.Errorf("recent accounts: %w", err)
	}
	return &AdminDashboard{Stats: st, RecentUsers: recent}, nil
}

func (s *adminService) GlobalStats(ctx context.Context) (*SystemStats, error) {
	byRole, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count roles: %w", err)
	}
	uploads, err := s.uploads.CountAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("count uploads: %w", err)
	}
	top, err := s.uploads.TopOwners(ctx, topUploadersLimit)
	if err != nil {
		return nil, fmt.Errorf("top uploaders: %w", err)
	}

	st := &SystemStats{
		TotalAdmins:      byRole[model.RoleAdmin],
		TotalSuperadmins: byRole[model.RoleSuperadmin],
		TotalUploads:     uploads,
		UsersByRole:      make([]RoleCount, 0, 3),
		TopUploaders:     top,
	}
	for _, r := range []model.Role{model.RoleUser, model.RoleAdmin, model.RoleSuperadmin} {
		st.TotalUsers += byRole[r]
		st.UsersByRole = append(st.UsersByRole, RoleCount{Role: r, Count: byRole[r]})
	}
	return st, nil
}

func (s *adminService) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.accounts.List(ctx, nil)
}

func (s *adminService) ListAdmins(ctx context.Context) ([]model.Account, error) {
	role := model.RoleAdmin
	return s.accounts.List(ctx, &role)
}

func (s *adminService) AccountDetails(ctx context.Context, id string) (*AccountDetails, error) {
	acc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	files, err := s.uploads.ListByOwner(ctx, id, repository.ListQuery{})
	if err != nil {
		return nil, err
	}
	return &AccountDetails{Account: *acc, Files: files}, nil
}

func (s *adminService) DeleteAccount(ctx context.Context, actor model.Actor, id string) error {
	acc, err := s.find(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := canManage(actor, acc); err != nil {
		return err
	}
	if err := s.files.DeleteAllByOwner(ctx, id); err != nil {
		return err
	}
	return s.accounts.Delete(ctx, id)
}

func (s *adminService) DeleteAccountUpload(ctx context.Context, actor model.Actor, accountID, uploadID string) error {
	if accountID == "" || uploadID == "" {
		return ErrIDRequired
	}
	rec, err := s.uploads.FindByID(ctx, uploadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}
	if rec.OwnerID != accountID {
		return ErrNotFound
	}
	if accountID != actor.ID {
		owner, err := s.find(ctx, accountID)
		if err != nil {
			return err
		}
		if err := canManage(actor, owner); err != nil {
			return err
		}
	}
	return s.files.Delete(ctx, actor, uploadID)
}

func (s *adminService) Promote(ctx context.Context, actor model.Actor, id string) (*model.Account, error) {
	return s.setRole(ctx, actor, id, model.RoleAdmin)
}

func (s *adminService) Demote(ctx context.Context, actor model.Actor, id string) (*model.Account, error) {
	return s.setRole(ctx, actor, id, model.RoleUser)
}

func (s *adminService) setRole(ctx context.Context, actor model.Actor, id string, role model.Role) (*model.Account, error) {
	if id == actor.ID {
		return nil, ErrSelfDemotion
	}
	acc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc.Role == model.RoleSuperadmin {
		return nil, ErrForbidden
	}
	if acc.Role == role {
		return acc, nil
	}
	updated, err := s.accounts.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *adminService) find(ctx context.Context, id string) (*model.Account, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	acc, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return acc, nil
}

// canManage allows acting on accounts strictly below the actor's role.
// A superadmin may manage anyone except itself.
func canManage(actor model.Actor, target *model.Account) error {
	if actor.ID == target.ID {
		return ErrForbidden
	}
	if actor.Role == model.RoleSuperadmin || target.Role.Level() < actor.Role.Level() {
		return nil
	}
	return ErrForbidden
}
