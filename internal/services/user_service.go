package services

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole          = apierrors.New(apierrors.ErrInvalidInput, "invalid role")
	ErrCannotDeactivateSelf = apierrors.New(apierrors.ErrInvalidInput, "you cannot deactivate your own account")
)

// UserService handles user administration
type UserService struct {
	userRepo repository.UserRepository
	audit    auditor
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, auditRepo repository.AuditLogRepository, log *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		audit:    auditor{repo: auditRepo, log: log},
	}
}

// ListUsersInput represents filters for listing users
type ListUsersInput struct {
	Role     *models.Role
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}

// ListUsers lists users; restricted to ManageUsers
func (s *UserService) ListUsers(ctx context.Context, actor *models.User, input ListUsersInput) ([]models.User, int64, error) {
	if err := policy.Authorize(actor.Role, policy.ManageUsers); err != nil {
		return nil, 0, err
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, 0, ErrInvalidRole
	}

	users, total, err := s.userRepo.List(ctx, repository.UserFilter{
		Role:     input.Role,
		IsActive: input.IsActive,
		Search:   input.Search,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// SetActive activates or deactivates a user. Deactivated users fail
// authentication on their next request.
func (s *UserService) SetActive(ctx context.Context, actor *models.User, userID uint64, active bool) (*models.User, error) {
	if err := policy.Authorize(actor.Role, policy.ManageUsers); err != nil {
		return nil, err
	}
	if !active && userID == actor.ID {
		return nil, ErrCannotDeactivateSelf
	}

	return s.update(ctx, actor, userID, "is_active", active)
}

// ChangeRole changes a user's role; restricted to ChangeUserRole
func (s *UserService) ChangeRole(ctx context.Context, actor *models.User, userID uint64, role models.Role) (*models.User, error) {
	if err := policy.Authorize(actor.Role, policy.ChangeUserRole); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	return s.update(ctx, actor, userID, "role", role)
}

func (s *UserService) update(ctx context.Context, actor *models.User, userID uint64, column string, value interface{}) (*models.User, error) {
	before, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateFields(ctx, userID, map[string]interface{}{column: value}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	after, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.audit.record(ctx, actor.ID, models.AuditActionUpdateUser, models.AuditEntityUser, userID, before, after)
	return after, nil
}

func (s *UserService) find(ctx context.Context, userID uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
