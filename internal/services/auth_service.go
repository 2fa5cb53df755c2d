package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/database"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = apierrors.New(apierrors.ErrConflict, "email already registered")
	ErrInvalidCredentials = apierrors.New(apierrors.ErrInvalidCredentials, "invalid email or password")
	ErrAccountDeactivated = apierrors.New(apierrors.ErrForbidden, "account is deactivated")
	ErrPasswordTooShort   = apierrors.New(apierrors.ErrInvalidInput, fmt.Sprintf("password must be at least %d characters", constants.MinPasswordLength))
	ErrInvalidEmail       = apierrors.New(apierrors.ErrInvalidInput, "invalid email address")
	ErrFullNameRequired   = apierrors.New(apierrors.ErrInvalidInput, "full name is required")
	ErrUserNotFound       = apierrors.New(apierrors.ErrNotFound, "user not found")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	identity *IdentityService
	tokens   *auth.TokenManager
	denylist auth.Denylist
	log      *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, identity *IdentityService, tokens *auth.TokenManager, denylist auth.Denylist, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		identity: identity,
		tokens:   tokens,
		denylist: denylist,
		log:      log,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	User   *models.User
	Tokens *auth.TokenPair
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Signup creates a TEAM_MEMBER account and signs it in.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	user, err := s.createUser(ctx, input, models.RoleTeamMember)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

func (s *AuthService) createUser(ctx context.Context, input SignupInput, role models.Role) (*models.User, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FullName:     fullName,
		Role:         role,
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues tokens.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	tokens, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	id, err := s.identity.Authenticate(ctx, refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, err
	}

	access, exp, err := s.tokens.IssueAccess(id.User)
	if err != nil {
		return nil, err
	}

	return &auth.TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		ExpiresAt:    exp,
	}, nil
}

// Logout revokes the presented token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	if err := s.denylist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// EnsureInitialAdmin creates the bootstrap SUPER_ADMIN if no account with
// that email exists yet. It is a no-op when email is empty.
func (s *AuthService) EnsureInitialAdmin(ctx context.Context, input SignupInput) error {
	if strings.TrimSpace(input.Email) == "" {
		return nil
	}

	_, err := s.createUser(ctx, input, models.RoleSuperAdmin)
	switch {
	case err == nil:
		s.log.Info("created initial admin", zap.String("email", strings.ToLower(input.Email)))
		return nil
	case errors.Is(err, ErrEmailTaken):
		return nil
	default:
		return fmt.Errorf("failed to create initial admin: %w", err)
	}
}
