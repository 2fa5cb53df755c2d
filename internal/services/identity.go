package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/workforce-api/internal/auth"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMissingToken   = apierrors.New(apierrors.ErrUnauthenticated, "authentication required")
	ErrInvalidToken   = apierrors.New(apierrors.ErrUnauthenticated, "invalid or expired token")
	ErrRevokedToken   = apierrors.New(apierrors.ErrUnauthenticated, "token has been revoked")
	ErrUnknownSubject = apierrors.New(apierrors.ErrUnauthenticated, "user no longer exists")
	ErrUserInactive   = apierrors.New(apierrors.ErrUnauthenticated, "user account is deactivated")
)

// Identity is a verified caller.
type Identity struct {
	User   *models.User
	Claims *auth.Claims
}

// IdentityService maps bearer tokens to live user records.
type IdentityService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	denylist auth.Denylist
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(users repository.UserRepository, tokens *auth.TokenManager, denylist auth.Denylist) *IdentityService {
	return &IdentityService{
		users:    users,
		tokens:   tokens,
		denylist: denylist,
	}
}

// Resolve returns the user behind an access token.
func (s *IdentityService) Resolve(ctx context.Context, token string) (*models.User, error) {
	id, err := s.Authenticate(ctx, token, auth.AccessToken)
	if err != nil {
		return nil, err
	}
	return id.User, nil
}

// Authenticate verifies a token of the wanted type and loads its subject.
// The account's active flag is checked on every call, so deactivation takes
// effect immediately rather than when outstanding tokens expire.
func (s *IdentityService) Authenticate(ctx context.Context, token string, want auth.TokenType) (*Identity, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.tokens.Verify(token, want)
	if err != nil {
		return nil, ErrInvalidToken
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevokedToken
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return &Identity{User: user, Claims: claims}, nil
}
