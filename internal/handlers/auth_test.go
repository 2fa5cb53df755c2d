package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/dto"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/services"
)

func TestAuthHandler_Signup(t *testing.T) {
	srv := newTestServer(t)

	w := srv.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "New.User@Example.com",
		"password": "supersecret",
		"fullName": "New User",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response dto.AuthResponse
	decodeJSON(t, w, &response)
	assert.Equal(t, "new.user@example.com", response.User.Email)
	assert.Equal(t, models.RoleTeamMember, response.User.Role)
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)

	w = srv.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "new.user@example.com",
		"password": "supersecret",
		"fullName": "Again",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apierrors.ErrCodeConflict, errorCode(t, w))
}

func TestAuthHandler_SignupValidation(t *testing.T) {
	srv := newTestServer(t)

	w := srv.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "not-an-email",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	}
	decodeJSON(t, w, &body)
	assert.Equal(t, apierrors.ErrCodeInvalidInput, body.Code)
	assert.Contains(t, body.Details, "email")
	assert.Contains(t, body.Details, "fullName")

	w = srv.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "short@example.com",
		"password": "short",
		"fullName": "Short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_LoginSessionAndLogout(t *testing.T) {
	srv := newTestServer(t)

	_, err := srv.authService.Signup(context.Background(), services.SignupInput{
		Email:    "existing@example.com",
		Password: "supersecret",
		FullName: "Existing",
	})
	require.NoError(t, err)

	w := srv.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "wrong-password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, errorCode(t, w))

	w = srv.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var login dto.AuthResponse
	decodeJSON(t, w, &login)

	var sessionCookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == constants.SessionCookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)

	// the session alone authenticates browser clients
	w = srv.request(http.MethodGet, "/api/auth/me", nil, nil, sessionCookie)
	require.Equal(t, http.StatusOK, w.Code)

	var me struct {
		User dto.UserDTO `json:"user"`
	}
	decodeJSON(t, w, &me)
	assert.Equal(t, "existing@example.com", me.User.Email)

	w = srv.request(http.MethodPost, "/api/auth/logout", nil, nil, sessionCookie)
	require.Equal(t, http.StatusOK, w.Code)

	// the revoked token no longer works even when presented directly
	w = srv.requestWithToken(http.MethodGet, "/api/auth/me", login.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	srv := newTestServer(t)

	result, err := srv.authService.Signup(context.Background(), services.SignupInput{
		Email:    "refresh@example.com",
		Password: "supersecret",
		FullName: "Refresh",
	})
	require.NoError(t, err)

	w := srv.request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refreshToken": result.Tokens.AccessToken,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "an access token is not a refresh token")

	w = srv.request(http.MethodPost, "/api/auth/refresh", map[string]string{
		"refreshToken": result.Tokens.RefreshToken,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body dto.TokenResponse
	decodeJSON(t, w, &body)
	require.NotEmpty(t, body.AccessToken)

	w = srv.requestWithToken(http.MethodGet, "/api/auth/me", body.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_DeactivatedUserRejected(t *testing.T) {
	srv := newTestServer(t)
	user := srv.fx.User("active@example.com", models.RoleTeamMember)
	token := srv.bearer(user)

	require.NoError(t, srv.db.Model(user).Update("is_active", false).Error)

	w := srv.requestWithToken(http.MethodGet, "/api/auth/me", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
