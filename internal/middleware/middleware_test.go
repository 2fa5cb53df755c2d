package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/metrics"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type AuthMiddlewareTestSuite struct {
	suite.Suite
	db     *gorm.DB
	fx     *testutil.Fixtures
	tokens *auth.TokenManager
	router *gin.Engine
}

func (suite *AuthMiddlewareTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.fx = testutil.NewFixtures(suite.T(), suite.db)
	suite.tokens = auth.NewTokenManager("test-secret", time.Minute, time.Hour)
	identity := services.NewIdentityService(repository.NewUserRepository(suite.db), suite.tokens, auth.NopDenylist{})

	suite.router = gin.New()
	suite.router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	suite.router.POST("/session", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.SessionKeyToken, c.Query("token"))
		require.NoError(suite.T(), session.Save())
		c.Status(http.StatusNoContent)
	})

	protected := suite.router.Group("/", RequireAuth(identity))
	protected.GET("/me", func(c *gin.Context) {
		user, _ := GetCurrentUser(c)
		id, _ := GetUserID(c)
		claims, ok := GetClaims(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email, "id": id, "hasClaims": ok && claims != nil})
	})
	protected.POST("/teams", RequireCapability(policy.CreateTeam), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
}

func (suite *AuthMiddlewareTestSuite) token(user *models.User) string {
	token, _, err := suite.tokens.IssueAccess(user)
	suite.Require().NoError(err)
	return token
}

func (suite *AuthMiddlewareTestSuite) do(method, path, token string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthMiddlewareTestSuite) TestBearerToken() {
	user := suite.fx.User("member@example.com", models.RoleTeamMember)

	w := suite.do(http.MethodGet, "/me", suite.token(user))
	suite.Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), `"email":"member@example.com"`)
	suite.Contains(w.Body.String(), `"hasClaims":true`)
}

func (suite *AuthMiddlewareTestSuite) TestSessionToken() {
	user := suite.fx.User("member@example.com", models.RoleTeamMember)

	w := suite.do(http.MethodPost, "/session?token="+suite.token(user), "")
	suite.Require().Equal(http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	suite.Require().NotEmpty(cookies)

	w = suite.do(http.MethodGet, "/me", "", cookies...)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *AuthMiddlewareTestSuite) TestRejections() {
	inactive := suite.fx.InactiveUser("gone@example.com", models.RoleSuperAdmin)

	w := suite.do(http.MethodGet, "/me", "")
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), `"code":"UNAUTHORIZED"`)

	w = suite.do(http.MethodGet, "/me", "garbage")
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodGet, "/me", suite.token(inactive))
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *AuthMiddlewareTestSuite) TestRequireCapability() {
	member := suite.fx.User("member@example.com", models.RoleTeamMember)
	hr := suite.fx.User("hr@example.com", models.RoleHR)

	w := suite.do(http.MethodPost, "/teams", suite.token(member))
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), `"code":"FORBIDDEN"`)

	w = suite.do(http.MethodPost, "/teams", suite.token(hr))
	suite.Equal(http.StatusCreated, w.Code)
}

func TestAuthMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareTestSuite))
}

func TestParseIDParam(t *testing.T) {
	router := gin.New()
	router.GET("/tasks/:id", ParseIDParam("id"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetIDParam(c, "id")})
	})

	tests := []struct {
		path string
		code int
	}{
		{"/tasks/42", http.StatusOK},
		{"/tasks/0", http.StatusBadRequest},
		{"/tasks/-1", http.StatusBadRequest},
		{"/tasks/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), RequestLogger(zap.NewNop()))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(constants.HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(constants.HeaderRequestID))
}

func TestTimeout(t *testing.T) {
	router := gin.New()
	router.Use(Timeout(50 * time.Millisecond))

	var deadline time.Time
	var hasDeadline bool
	router.GET("/slow", func(c *gin.Context) {
		deadline, hasDeadline = c.Request.Context().Deadline()
		<-c.Request.Context().Done()
		assert.ErrorIs(t, c.Request.Context().Err(), context.DeadlineExceeded)
		c.Status(http.StatusGatewayTimeout)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.True(t, hasDeadline)
	assert.False(t, deadline.IsZero())
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestMetricsMiddleware(t *testing.T) {
	m := metrics.New()
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/tasks/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/7", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="/tasks/:id",status="200"} 1`)
}
