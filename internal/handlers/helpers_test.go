package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workforce-api/internal/auth"
	apierrors "github.com/yukikurage/workforce-api/internal/errors"
	"github.com/yukikurage/workforce-api/internal/metrics"
	"github.com/yukikurage/workforce-api/internal/models"
	"github.com/yukikurage/workforce-api/internal/notify"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/services"
	"github.com/yukikurage/workforce-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "handler-test-secret"

type memDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (d *memDenylist) Revoke(_ context.Context, tokenID string, until time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = until
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.revoked[tokenID]
	return ok, nil
}

// testServer is the full router over an in-memory database.
type testServer struct {
	t           *testing.T
	db          *gorm.DB
	fx          *testutil.Fixtures
	router      *gin.Engine
	tokens      *auth.TokenManager
	authService *services.AuthService
	now         time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	log := zap.NewNop()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	denylist := &memDenylist{revoked: make(map[string]time.Time)}
	tokens := auth.NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour).WithClock(clock)
	identity := services.NewIdentityService(userRepo, tokens, denylist)
	authService := services.NewAuthService(userRepo, identity, tokens, denylist, log)
	notifier := notify.NewStoreNotifier(notificationRepo, log)
	m := metrics.New()

	router := NewRouter(RouterConfig{
		Log:            log,
		Metrics:        m,
		SessionStore:   cookie.NewStore([]byte("secret")),
		Identity:       identity,
		RequestTimeout: 5 * time.Second,
	}, Handlers{
		Auth:       NewAuthHandler(authService),
		Attendance: NewAttendanceHandler(services.NewAttendanceService(attendanceRepo, time.UTC, clock, m)),
		Task: NewTaskHandler(services.NewTaskService(
			taskRepo, userRepo, projectRepo, teamRepo, auditRepo,
			services.NewTaskVisibility(teamRepo), notifier, log,
		)),
		Project:      NewProjectHandler(services.NewProjectService(projectRepo, taskRepo, teamRepo, auditRepo, log)),
		Team:         NewTeamHandler(services.NewTeamService(teamRepo, userRepo, auditRepo, notifier, log)),
		User:         NewUserHandler(services.NewUserService(userRepo, auditRepo, log)),
		Dashboard:    NewDashboardHandler(services.NewStatsService(userRepo, taskRepo, projectRepo, teamRepo, attendanceRepo, auditRepo, time.UTC, clock)),
		Notification: NewNotificationHandler(services.NewNotificationService(notificationRepo)),
		Health:       NewHealthHandler(db),
	})

	return &testServer{
		t:           t,
		db:          db,
		fx:          testutil.NewFixtures(t, db),
		router:      router,
		tokens:      tokens,
		authService: authService,
		now:         now,
	}
}

// bearer issues an access token for user.
func (s *testServer) bearer(user *models.User) string {
	s.t.Helper()
	pair, err := s.tokens.IssuePair(user)
	require.NoError(s.t, err)
	return pair.AccessToken
}

// request sends a JSON request, authenticated as user when user is non-nil.
func (s *testServer) request(method, path string, body interface{}, user *models.User, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+s.bearer(user))
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// requestWithToken sends a bodiless request with an explicit bearer token.
func (s *testServer) requestWithToken(method, path, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierrors.APIError
	decodeJSON(t, w, &body)
	return body.Code
}

func idString(id uint64) string {
	return strconv.FormatUint(id, 10)
}
