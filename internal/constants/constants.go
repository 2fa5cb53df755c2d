package constants

// Pagination
const (
	MinPageSize                  = 1
	DefaultPageSize              = 20
	DefaultAttendancePageSize    = 30
	DefaultAllAttendancePageSize = 50
	MaxPageSize                  = 100
)

// Auth
const (
	MinPasswordLength = 8
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
	ContextKeyClaims  = "claims"
	SessionCookieName = "workforce_session"
	SessionKeyToken   = "access_token"
)

// Request tracing
const (
	HeaderRequestID     = "X-Request-ID"
	ContextKeyRequestID = "request_id"
)

// Dashboard
const (
	RecentActivityLimit = 10
)

// Notification links
const (
	TasksLink = "/tasks"
	TeamsLink = "/teams"
)
