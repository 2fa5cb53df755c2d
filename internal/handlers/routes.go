package handlers

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workforce-api/internal/constants"
	"github.com/yukikurage/workforce-api/internal/metrics"
	"github.com/yukikurage/workforce-api/internal/middleware"
	"github.com/yukikurage/workforce-api/internal/policy"
	"github.com/yukikurage/workforce-api/internal/services"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler mounted by NewRouter.
type Handlers struct {
	Auth         *AuthHandler
	Attendance   *AttendanceHandler
	Task         *TaskHandler
	Project      *ProjectHandler
	Team         *TeamHandler
	User         *UserHandler
	Dashboard    *DashboardHandler
	Notification *NotificationHandler
	Health       *HealthHandler
}

// RouterConfig carries the cross-cutting pieces of the router.
type RouterConfig struct {
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	SessionStore   sessions.Store
	Identity       *services.IdentityService
	RequestTimeout time.Duration
}

// NewRouter builds the gin engine with all routes and middleware.
func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(cfg.Log),
		middleware.Metrics(cfg.Metrics),
		sessions.Sessions(constants.SessionCookieName, cfg.SessionStore),
		middleware.Timeout(cfg.RequestTimeout),
	)

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	requireAuth := middleware.RequireAuth(cfg.Identity)
	withID := middleware.ParseIDParam("id")

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/signup", h.Auth.Signup)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", requireAuth, h.Auth.Logout)
			auth.GET("/me", requireAuth, h.Auth.GetCurrentUser)
		}

		// Attendance routes (protected)
		attendance := api.Group("/attendance")
		attendance.Use(requireAuth)
		{
			attendance.POST("/check-in", h.Attendance.CheckIn)
			attendance.POST("/check-out", h.Attendance.CheckOut)
			attendance.GET("/today", h.Attendance.Today)
			attendance.GET("/me", h.Attendance.ListMine)
			attendance.GET("", middleware.RequireCapability(policy.ViewAllAttendance), h.Attendance.ListAll)
			attendance.GET("/export", middleware.RequireCapability(policy.ExportAttendance), h.Attendance.Export)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", h.Task.ListTasks)
			tasks.POST("", h.Task.CreateTask)
			tasks.GET("/:id", withID, h.Task.GetTask)
			tasks.PATCH("/:id", withID, h.Task.UpdateTask)
			tasks.PATCH("/:id/progress", withID, h.Task.UpdateProgress)
			tasks.POST("/:id/comments", withID, h.Task.AddComment)
			tasks.DELETE("/:id", withID, middleware.RequireCapability(policy.DeleteTask), h.Task.DeleteTask)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", h.Project.ListProjects)
			projects.POST("", middleware.RequireCapability(policy.CreateProject), h.Project.CreateProject)
		}

		// Team routes (protected)
		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.GET("", h.Team.ListTeams)
			teams.POST("", middleware.RequireCapability(policy.CreateTeam), h.Team.CreateTeam)
			teams.GET("/:id", withID, h.Team.GetTeam)
			teams.POST("/:id/members", withID, h.Team.AddMember)
			teams.DELETE("/:id/members/:memberId", withID, middleware.ParseIDParam("memberId"), h.Team.RemoveMember)
		}

		// User administration (protected)
		users := api.Group("/users")
		users.Use(requireAuth, middleware.RequireCapability(policy.ManageUsers))
		{
			users.GET("", h.User.ListUsers)
			users.PATCH("/:id/active", withID, h.User.SetActive)
			users.PATCH("/:id/role", withID, middleware.RequireCapability(policy.ChangeUserRole), h.User.ChangeRole)
		}

		api.GET("/dashboard/stats", requireAuth, h.Dashboard.Stats)

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", h.Notification.List)
			notifications.POST("/read-all", h.Notification.MarkAllRead)
			notifications.PATCH("/:id/read", withID, h.Notification.MarkRead)
		}
	}

	return r
}
