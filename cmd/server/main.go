package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/workforce-api/internal/auth"
	"github.com/yukikurage/workforce-api/internal/config"
	"github.com/yukikurage/workforce-api/internal/database"
	"github.com/yukikurage/workforce-api/internal/handlers"
	"github.com/yukikurage/workforce-api/internal/logging"
	"github.com/yukikurage/workforce-api/internal/metrics"
	"github.com/yukikurage/workforce-api/internal/notify"
	"github.com/yukikurage/workforce-api/internal/repository"
	"github.com/yukikurage/workforce-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.IsProduction())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Connect to database and run migrations
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	// Token denylist and session store share redis when it is configured
	var (
		denylist     auth.Denylist = auth.NopDenylist{}
		sessionStore sessions.Store
	)
	if addr := cfg.RedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		denylist = auth.NewRedisDenylist(client)

		sessionStore, err = redisStore.NewStoreWithDB(
			10,    // Redis pool size
			"tcp", // network type
			addr,
			"", // username (empty for default user)
			cfg.Redis.Password,
			strconv.Itoa(cfg.Redis.DB),
			[]byte(cfg.Session.Secret),
		)
		if err != nil {
			return fmt.Errorf("failed to create redis session store: %w", err)
		}
	} else {
		log.Warn("REDIS_HOST is not set; logout revocation is disabled and sessions live in cookies")
		sessionStore = cookie.NewStore([]byte(cfg.Session.Secret))
	}
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	// Repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Notifications go through the broker when one is configured
	var notifier notify.Notifier = notify.NewStoreNotifier(notificationRepo, log)
	if cfg.RabbitMQ.DSN != "" {
		conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		defer conn.Close()

		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to open rabbitmq channel: %w", err)
		}
		defer ch.Close()

		if _, err := notify.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			return err
		}
		notifier = notify.NewAMQPNotifier(ch, cfg.RabbitMQ.Queue, log)
	}
	notifier = notify.Async(notifier, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second, log)

	// Services
	m := metrics.New()
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	identity := services.NewIdentityService(userRepo, tokens, denylist)
	authService := services.NewAuthService(userRepo, identity, tokens, denylist, log)
	attendanceService := services.NewAttendanceService(attendanceRepo, loc, services.SystemClock, m)
	taskService := services.NewTaskService(
		taskRepo, userRepo, projectRepo, teamRepo, auditRepo,
		services.NewTaskVisibility(teamRepo), notifier, log,
	)
	statsService := services.NewStatsService(
		userRepo, taskRepo, projectRepo, teamRepo, attendanceRepo, auditRepo,
		loc, services.SystemClock,
	)

	if err := authService.EnsureInitialAdmin(ctx, services.SignupInput{
		Email:    cfg.InitialAdmin.Email,
		Password: cfg.InitialAdmin.Password,
		FullName: cfg.InitialAdmin.FullName,
	}); err != nil {
		return err
	}

	// Initialize router
	router := handlers.NewRouter(handlers.RouterConfig{
		Log:            log,
		Metrics:        m,
		SessionStore:   sessionStore,
		Identity:       identity,
		RequestTimeout: cfg.RequestTimeout(),
	}, handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Attendance:   handlers.NewAttendanceHandler(attendanceService),
		Task:         handlers.NewTaskHandler(taskService),
		Project:      handlers.NewProjectHandler(services.NewProjectService(projectRepo, taskRepo, teamRepo, auditRepo, log)),
		Team:         handlers.NewTeamHandler(services.NewTeamService(teamRepo, userRepo, auditRepo, notifier, log)),
		User:         handlers.NewUserHandler(services.NewUserService(userRepo, auditRepo, log)),
		Dashboard:    handlers.NewDashboardHandler(statsService),
		Notification: handlers.NewNotificationHandler(services.NewNotificationService(notificationRepo)),
		Health:       handlers.NewHealthHandler(db),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
