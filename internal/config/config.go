package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	GinMode     string `env:"GIN_MODE" envDefault:"debug"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"8080"`
		RequestTimeout  int    `env:"REQUEST_TIMEOUT" envDefault:"15"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		Driver       string `env:"DRIVER" envDefault:"postgres"`
		Host         string `env:"HOST" envDefault:"localhost"`
		Port         string `env:"PORT" envDefault:"5432"`
		User         string `env:"USER" envDefault:"workforce"`
		Password     string `env:"PASSWORD" envDefault:"workforce"`
		Name         string `env:"NAME" envDefault:"workforce"`
		SSLMode      string `env:"SSLMODE" envDefault:"disable"`
		LogLevel     string `env:"LOG_LEVEL" envDefault:"warn"`
		MaxOpenConns int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
	} `envPrefix:"DB_"`
	Redis struct {
		Host     string `env:"HOST"`
		Port     int    `env:"PORT" envDefault:"6379"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	} `envPrefix:"REDIS_"`
	Session struct {
		Secret string `env:"SECRET" envDefault:"default-secret-key-change-me"`
		MaxAge int    `env:"MAX_AGE" envDefault:"604800"` // 7 days
	} `envPrefix:"SESSION_"`
	JWT struct {
		Secret     string        `env:"SECRET,notEmpty"`
		AccessTTL  time.Duration `env:"ACCESS_TTL" envDefault:"15m"`
		RefreshTTL time.Duration `env:"REFRESH_TTL" envDefault:"168h"`
	} `envPrefix:"JWT_"`
	RabbitMQ struct {
		DSN            string `env:"DSN"`
		Queue          string `env:"QUEUE" envDefault:"notifications"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"5"`
	} `envPrefix:"RABBITMQ_"`
	SMTP struct {
		Host     string `env:"HOST"`
		Port     int    `env:"PORT" envDefault:"465"`
		Username string `env:"USERNAME"`
		Password string `env:"PASSWORD"`
		From     string `env:"FROM"`
	} `envPrefix:"SMTP_"`
	Attendance struct {
		Timezone string `env:"TIMEZONE" envDefault:"UTC"`
	} `envPrefix:"ATTENDANCE_"`
	InitialAdmin struct {
		Email    string `env:"EMAIL"`
		Password string `env:"PASSWORD"`
		FullName string `env:"FULL_NAME" envDefault:"Administrator"`
	} `envPrefix:"INITIAL_ADMIN_"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// first error keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Location returns the time zone attendance day keys are computed in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Attendance.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE %q: %w", c.Attendance.Timezone, err)
	}
	return loc, nil
}

// RequestTimeout returns the per-request deadline.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// ShutdownTimeout returns the graceful shutdown grace period.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeout) * time.Second
}

// RedisAddr returns host:port, or "" when redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
