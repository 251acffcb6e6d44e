// Package main is the entrypoint for the usersvc API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/usersvc/usersvc/internal/cache"
	"github.com/usersvc/usersvc/internal/config"
	"github.com/usersvc/usersvc/internal/events"
	"github.com/usersvc/usersvc/internal/handler"
	"github.com/usersvc/usersvc/internal/metrics"
	"github.com/usersvc/usersvc/internal/middleware"
	"github.com/usersvc/usersvc/internal/repository"
	"github.com/usersvc/usersvc/internal/router"
	"github.com/usersvc/usersvc/internal/server"
	"github.com/usersvc/usersvc/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)
	metricsRecorder, snapshotter, exporter := initMetrics(cfg.MetricsBackend)

	srv := server.New(nil, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Initialize user store
	var (
		store       repository.UserStore
		storeHealth handler.HealthCheck
	)
	if cfg.UsesPostgres() {
		if cfg.AutoMigrate {
			if err := migrate(ctx, cfg.DatabaseURL, logger); err != nil {
				logger.Error("failed to apply migrations",
					slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				)
				os.Exit(1)
			}
		}

		repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			logger.Error(
				"failed to connect to database",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
				slog.String("database_url", redactURL(cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		srv.OnShutdown("postgres", func(ctx context.Context) error {
			repo.Close()
			return nil
		})
		logger.Info("connected to database")

		store = repo
		storeHealth = handler.HealthCheck{Name: "postgres", Checker: repo}
	} else {
		mem := repository.NewMemory()
		logger.Warn("using in-memory user store; data is lost on restart")

		store = mem
		storeHealth = handler.HealthCheck{Name: "memory", Checker: mem}
	}

	// Optional Redis: user cache and event stream
	deps := service.UserServiceDeps{
		Store:   store,
		Metrics: metricsRecorder,
		Logger:  logger,
	}
	redisHealth := handler.HealthCheck{Name: "redis"}

	if cfg.RedisURL != "" && !cfg.UsesRedis() {
		logger.Warn("ignoring REDIS_URL: user cache and events need the postgres storage backend",
			"storage_backend", cfg.StorageBackend,
		)
	}

	if cfg.UsesRedis() {
		cacheClient, err := cache.New(ctx, cfg.RedisURL, cfg.UserCacheTTL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
		logger.Info("connected to Redis")

		deps.Cache = cacheClient
		redisHealth.Checker = cacheClient

		if cfg.EventsEnabled {
			publisher := events.NewPublisher(cacheClient.Client(), logger, metricsRecorder)
			srv.OnShutdown("events", publisher.Close)
			deps.Publisher = publisher
		}
	}

	userService := service.NewUserService(deps)

	security := middleware.DefaultSecurityConfig()
	security.IsDevelopment = cfg.IsDevelopment()
	security.MaxRequestBodySize = cfg.MaxRequestBodySize

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	srv.SetHandler(router.New(router.Deps{
		Users:           userService,
		HealthChecks:    []handler.HealthCheck{storeHealth, redisHealth},
		Metrics:         snapshotter,
		MetricsExporter: exporter,
		HTTPMetrics:     metricsRecorder,
		Logger:          logger,
		Security:        security,
		CORS:            cors,
	}))

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"storage_backend", cfg.StorageBackend,
		"metrics_backend", cfg.MetricsBackend,
		"cache_enabled", deps.Cache != nil,
		"events_enabled", deps.Publisher != nil,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// migrate applies all pending schema migrations.
func migrate(ctx context.Context, databaseURL string, logger *slog.Logger) error {
	migrator, err := repository.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	return migrator.Up(ctx)
}

// initMetrics builds the recorder for backend along with what serves
// /metrics. A nil snapshotter and exporter make /metrics answer 503.
func initMetrics(backend string) (metrics.Recorder, metrics.Snapshotter, http.Handler) {
	switch backend {
	case config.MetricsPrometheus:
		prom := metrics.NewPrometheus()
		return prom, nil, prom.Handler()
	case config.MetricsInMemory:
		mem := metrics.NewInMemory()
		return mem, mem, nil
	default:
		return metrics.NewNoop(), nil, nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "usersvc")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	q := parsed.Query()
	if q.Has("password") {
		q.Set("password", "redacted")
		parsed.RawQuery = q.Encode()
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
