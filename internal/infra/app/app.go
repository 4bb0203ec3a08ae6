package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/infra/config"
	"github.com/arklim/tourism-api/internal/infra/database"
	kafkainfra "github.com/arklim/tourism-api/internal/infra/kafka"
	"github.com/arklim/tourism-api/internal/infra/logger"
	redisinfra "github.com/arklim/tourism-api/internal/infra/redis"
	"github.com/arklim/tourism-api/internal/infra/scheduler"
	"github.com/arklim/tourism-api/internal/infra/security"
	"github.com/arklim/tourism-api/internal/infra/telemetry"
	postgresrepo "github.com/arklim/tourism-api/internal/repository/postgres"
	redisrepo "github.com/arklim/tourism-api/internal/repository/redis"
	"github.com/arklim/tourism-api/internal/transport/http/middleware"
	"github.com/arklim/tourism-api/internal/transport/http/routes"
	"github.com/arklim/tourism-api/internal/usecase"
	"github.com/arklim/tourism-api/migrations"
)

// Version is reported to the tracing backend.
var Version = "dev"

const shutdownTimeout = 10 * time.Second

// Application owns every long-lived component of the API process.
type Application struct {
	cfg       *config.AppConfig
	handler   http.Handler
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	producer  *kafkainfra.Producer
	scheduler *scheduler.Scheduler
	tracer    *telemetry.TracerProvider
}

// New builds the application graph. Nothing is served until Run is called.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	a := &Application{cfg: cfg, logger: log}
	if err := a.build(ctx); err != nil {
		a.release()
		return nil, err
	}
	return a, nil
}

func (a *Application) build(ctx context.Context) error {
	cfg, log := a.cfg, a.logger

	if cfg.Telemetry.TracingEnabled {
		tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, Version, log)
		if err != nil {
			return fmt.Errorf("init tracing: %w", err)
		}
		a.tracer = tracer
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("init postgres: %w", err)
	}
	a.pool = pool

	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, pool, migrations.FS, cfg.Postgres.Schema, log); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	tokens, err := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL())
	if err != nil {
		return fmt.Errorf("init token manager: %w", err)
	}

	hasher, err := security.NewPasswordHasher(argon2Config(cfg.Argon2))
	if err != nil {
		return fmt.Errorf("init password hasher: %w", err)
	}

	var (
		blacklistCache port.BlacklistCache
		rateLimiter    *middleware.RateLimiter
		cacheChecker   routes.CacheChecker
	)
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		a.redis = client
		cacheChecker = client

		blacklistCache = redisrepo.NewBlacklistCache(client.Client(), cfg.Redis.BlacklistPrefix)
		rateLimiter = middleware.NewRateLimiter(redisrepo.NewRateLimitRepository(client.Client(), redisrepo.SlidingWindowConfig{
			KeyPrefix: cfg.Redis.RateLimitPrefix,
			TTL:       2 * cfg.RateLimit.WindowDuration,
		}), log)
	} else {
		log.Info("redis disabled, blacklist lookups go straight to postgres and login is not rate limited")
	}

	events := a.eventPublisher()

	authMetrics, err := telemetry.NewAuthMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("init auth metrics: %w", err)
	}
	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: prometheus.DefaultRegisterer})
	if err != nil {
		return fmt.Errorf("init http metrics: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	blacklist := usecase.NewTokenBlacklistService(repos.Blacklist, blacklistCache, tokens, log)
	cleanup := usecase.NewTokenCleanupService(repos.Blacklist, authMetrics, log)
	accounts := usecase.NewAuthService(repos.Users, hasher, tokens, blacklist, events, log)

	a.scheduler = scheduler.New(log)
	sweep := func(ctx context.Context) error {
		_, err := cleanup.SweepExpired(ctx)
		return err
	}
	if err := a.scheduler.Every("blacklist-cleanup", cfg.Blacklist.CleanupInterval, sweep); err != nil {
		return fmt.Errorf("schedule blacklist cleanup: %w", err)
	}
	if cfg.Blacklist.SweepOnStart {
		a.scheduler.RunNow("blacklist-cleanup", sweep)
	}

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Tokens:      tokens,
		Blacklist:   blacklist,
		AuthMetrics: authMetrics,
		HTTPMetrics: httpMetrics,
		RateLimiter: rateLimiter,
		Database:    pool,
		Cache:       cacheChecker,
		Services: routes.ServiceSet{
			Accounts:    accounts,
			Attractions: usecase.NewAttractionService(repos.Attractions, events, log),
			Trips:       usecase.NewTripService(repos.Trips, repos.Attractions),
			Reviews:     usecase.NewReviewService(repos.Reviews, repos.Attractions, repos.Users),
			Analytics:   usecase.NewAnalyticsService(repos.Attractions),
		},
	})

	a.handler = otelhttp.NewHandler(engine, cfg.App.Name)
	return nil
}

func (a *Application) eventPublisher() port.EventPublisher {
	cfg, log := a.cfg, a.logger

	if len(cfg.Kafka.Brokers) == 0 {
		log.Info("kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(log)
	}

	producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
	if err != nil {
		log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(log)
	}
	a.producer = producer

	log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
	return kafkainfra.NewEventPublisher(producer, cfg.App, log)
}

// Run serves HTTP until ctx is cancelled or the listener fails, then shuts
// every component down.
func (a *Application) Run(ctx context.Context) error {
	defer a.release()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.scheduler.Start()

	a.logger.Info("starting tourism API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-serverErrCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("shutdown server: %w", err))
	}
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("stop scheduler: %w", err))
	}

	return runErr
}

// release closes infrastructure clients in reverse order of creation.
func (a *Application) release() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Warn("close kafka producer", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
	if err := a.tracer.Shutdown(context.Background()); err != nil {
		a.logger.Warn("shutdown tracing", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func argon2Config(s config.Argon2Settings) security.Argon2Config {
	if s.Memory == 0 || s.Iterations == 0 || s.Parallelism == 0 || s.SaltLength == 0 || s.KeyLength == 0 {
		return security.DefaultArgon2Config()
	}
	return security.Argon2Config{
		Memory:      s.Memory,
		Iterations:  s.Iterations,
		Parallelism: s.Parallelism,
		SaltLength:  s.SaltLength,
		KeyLength:   s.KeyLength,
	}
}
