package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appidentity "github.com/yatube/backend/internal/application/identity"
	appposts "github.com/yatube/backend/internal/application/posts"
	"github.com/yatube/backend/internal/infrastructure/auth"
	"github.com/yatube/backend/internal/infrastructure/config"
	"github.com/yatube/backend/internal/infrastructure/logger"
	"github.com/yatube/backend/internal/infrastructure/persistence"
	"github.com/yatube/backend/internal/infrastructure/telemetry"
	"github.com/yatube/backend/internal/interfaces/http/handler"
	"github.com/yatube/backend/internal/interfaces/http/middleware"
	"github.com/yatube/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// The log exporter comes first so the logger can tee into it
	var extraCores []zapcore.Core
	bootLog := zap.NewNop()
	logsProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, bootLog)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled {
		extraCores = append(extraCores,
			telemetry.NewZapOTELCore(logsProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, extraCores...)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Yatube",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiler.Enabled,
		ServerAddress:     cfg.Profiler.ServerAddress,
		ApplicationName:   cfg.Profiler.ApplicationName,
		BasicAuthUser:     cfg.Profiler.BasicAuthUser,
		BasicAuthPassword: cfg.Profiler.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Warn("Profiler disabled", zap.Error(err))
	}
	if cfg.Profiler.Enabled && cfg.Profiler.SpanProfiles {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles disabled", zap.Error(err))
		}
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:        cfg.Database.Driver,
		}, log)
		if err := plugin.Register(db.DB); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		log.Info("Database schema migrated")
	}

	blacklist, closeBlacklist := newTokenBlacklist(cfg, log)
	defer closeBlacklist()
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize repositories
	postRepo := persistence.NewGormPostRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Initialize application services
	feedService := appposts.NewFeedService(postRepo, groupRepo, userRepo, cfg.Blog.PageSize)
	postService := appposts.NewPostService(postRepo, userRepo, appposts.NewPostFormValidator(groupRepo), log)
	groupService := appposts.NewGroupService(groupRepo, log)
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, log)

	var blogMetrics *telemetry.BlogMetrics
	if meterProvider.IsEnabled() {
		blogMetrics, err = telemetry.NewBlogMetrics(telemetry.BlogMetricsConfig{
			Meter:           meterProvider.Meter("yatube.blog"),
			Logger:          log,
			CollectInterval: cfg.Telemetry.MetricsInterval,
			StatsProvider:   feedService,
		})
		if err != nil {
			log.Warn("Blog metrics disabled", zap.Error(err))
		} else {
			feedService.SetMetrics(blogMetrics)
			postService.SetMetrics(blogMetrics)
			blogMetrics.StartPeriodicCollection(ctx)
		}
	}

	var loginLimiter *middleware.RateLimiter
	if cfg.HTTP.LoginRateLimit > 0 {
		loginLimiter = middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
		defer loginLimiter.Stop()
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.Cookie.Secure

	engine, err := router.NewEngine(router.Config{
		Logger: log,
		Session: middleware.SessionConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			CookieName:     cfg.Cookie.Name,
			Logger:         log,
		},
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		Metrics: middleware.HTTPMetricsConfig{
			MeterProvider: meterProvider,
			Enabled:       cfg.Telemetry.MetricsEnabled,
			Logger:        log,
		},
		Security:       security,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		LoginLimiter:   loginLimiter,
		LoginURL:       cfg.Blog.LoginURL,
	}, router.Handlers{
		Posts:  handler.NewPostHandler(feedService, postService, groupService),
		Auth:   handler.NewAuthHandler(authService, cfg.Cookie),
		About:  handler.NewAboutHandler(),
		System: handler.NewSystemHandler(db, version),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting",
			zap.String("addr", srv.Addr),
			zap.Bool("tracing", tracerProvider.IsEnabled()),
			zap.Bool("span_profiles", tracerProvider.IsSpanProfilesEnabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := cfg.HTTP.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if blogMetrics != nil {
		blogMetrics.Stop()
	}
	if profiler != nil {
		if err := profiler.Stop(); err != nil {
			log.Warn("Error stopping profiler", zap.Error(err))
		}
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracer provider", zap.Error(err))
	}
	if err := logsProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newTokenBlacklist returns the Redis blacklist when enabled and reachable,
// otherwise an in-process one.
func newTokenBlacklist(cfg *config.Config, log *zap.Logger) (auth.TokenBlacklist, func()) {
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err == nil {
			log.Info("Token blacklist backed by Redis", zap.String("addr", cfg.Redis.Addr()))
			return redisBlacklist, func() {
				if err := redisBlacklist.Close(); err != nil {
					log.Warn("Error closing Redis", zap.Error(err))
				}
			}
		}
		log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
	}
	return auth.NewInMemoryTokenBlacklist(), func() {}
}
