package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"courier/internal/app"
	"courier/internal/auth"
	"courier/internal/config"
	"courier/internal/handler"
	"courier/internal/jobs"
	internalRedis "courier/internal/redis"
	"courier/internal/repository/postgres"
	"courier/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	logger := app.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", "error", err)
		} else {
			logger.Info("New Relic enabled", "app", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL", "host", cfg.Database.Host, "database", cfg.Database.DBName)

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			fatal(logger, "failed to apply schema", err)
		}
		logger.Info("schema applied")
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		fatal(logger, "failed to connect to redis", err)
	}
	defer redisClient.Close()
	logger.Info("connected to Redis", "addr", cfg.Redis.Addr)

	server, sweeper, err := wireServer(db, redisClient, nrApp, cfg, logger)
	if err != nil {
		fatal(logger, "failed to wire server", err)
	}
	sweeper.Start()

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server error", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	sweeper.Stop(shutdownCtx)
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	logger.Info("server exited")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

// wireServer wires all dependencies and returns the HTTP server and the OTP
// sweeper job.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	logger *slog.Logger,
) (*http.Server, *jobs.OTPSweeper, error) {
	// Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	repos := postgres.NewRepositories(db)
	txManager := postgres.NewTxManager(db)

	// Auth primitives.
	clock := auth.SystemClock{}
	tokens := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.JWTIssuer,
		SessionTTL: cfg.Auth.SessionTTL,
		ResetTTL:   cfg.Auth.ResetTTL,
	}, clock)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	codes := auth.NewCodeGenerator(nil)

	// Services.
	notifications := service.NewNotificationService(logger)
	gateway := service.NewMockGateway()

	authService := service.NewAuthService(repos.Users, txManager, hasher, tokens, logger)
	otpService := service.NewOTPService(repos.Users, codes, notifications, tokens, lockStore, clock,
		service.OTPConfig{TTL: cfg.OTP.TTL, MailTimeout: cfg.OTP.MailTimeout}, logger)
	customerService := service.NewCustomerService(repos.Users, repos.Customers)
	driverService := service.NewDriverService(repos.Users, repos.Drivers, repos.Earnings, cacheStore, logger)
	orderService := service.NewOrderService(txManager, repos, gateway, lockStore, notifications, cfg.Payment.Timeout, logger)
	jobService := service.NewJobService(txManager, repos, driverService, notifications, logger)

	sweeper, err := jobs.NewOTPSweeper(otpService, cfg.OTP.SweepSchedule, logger)
	if err != nil {
		return nil, nil, err
	}

	// Handlers.
	authHandler := handler.NewAuthHandler(authService, otpService, handler.CookieConfig{
		Name:       cfg.Auth.CookieName,
		Secure:     cfg.Auth.CookieSecure,
		SessionTTL: cfg.Auth.SessionTTL,
		ResetTTL:   cfg.Auth.ResetTTL,
	})
	orderHandler := handler.NewOrderHandler(orderService, customerService)
	jobHandler := handler.NewJobHandler(jobService)
	driverHandler := handler.NewDriverHandler(driverService)

	router := app.NewRouter(app.RouterDeps{
		AuthHandler:    authHandler,
		OrderHandler:   orderHandler,
		JobHandler:     jobHandler,
		DriverHandler:  driverHandler,
		Tokens:         tokens,
		Authorizer:     authService,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
		Logger:         logger,
		CookieName:     cfg.Auth.CookieName,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, sweeper, nil
}
