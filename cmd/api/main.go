package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rogerio-castellano/finance-tracker/internal/auth"
	"github.com/rogerio-castellano/finance-tracker/internal/config"
	"github.com/rogerio-castellano/finance-tracker/internal/db"
	"github.com/rogerio-castellano/finance-tracker/internal/events"
	"github.com/rogerio-castellano/finance-tracker/internal/http/ban"
	"github.com/rogerio-castellano/finance-tracker/internal/http/handlers"
	rl "github.com/rogerio-castellano/finance-tracker/internal/http/rate_limiter"
	"github.com/rogerio-castellano/finance-tracker/internal/http/router"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/rogerio-castellano/finance-tracker/internal/redissvc"
	"github.com/rogerio-castellano/finance-tracker/internal/repo"
	flag "github.com/spf13/pflag"
)

// @title Finance Tracker API
// @version 1.0
// @description REST API for personal income and expense tracking.
// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configFile := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := applog.ParseLevel(cfg.LogLevel)
	logger := applog.New(applog.Config{Level: level, Component: applog.ComponentApp, Output: os.Stdout})
	applog.SetDefault(logger)
	if cfg.UsesDefaultSecret() {
		logger.Warn("⚠️ using the default JWT secret, set SERVER_JWT_SECRET in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, transactions, closeDB, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeDB()

	banStore, closeRedis, err := openBanStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRedis()

	publisher, err := openPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	tokens := auth.NewTokenIssuer(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	guard := ban.NewGuard(banStore, ban.Config{
		MaxStrikes: cfg.Server.MaxLoginStrikes,
		Window:     cfg.Server.BanDuration,
		Duration:   cfg.Server.BanDuration,
	}, logger)

	var limiter *rl.Registry
	if cfg.Server.RateLimit > 0 {
		limiter = rl.NewRegistry(cfg.Server.RateLimit, cfg.Server.RateBurst)
		go limiter.Run(ctx, time.Minute)
	}

	h := handlers.New(handlers.Deps{
		Users:        users,
		Transactions: transactions,
		Tokens:       tokens,
		Guard:        guard,
		Events:       publisher,
		Logger:       logger,
	})
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(h, tokens, router.Config{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Limiter:        limiter,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("✅ Server running", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", applog.FieldOperation, applog.OpShutdown)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *applog.Logger) (repo.UserRepository, repo.TransactionRepository, func(), error) {
	storage := logger.WithComponent(applog.ComponentStorage)

	if cfg.Database.URL == "" {
		users := repo.NewInMemoryUserRepository()
		transactions := repo.NewInMemoryTransactionRepository()
		if _, err := repo.Seed(ctx, users, transactions); err != nil {
			return nil, nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
		storage.Info("✅ Using in-memory storage with demo data", "email", "demo@example.com")
		return users, transactions, func() {}, nil
	}

	if cfg.Database.Migrate {
		if err := db.Migrate(cfg.Database.URL); err != nil {
			return nil, nil, nil, err
		}
		storage.Info("✅ Migrations applied", applog.FieldOperation, applog.OpMigrate)
	}

	database, err := db.Connect(cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not connect to database: %w", err)
	}
	storage.Info("✅ Connected to Postgres")
	return repo.NewPostgresUserRepository(database), repo.NewPostgresTransactionRepository(database), closeQuietly(database), nil
}

func closeQuietly(database *sql.DB) func() {
	return func() { _ = database.Close() }
}

func openBanStore(ctx context.Context, cfg *config.Config, logger *applog.Logger) (ban.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		return ban.NewMemoryStore(), func() {}, nil
	}
	rs, err := redissvc.New(ctx, cfg.Redis.Addr)
	if err != nil {
		return nil, nil, err
	}
	logger.WithComponent(applog.ComponentBan).Info("✅ Connected to Redis", "addr", cfg.Redis.Addr)
	return ban.NewRedisStore(rs.Rdb()), func() { _ = rs.Close() }, nil
}

func openPublisher(cfg *config.Config, logger *applog.Logger) (events.Publisher, error) {
	if cfg.AMQP.URL == "" {
		return events.NopPublisher{}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		return nil, err
	}
	logger.WithComponent(applog.ComponentEvents).Info("✅ Publishing events", "exchange", cfg.AMQP.Exchange)
	return p, nil
}
