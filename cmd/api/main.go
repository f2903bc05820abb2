package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/freelancehub/dashboard-backend/config"
	"github.com/freelancehub/dashboard-backend/internal/auth"
	"github.com/freelancehub/dashboard-backend/internal/bootstrap"
	"github.com/freelancehub/dashboard-backend/internal/dashboard"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/notify"
	"github.com/freelancehub/dashboard-backend/internal/dashboard/repository"
	"github.com/freelancehub/dashboard-backend/internal/files/storage"
	"github.com/freelancehub/dashboard-backend/internal/logging"
	"github.com/freelancehub/dashboard-backend/internal/storage/postgres"
	"github.com/freelancehub/dashboard-backend/internal/tracing"
	"github.com/freelancehub/dashboard-backend/internal/users"
)

const serviceName = "dashboard-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.App.Version, cfg.Tracing.OTLPURL)
	if err != nil {
		logger.Fatal("tracing init failed", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	var (
		pool  *pgxpool.Pool
		sqlDB *sql.DB
	)
	if cfg.Database.Backend != config.StoreBackendMemory {
		dsn := postgres.DSN(&cfg.Database)
		pool, err = bootstrap.OpenDB(ctx, bootstrap.DBOptions{
			DSN:      dsn,
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			logger.Fatal("failed to open pgx pool", zap.Error(err))
		}
		defer pool.Close()

		sqlDB, err = postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			logger.Fatal("failed to open record store", zap.Error(err))
		}
		defer sqlDB.Close()

		if err := repository.Migrate(ctx, sqlDB); err != nil {
			logger.Fatal("record store migration failed", zap.Error(err))
		}
		if err := users.NewRepo(pool).Migrate(ctx); err != nil {
			logger.Fatal("users migration failed", zap.Error(err))
		}
	} else {
		logger.Warn("using the in-memory store; records are lost on restart")
	}

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		// the cache and notification stream are optional
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	deps := dashboard.Deps{
		Logger:   logger,
		CacheTTL: cfg.Limits.CacheTTL,
	}
	if sqlDB != nil {
		deps.SQL = sqlDB
	}
	if rdb != nil {
		deps.Redis = rdb
		deps.Notifier = notify.NewRedisPublisher(rdb)
	}

	routerDeps := bootstrap.RouterDeps{
		ServiceName: serviceName,
		Config:      cfg,
		Logger:      logger,
		DB:          pool,
		Redis:       rdb,
		Dashboards:  bootstrap.NewDashboards(deps),
	}

	if cfg.Auth.Mode == config.AuthModeFirebase {
		client, err := auth.InitializeFirebase(ctx, cfg.Firebase())
		if err != nil {
			logger.Fatal("firebase init failed", zap.Error(err))
		}
		routerDeps.Verifier = client
	}

	if cfg.Storage.Bucket != "" {
		presigner, err := storage.NewS3Presigner(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("storage init failed", zap.Error(err))
		}
		routerDeps.Presigner = presigner
	}

	router, err := bootstrap.BuildRouter(routerDeps)
	if err != nil {
		logger.Fatal("router init failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("store", cfg.Database.Backend), zap.Bool("redis", rdb != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
