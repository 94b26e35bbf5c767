// Command console serves the admin dashboard backend.
//
// @title        Sanad Admin Console
// @version      1.0
// @description  Backend for the admin dashboard: session, navigation guard and upstream API gateway.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sanadcare/admin-console/internal/api"
	"github.com/sanadcare/admin-console/internal/api/handler"
	"github.com/sanadcare/admin-console/internal/api/middleware"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/core/service"
	"github.com/sanadcare/admin-console/internal/infrastructure/db/mongo"
	"github.com/sanadcare/admin-console/internal/infrastructure/db/redis"
	"github.com/sanadcare/admin-console/internal/infrastructure/gateway"
	"github.com/sanadcare/admin-console/internal/infrastructure/queue"
	"github.com/sanadcare/admin-console/internal/infrastructure/storage/memstore"
	"github.com/sanadcare/admin-console/internal/pkg/config"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
	"github.com/sanadcare/admin-console/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: "admin-console"})
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "admin-console",
	})

	catalog := i18n.New(cfg.DefaultLocale)
	checks := map[string]handler.Check{}

	// --- Browser storage ---
	var storage ports.StorageProvider
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn().Msg("using in-memory browser storage, sessions are lost on restart")
		storage = memstore.New()
	default:
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Error().Err(err).Msg("redis unavailable")
			return err
		}
		defer func() { _ = rdb.Close() }()
		storage = redis.NewStorageProvider(rdb, cfg.Session.TTL)
		checks["redis"] = func(ctx context.Context) error { return pingRedis(ctx, rdb) }
	}

	// --- Audit trail ---
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Error().Err(err).Msg("mongodb unavailable")
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()
	checks["mongodb"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }

	auditRepo := mongo.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx, cfg.Mongo.AuditRetention); err != nil {
		log.Warn().Err(err).Msg("failed to ensure audit indexes")
	}
	auditLog := logger.Component("audit")
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, service.NewAuditService(auditRepo, auditLog), auditLog)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher.Start(workerCtx)

	// --- Upstream API ---
	upstream := gateway.New(gateway.Options{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		DefaultLocale: catalog.Fallback(),
		Log:           logger.Component("gateway"),
		OnInvalidated: api.AuditInvalidations(dispatcher),
	})

	e := api.NewRouter(api.Deps{
		Session: middleware.SessionConfig{
			Secret:     cfg.Session.Secret,
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.IsProduction(),
		},
		Storage: storage,
		Auth:    upstream,
		API:     upstream,
		Catalog: catalog,
		Audit:   dispatcher,
		Checks:  checks,
		Log:     logger.Component("http"),
		Metrics: true,
		Swagger: !cfg.IsProduction(),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("admin console listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("server failed")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	return nil
}

func pingRedis(ctx context.Context, rdb *goredis.Client) error {
	return rdb.Ping(ctx).Err()
}
