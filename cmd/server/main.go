// Console API service entry point.
//
// @title        ApplianceHub Console API
// @version      1.0
// @description  Backend-for-frontend for the admin and technician consoles.
// @BasePath     /api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appliancehub/console-api/internal/api"
	"github.com/appliancehub/console-api/internal/api/metrics"
	"github.com/appliancehub/console-api/internal/core/domain"
	"github.com/appliancehub/console-api/internal/core/service"
	"github.com/appliancehub/console-api/internal/gateway"
	"github.com/appliancehub/console-api/internal/infrastructure/config"
	mongodb "github.com/appliancehub/console-api/internal/infrastructure/db/mongo"
	redisdb "github.com/appliancehub/console-api/internal/infrastructure/db/redis"
	"github.com/appliancehub/console-api/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close failed")
		}
	}()

	// --- Core wiring ---
	backend := gateway.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, log)

	durableTier := mongodb.NewCredentialRepository(db)
	sessionTier := redisdb.NewCredentialTier(rdb, cfg.Redis.CredentialTTL)
	store := service.NewCredentialStore(durableTier, sessionTier, log)

	audit := mongodb.NewAuditRepository(db)

	adminSession := service.NewAuthSession(domain.KindAdmin, backend, store, audit, log)
	technicianSession := service.NewAuthSession(domain.KindTechnician, backend, store, audit, log)

	// Restore whatever the credential store holds before serving
	// traffic. Both sessions end up in a terminal state regardless of
	// storage health.
	for _, session := range []*service.AuthSession{adminSession, technicianSession} {
		session.Bootstrap(ctx)
		outcome := "anonymous"
		if session.Current().Authenticated() {
			outcome = "restored"
		}
		metrics.SessionsRestoredTotal.WithLabelValues(string(session.Kind()), outcome).Inc()
	}

	issuer := service.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTokenTTL)
	reports := service.NewReportService(backend, log)

	e := api.NewRouter(api.Deps{
		JWTSecret:  cfg.JWTSecret,
		Mongo:      db,
		Redis:      rdb,
		Backend:    backend,
		Admin:      adminSession,
		Technician: technicianSession,
		Issuer:     issuer,
		Reports:    reports,
		Audit:      audit,
		Log:        log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("console api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
