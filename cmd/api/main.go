package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/sandia/users-manager/internal/api"
	"github.com/sandia/users-manager/internal/core/domain"
	"github.com/sandia/users-manager/internal/infrastructure/db/mongo"
	"github.com/sandia/users-manager/internal/infrastructure/db/redis"
	"github.com/sandia/users-manager/internal/infrastructure/queue"
	"github.com/sandia/users-manager/internal/pkg/config"
	"github.com/sandia/users-manager/pkg/logger"
)

// @title           users-manager API
// @version         1.0
// @description     Data-access and authentication service for user and administrator profiles.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	// The unique indexes on email/username enforce credential uniqueness;
	// the service-level pre-check is advisory only.
	profileRepo := mongo.NewProfileRepository(db)
	if err := profileRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	if cfg.Admin.Email != "" {
		admin := &domain.Administrator{
			Ident: domain.Identity{
				Email:    cfg.Admin.Email,
				Username: cfg.Admin.Username,
				Password: cfg.Admin.Password,
			},
			CurrentAccount: cfg.Admin.Account,
		}
		if err := profileRepo.EnsureAdministrator(ctx, admin); err != nil {
			log.Fatal().Err(err).Msg("administrator provisioning failed")
		}
	}

	// Redis is optional: without it, sessions live in process memory and do
	// not survive restarts.
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(ctx, redis.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer func() {
			_ = rdb.Close()
		}()
	} else {
		log.Warn().Msg("REDIS_ADDR not set, using in-memory sessions")
	}

	auditRepo := mongo.NewAuditRepository(db)
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditRepo, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, cfg, log, dispatcher)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("users-manager API listening")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
