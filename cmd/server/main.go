package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chronicle_backend/internal/app/config"
	"chronicle_backend/internal/app/di"
	"chronicle_backend/internal/app/router"
	authadapters "chronicle_backend/internal/feature/auth/adapters"
	authhandler "chronicle_backend/internal/feature/auth/transport/handler"
	authusecase "chronicle_backend/internal/feature/auth/usecase"
	ratingsadapters "chronicle_backend/internal/feature/ratings/adapters"
	ratingshandler "chronicle_backend/internal/feature/ratings/transport/handler"
	ratingsusecase "chronicle_backend/internal/feature/ratings/usecase"
	"chronicle_backend/internal/platform/db"
	"chronicle_backend/internal/platform/identity"
	"chronicle_backend/internal/platform/kv"
	platformredis "chronicle_backend/internal/platform/redis"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	// Redis
	var rdb *redisv9.Client
	if cfg.KVBackend != config.KVBackendSQL || cfg.EventsBackend == config.EventsRedis {
		client, err := platformredis.NewRedisClient(cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable", "addr", cfg.Redis.Addr(), "error", err)
		} else {
			rdb = client
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// db
	var gdb *gorm.DB
	needDB := cfg.IdentityProvider == config.IdentityLocal ||
		cfg.KVBackend == config.KVBackendSQL ||
		(cfg.KVBackend == config.KVBackendAuto && rdb == nil)
	if needDB {
		var err error
		gdb, err = db.OpenDB(cfg.DB)
		if err != nil {
			return err
		}
		if err := kv.AutoMigrate(gdb); err != nil {
			return err
		}
		if cfg.IdentityProvider == config.IdentityLocal {
			if err := identity.AutoMigrate(gdb); err != nil {
				return err
			}
		}
	}

	store, err := di.NewKVStore(cfg.KVBackend, rdb, gdb)
	if err != nil {
		return err
	}
	slog.Info("kv store ready", "type", storeName(store))

	idp, err := di.NewIdentityProvider(cfg, gdb)
	if err != nil {
		return err
	}

	publisher, closeEvents, err := di.NewEventPublisher(cfg, rdb)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeEvents(); err != nil {
			slog.Error("failed to close event publisher", "error", err)
		}
	}()

	// Repository
	profileRepo := authadapters.NewProfileKV(store)
	ratingRepo := ratingsadapters.NewRatingKV(store)

	// Usecase
	authUC := authusecase.NewAuthUsecase(idp, profileRepo)
	ratingsUC := ratingsusecase.NewRatingsUsecase(ratingRepo, authUC, publisher)

	// Handler
	engine := router.NewRouter(router.Deps{
		Prefix:   cfg.RoutePrefix,
		Logger:   logger,
		Auth:     authhandler.NewAuthHandler(authUC),
		Ratings:  ratingshandler.NewRatingHandler(ratingsUC),
		Resolver: idp,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", srv.Addr, "prefix", cfg.RoutePrefix, "identity", cfg.IdentityProvider, "events", cfg.EventsBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func storeName(s kv.Store) string {
	switch s.(type) {
	case *kv.RedisStore:
		return "redis"
	case *kv.GormStore:
		return "sql"
	default:
		return "unknown"
	}
}
