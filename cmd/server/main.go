// Command server wires high-level dependencies and keeps the server
// lifecycle small. Business logic lives in the internal service packages;
// nothing here is package-level state.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"account-gateway/internal/account/handler"
	"account-gateway/internal/account/service"
	"account-gateway/internal/account/store"
	memorystore "account-gateway/internal/account/store/memory"
	postgresstore "account-gateway/internal/account/store/postgres"
	redisstore "account-gateway/internal/account/store/redis"
	"account-gateway/internal/identity"
	"account-gateway/internal/platform/config"
	"account-gateway/internal/platform/httpserver"
	"account-gateway/internal/platform/logger"
	"account-gateway/internal/platform/metrics"
	"account-gateway/internal/platform/postgres"
	"account-gateway/internal/platform/redis"
	"account-gateway/internal/pseudonym"
	httptransport "account-gateway/internal/transport/http"
)

// backend is what every store implementation provides.
type backend interface {
	store.HashStore
	store.UserStore
	store.Pinger
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "account-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	log := logger.New(slog.LevelInfo)

	st, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	hasher, err := pseudonym.NewHasher(cfg.HashSecret)
	if err != nil {
		return err
	}

	m := metrics.New()
	verifier := identity.NewJWTVerifier(cfg.JWTSigningKey, log)
	accounts := service.New(st, st, hasher, log, m)
	accountHandler := handler.New(accounts, verifier, log, m, cfg.RequestTimeout)
	router := httptransport.NewRouter(accountHandler, st)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting account-gateway",
			"addr", cfg.Addr,
			"store", cfg.StoreBackend,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func buildStore(ctx context.Context, cfg config.Config) (backend, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(client), func() { _ = client.Close() }, nil
	case "postgres":
		if err := postgresstore.RunMigrations(ctx, cfg.PostgresDSN); err != nil {
			return nil, nil, err
		}
		pool, err := postgres.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return postgresstore.New(pool), pool.Close, nil
	default:
		return memorystore.New(), func() {}, nil
	}
}
