package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"live-poll/auth"
	"live-poll/infrastructure/http/server"
	"live-poll/internal"
	"live-poll/observability"
	"live-poll/repositories"
	"live-poll/runtime"
	"live-poll/runtime/workers"
	"live-poll/services"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run owns every resource so deferred cleanups execute before the process exits.
func run() error {
	// 1. Configuration & Logger
	config, err := internal.Load()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Stores
	stores, err := openStores(ctx, config, log)
	if err != nil {
		return err
	}
	defer stores.close()

	// 3. Metrics
	reg := observability.NewRegistry()
	metrics := observability.New(reg)

	// 4. Live runtime
	registry := runtime.NewRegistry(metrics)
	broadcaster := runtime.NewBroadcaster(log, registry, metrics)
	supervisor := workers.NewSupervisor(log, metrics, config.RestartInterval)
	orchestrator := runtime.NewOrchestrator(log, supervisor, stores.polls, broadcaster, metrics,
		config.NumberOfWorkers, config.BufferSize, config.StoreTimeout)
	supervisor.Add(
		workers.NewQueueDepthWorker(log, orchestrator.Queues(), metrics, config.MetricInterval),
		workers.NewHeartbeatWorker(log, registry, metrics, config.MetricInterval),
	)

	// 5. Services & HTTP
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	cookies := auth.SessionCookies{Name: config.SessionCookieName, Secure: config.SecureCookies}
	authService := services.NewAuthService(stores.users, tokens)
	pollService := services.NewPollService(log, stores.polls, broadcaster, metrics, config.StoreTimeout)
	voteService := services.NewVoteService(log, orchestrator, metrics)

	router := server.NewRouter(log, reg, cookies, tokens,
		server.NewAuthServer(log, authService, pollService, cookies),
		server.NewPollServer(log, pollService),
		server.NewLiveServer(log, registry, voteService, config.OriginPatterns(),
			config.ConnectionBufferSize, config.WriteTimeout),
	)
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		// Live connections inherit ctx and close with it
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	// 6. Run until a signal or a fatal error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return orchestrator.Start(gctx)
	})
	g.Go(func() error {
		log.Info("Starting HTTP server", "address", httpServer.Addr, "store", config.StoreDriver, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		orchestrator.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}

type stores struct {
	polls repositories.IPollRepository
	users repositories.IUserRepository
	close func()
}

func openStores(ctx context.Context, config internal.Config, log *slog.Logger) (stores, error) {
	switch config.StoreDriver {
	case internal.DriverPostgres:
		db, err := sql.Open("postgres", config.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("database opening failed: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return stores{}, fmt.Errorf("database unreachable: %w", err)
		}
		if err := repositories.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return stores{}, err
		}
		return stores{
			polls: repositories.NewPostgresPollRepository(db, log),
			users: repositories.NewPostgresUserRepository(db),
			close: func() {
				log.Info("Closing Postgres...")
				_ = db.Close()
			},
		}, nil
	default:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
			WithLoggingLevel(badger.WARNING))
		if err != nil {
			return stores{}, fmt.Errorf("database opening failed: %w", err)
		}
		return stores{
			polls: repositories.NewPollRepository(db, log),
			users: repositories.NewUserRepository(db),
			close: func() {
				log.Info("Closing BadgerDB...")
				_ = db.Close()
			},
		}, nil
	}
}
