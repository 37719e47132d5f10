package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	clienthandler "keypulse/internal/client/handler"
	clientmetrics "keypulse/internal/client/metrics"
	"keypulse/internal/client/service"
	clientstore "keypulse/internal/client/store"
	"keypulse/internal/platform/config"
	"keypulse/internal/platform/httpserver"
	"keypulse/internal/platform/joblock"
	"keypulse/internal/platform/logger"
	"keypulse/internal/platform/migrate"
	platformredis "keypulse/internal/platform/redis"
	httptransport "keypulse/internal/transport/http"
)

// main wires high-level dependencies, starts the HTTP server, and owns
// the periodic triggers for the issuance and inactivity-lock jobs. The
// core services never self-schedule; they are invoked from here (or via
// the manual endpoints) with injected time.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	loc, err := cfg.Location()
	if err != nil {
		log.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		log.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	svc, err := service.New(st,
		service.WithLogger(log),
		service.WithMetrics(clientmetrics.New()),
		service.WithLocation(loc),
		service.WithInactivityThreshold(cfg.InactivityThreshold),
	)
	if err != nil {
		log.Error("service setup failed", "error", err)
		os.Exit(1)
	}

	locker, closeRedis, err := buildLocker(cfg)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	defer closeRedis()

	router := httptransport.NewRouter(clienthandler.New(svc, log))
	srv := httpserver.New(cfg.Addr, router)

	go runJob(ctx, log, locker, "issue", cfg.IssueInterval, func(jobCtx context.Context) error {
		_, err := svc.IssueToday(jobCtx)
		return err
	})
	go runJob(ctx, log, locker, "sweep", cfg.SweepInterval, func(jobCtx context.Context) error {
		_, err := svc.Sweep(jobCtx)
		return err
	})

	go func() {
		log.Info("starting keypulse", "addr", cfg.Addr, "timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger) (clientstore.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database configured, using in-memory store")
		return clientstore.NewInMemory(), func() {}, nil
	}

	if err := migrate.Up(ctx, cfg.DatabaseURL); err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return clientstore.NewPostgres(pool), pool.Close, nil
}

func buildLocker(cfg config.Server) (*joblock.Locker, func(), error) {
	client, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return nil, func() {}, nil
	}

	hostname, _ := os.Hostname()
	owner := hostname + "-" + uuid.NewString()
	return joblock.New(client, owner), func() { _ = client.Close() }, nil
}

// runJob invokes fn on every tick, guarded by the distributed lock when
// one is configured. Each run gets its own deadline so a stuck store
// call cannot wedge the scheduler.
func runJob(ctx context.Context, log *slog.Logger, locker *joblock.Locker, name string, interval time.Duration, fn func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		jobCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		if locker != nil {
			ok, err := locker.Acquire(jobCtx, name, interval)
			if err != nil {
				log.Error("job lock unavailable", "job", name, "error", err)
				cancel()
				continue
			}
			if !ok {
				log.Info("job skipped, another replica holds the lock", "job", name)
				cancel()
				continue
			}
		}

		if err := fn(jobCtx); err != nil {
			log.Error("job run failed", "job", name, "error", err)
		}
		cancel()
	}
}
