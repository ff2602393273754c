package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/studyflow/accounthub/internal/cache"
	"github.com/studyflow/accounthub/internal/config"
	"github.com/studyflow/accounthub/internal/db"
	httpx "github.com/studyflow/accounthub/internal/http"
	"github.com/studyflow/accounthub/internal/observability"
	"github.com/studyflow/accounthub/internal/repo/postgres"
	"github.com/studyflow/accounthub/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	// tracing is best effort: a missing collector should not stop the service

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "accounthub", cfg.OTLPEndpoint)

		if err != nil {
			log.Warn("tracer init failed, continuing without tracing", "err", err)
		} else {
			defer func() {
				shutdownCtx, cancel := config.WithTimeout(3 * time.Second)
				defer cancel()
				_ = shutdownTracer(shutdownCtx)
			}()
		}
	}

	// metrics

	metrics := prometheus.NewRegistry()
	prom := observability.NewProm(metrics)

	// database: a failed connection keeps the listener alive in a
	// degraded state so health checks still answer

	var store service.UserStore = service.UnavailableStore{}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database unreachable, starting degraded", "err", err)
		pool = nil
	} else {
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}

		if err := db.EnsureAdminUser(ctx, pool, cfg, log); err != nil {
			log.Error("admin seed failed", "err", err)
			os.Exit(1)
		}

		store = postgres.NewUsersRepo(pool, prom)
	}

	// redis backs the stats cache; optional

	deps := httpx.Deps{
		Log:     log,
		Store:   store,
		Pool:    pool,
		Prom:    prom,
		Metrics: metrics,
		Cfg:     cfg,
	}

	if cfg.RedisAddr != "" {
		client := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)

		if err := cache.PingRedis(pingCtx, client); err != nil {
			log.Warn("redis unreachable, stats cache falls back to memory", "err", err)
			_ = client.Close()
		} else {
			deps.Redis = client
			defer client.Close()
		}

		cancel()
	}

	router := httpx.NewRouter(deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "degraded", pool == nil)

		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(10 * time.Second)

	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}

	log.Info("shutdown complete")
}
