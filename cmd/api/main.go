package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/josh-kwaku/shop-ledger/api"
	"github.com/josh-kwaku/shop-ledger/internal/config"
	"github.com/josh-kwaku/shop-ledger/internal/handler"
	"github.com/josh-kwaku/shop-ledger/internal/lockout"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/metrics"
	"github.com/josh-kwaku/shop-ledger/internal/middleware"
	"github.com/josh-kwaku/shop-ledger/internal/repository"
	"github.com/josh-kwaku/shop-ledger/internal/service"
)

const janitorInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.Init("shop-ledger-api", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	m := metrics.New()

	docs := repository.NewDocumentRepository(db)
	audit := repository.NewAuditRepository(db)
	users := repository.NewUserRepository(db)
	idempotency := repository.NewIdempotencyRepository(db)

	tasks := []service.JanitorTask{{Name: "idempotency", Run: idempotency.DeleteExpired}}

	lockStore, closeLockStore, task, err := openLockoutStore(cfg)
	if err != nil {
		slog.Error("failed to open lockout store", "error", err)
		os.Exit(1)
	}
	defer closeLockStore()
	tasks = append(tasks, task)

	guard, err := lockout.NewGuard(cfg.LockoutPolicy(), lockStore, logger, m)
	if err != nil {
		slog.Error("invalid lockout policy", "error", err)
		os.Exit(1)
	}

	// The remote writer must be a nil interface when disabled.
	var manager *service.Manager
	if cfg.RemoteStoreURL != "" {
		manager = service.NewManager(docs, audit, service.NewRemoteClient(cfg.RemoteStoreURL), cfg.PersistDebounce, logger, m)
	} else {
		slog.Warn("REMOTE_STORE_URL not set, remote writes disabled")
		manager = service.NewManager(docs, audit, nil, cfg.PersistDebounce, logger, m)
	}
	authSvc := service.NewAuthService(users, guard, cfg.JWTSecret, cfg.JWTExpiry)

	checks := []handler.ReadinessCheck{{Name: "database", Pinger: db}}
	if p, ok := lockStore.(*lockout.SQLiteStore); ok {
		checks = append(checks, handler.ReadinessCheck{Name: "lockout_store", Pinger: p})
	}
	healthH := handler.NewHealthHandler(checks...)
	authH := handler.NewAuthHandler(authSvc)
	ledgerH := handler.NewLedgerHandler(manager, audit)

	authMw := middleware.Auth(cfg.JWTSecret)
	idemMw := middleware.Idempotency(idempotency)
	protected := func(h http.HandlerFunc) http.Handler { return authMw(h) }
	mutating := func(h http.HandlerFunc) http.Handler { return authMw(idemMw(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthH.Liveness)
	mux.HandleFunc("GET /ready", healthH.Readiness)
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /docs", handler.ServeDocs("/docs/openapi.yaml"))
	mux.HandleFunc("GET /docs/openapi.yaml", handler.ServeSpec(api.Spec))

	mux.HandleFunc("POST /api/v1/auth/unlock", authH.Unlock)
	mux.Handle("GET /api/v1/scopes/{scope}/state", protected(ledgerH.GetState))
	mux.Handle("GET /api/v1/scopes/{scope}/summary", protected(ledgerH.Summary))
	mux.Handle("GET /api/v1/scopes/{scope}/audit", protected(ledgerH.ListAudit))
	mux.Handle("POST /api/v1/scopes/{scope}/actions", mutating(ledgerH.SubmitAction))
	mux.Handle("POST /api/v1/scopes/{scope}/reload", mutating(ledgerH.Reload))

	root := middleware.Recovery(middleware.Tracing(middleware.Logging(middleware.Metrics(m)(mux))))

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           root,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go service.NewJanitor(logger, janitorInterval, tasks...).Start(ctx)

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	if err := manager.Close(shutdownCtx); err != nil {
		slog.Error("failed to flush ledgers", "error", err)
	}
	slog.Info("server stopped")
}

func openLockoutStore(cfg *config.Config) (lockout.Store, func(), service.JanitorTask, error) {
	if cfg.LockoutStore == config.LockoutStoreSQLite {
		st, err := lockout.OpenSQLite(cfg.LockoutSQLitePath)
		if err != nil {
			return nil, nil, service.JanitorTask{}, err
		}
		task := service.JanitorTask{Name: "lockout", Run: func(ctx context.Context) (int64, error) {
			return st.Prune(ctx, time.Now().Add(-cfg.LockoutIdleTTL))
		}}
		closeFn := func() {
			if err := st.Close(); err != nil {
				slog.Error("failed to close lockout store", "error", err)
			}
		}
		return st, closeFn, task, nil
	}

	st := lockout.NewMemoryStore(cfg.LockoutIdleTTL)
	task := service.JanitorTask{Name: "lockout", Run: func(context.Context) (int64, error) {
		return int64(st.Sweep()), nil
	}}
	return st, func() {}, task, nil
}
