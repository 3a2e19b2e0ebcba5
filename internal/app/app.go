// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trudido/remindd/internal/config"
	"github.com/trudido/remindd/internal/lateness"
	latenesspostgres "github.com/trudido/remindd/internal/lateness/postgres"
	"github.com/trudido/remindd/internal/outbox"
	outboxpostgres "github.com/trudido/remindd/internal/outbox/postgres"
	"github.com/trudido/remindd/internal/pkg/httputil"
	"github.com/trudido/remindd/internal/pkg/metrics"
	"github.com/trudido/remindd/internal/pkg/postgres"
	"github.com/trudido/remindd/internal/platform/local"
	"github.com/trudido/remindd/internal/platform/webhook"
	"github.com/trudido/remindd/internal/recovery"
	"github.com/trudido/remindd/internal/scheduler"
	schedulerpostgres "github.com/trudido/remindd/internal/scheduler/postgres"
	"github.com/trudido/remindd/internal/version"
	"github.com/trudido/remindd/migrations"
)

// App represents the daemon instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	timers        *local.Timers
	reconciler    *recovery.Reconciler
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new daemon instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := postgres.Migrate(migrations.FS, ".", cfg.Database.URL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	router, err := app.setupRouter()
	if err != nil {
		db.Close()
		metricsCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

func (a *App) setupRouter() (*chi.Mux, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(httputil.RateLimitMiddleware(a.config.Server.RateLimit, a.config.Server.RateBurst))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/version", a.versionHandler)

	surface, err := webhook.NewSurface(webhook.Config{
		Enabled: a.config.Notify.WebhookEnabled,
		URL:     a.config.Notify.WebhookURL,
		Timeout: a.config.Notify.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create webhook surface: %w", err)
	}

	a.timers = local.New(a.config.Scheduler.ExactWake)

	itemRepo := schedulerpostgres.NewRepository(a.db)
	outboxRepo := outboxpostgres.NewRepository(a.db)
	latenessRepo := latenesspostgres.NewRepository(a.db)

	monitor := lateness.NewMonitor(latenessRepo)
	sched := scheduler.New(scheduler.Config{
		SummaryDebounce: a.config.Scheduler.SummaryDebounce,
	}, itemRepo, a.timers, surface, monitor)
	outboxService := outbox.NewService(outboxRepo, sched)
	a.reconciler = recovery.NewReconciler(itemRepo, sched)

	schedulerHandler := scheduler.NewHandler(sched, itemRepo)
	outboxHandler := outbox.NewHandler(outboxService)
	latenessHandler := lateness.NewHandler(monitor)
	recoveryHandler := recovery.NewHandler(a.reconciler)

	r.Route("/v1", func(r chi.Router) {
		schedulerHandler.RegisterRoutes(r)
		outboxHandler.RegisterRoutes(r)
		latenessHandler.RegisterRoutes(r)
		recoveryHandler.RegisterRoutes(r)
	})

	return r, nil
}

// Run starts the HTTP servers and the startup reconciliation pass.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Reconcile persisted reminders against the clock before traffic
	// arrives; armed timers did not survive the restart.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if _, err := a.reconciler.Run(ctx, recovery.ModeStartup); err != nil {
			a.logger.Error("startup reconciliation failed", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the daemon.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Stop pending timers before the stores go away
	if a.timers != nil {
		a.timers.Close()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.db.Close()

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) healthzHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.db.Ping(r.Context()); err != nil {
		httputil.Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	httputil.Text(w, http.StatusOK, "ok")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"git_commit": version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
