package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/hireflow/internal/adapters/hrapi"
	"github.com/okian/hireflow/internal/adapters/http/api"
	"github.com/okian/hireflow/internal/adapters/http/stream"
	"github.com/okian/hireflow/internal/adapters/http/swagger"
	"github.com/okian/hireflow/internal/adapters/repository"
	app "github.com/okian/hireflow/internal/app"
	"github.com/okian/hireflow/internal/config"
	"github.com/okian/hireflow/internal/domain/pipeline"
	"github.com/okian/hireflow/internal/domain/scoring"
	"github.com/okian/hireflow/pkg/logger"
	"github.com/okian/hireflow/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()
	loggerInstance := logger.Get()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := metrics.Register(collectors.NewBuildInfoCollector()); err != nil {
		loggerInstance.Warn(ctx, "build info metrics unavailable", logger.Error(err))
	}

	a, err := build(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to start", logger.Error(err))
		return
	}
	defer a.close()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, a.svc)

	// No WriteTimeout: the transition stream is long-lived. API routes are
	// bounded by the router's request timeout instead.
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("hr_base_url", cfg.HRBaseURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Close stream clients first; Shutdown does not wait for hijacked
	// connections.
	a.hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// application holds the wired components main runs and shuts down.
type application struct {
	svc     *app.Service
	hub     *stream.Hub
	handler http.Handler
	close   func()
}

// build wires configuration into the service graph.
func build(ctx context.Context, cfg *config.Config, log logger.Logger) (*application, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	hr := hrapi.New(cfg.HRBaseURL,
		hrapi.WithTimeout(cfg.HRTimeout()),
		hrapi.WithToken(cfg.HRToken),
		hrapi.WithLogger(log.Named("hrapi")),
	)

	closers := []func(){}
	var store repository.Store
	if cfg.RedisAddr != "" {
		client, err := repository.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		store = repository.NewRedisStore(client, repository.WithTTL(cfg.SessionTTL()))
		log.Info(ctx, "using redis session store", logger.String("redis_addr", cfg.RedisAddr))
	} else {
		store = repository.NewMemoryStore(repository.WithTTL(cfg.SessionTTL()))
		log.Info(ctx, "using in-memory session store")
	}

	hub := stream.New(
		stream.WithLogger(log.Named("stream")),
		stream.WithAllowedOrigins(cfg.AllowedOrigins),
	)

	svc := app.New(hr,
		app.WithStore(store),
		app.WithPublisher(hub),
		app.WithLogger(log.Named("service")),
		app.WithController(pipeline.New(
			pipeline.WithLocation(loc),
			pipeline.WithLogger(log.Named("pipeline")),
		)),
		app.WithAggregator(scoring.New(hr,
			scoring.WithOptionPoints(cfg.OptionPoints),
			scoring.WithDriftTolerance(cfg.DriftTolerance),
			scoring.WithLogger(log.Named("scoring")),
		)),
	)

	server := api.NewServer(svc,
		api.WithLogger(log.Named("http")),
		api.WithAllowedOrigins(cfg.AllowedOrigins),
		api.WithStream(hub),
		api.WithDocs(swagger.Register),
	)

	return &application{
		svc:     svc,
		hub:     hub,
		handler: server.Router(),
		close: func() {
			hub.Close()
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater refreshes the session gauges, which would
// otherwise only move when the session is touched.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(ctx, svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics updates service-level metrics. Counting the session
// store refreshes its gauge as a side effect.
func updateServiceMetrics(ctx context.Context, svc *app.Service) {
	_ = svc.Stats(ctx)
}
