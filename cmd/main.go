package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vitalsentry/vitalsentry/internal/adapters/http/api"
	"github.com/vitalsentry/vitalsentry/internal/adapters/sink"
	service "github.com/vitalsentry/vitalsentry/internal/app"
	"github.com/vitalsentry/vitalsentry/internal/config"
	"github.com/vitalsentry/vitalsentry/internal/ingest"
	"github.com/vitalsentry/vitalsentry/pkg/logger"
	"github.com/vitalsentry/vitalsentry/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	// We collect our own system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	alertSink, err := buildAlertSink(ctx, cfg, log)
	if err != nil {
		os.Stderr.WriteString("failed to build alert sink: " + err.Error() + "\n")
		return
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithWindowMS(cfg.WindowMS),
		service.WithSweepInterval(time.Duration(cfg.SweepIntervalMS)*time.Millisecond),
		service.WithSink(alertSink),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	startReaders(ctx, cfg, svc, log)

	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal.
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildAlertSink assembles the alert destinations: the structured log sink is
// always present, Kafka joins the fan-out when brokers are configured.
func buildAlertSink(ctx context.Context, cfg *config.Config, log logger.Logger) (sink.Sink, error) {
	logSink := sink.NewLogSink()
	if len(cfg.KafkaBrokers) == 0 {
		return logSink, nil
	}

	kafkaSink, err := sink.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, err
	}
	log.Info(ctx, "kafka alert sink enabled",
		logger.Any("brokers", cfg.KafkaBrokers),
		logger.String("topic", cfg.KafkaTopic))
	return sink.NewMulti(logSink, kafkaSink), nil
}

// startReaders launches the optional streaming ingestion readers.
func startReaders(ctx context.Context, cfg *config.Config, svc *service.Service, log logger.Logger) {
	if cfg.WSSourceURL != "" {
		reader := ingest.NewWSReader(cfg.WSSourceURL, svc)
		log.Info(ctx, "websocket ingestion enabled", logger.String("url", cfg.WSSourceURL))
		go reader.Run(ctx)
	}

	if cfg.TCPSourceAddr != "" {
		reader := ingest.NewTCPReader(cfg.TCPSourceAddr, svc)
		log.Info(ctx, "tcp ingestion enabled", logger.String("addr", cfg.TCPSourceAddr))
		go reader.Run(ctx)
	}
}

// startSystemMetricsUpdater periodically refreshes process-level metrics.
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
