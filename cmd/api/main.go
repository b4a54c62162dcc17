package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/httpapi"
	apimw "github.com/hamed0406/uptimemonitor/internal/httpapi/middleware"
	"github.com/hamed0406/uptimemonitor/internal/logging"
	"github.com/hamed0406/uptimemonitor/internal/monitor"
	"github.com/hamed0406/uptimemonitor/internal/notify"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/repo"
	"github.com/hamed0406/uptimemonitor/internal/repo/file"
	"github.com/hamed0406/uptimemonitor/internal/repo/memory"
	"github.com/hamed0406/uptimemonitor/internal/scheduler"
)

type store interface {
	repo.MetricStore
	repo.StatusStore
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.NewLogger(logging.Options{
		Dir:           cfg.LogDir,
		Level:         cfg.LogLevel,
		RetentionDays: cfg.LogRetentionDays,
		Console:       !cfg.Production(),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if !probe.ValidTargetURL(cfg.TargetURL) {
		logger.Fatal("target_url_invalid", zap.String("url", cfg.TargetURL))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store
	if cfg.StorageDir == "" {
		st = memory.New(cfg.MetricsRetention())
		logger.Info("storage_memory")
	} else {
		fs, err := file.New(cfg.StorageDir, cfg.MetricsRetention(), logger.Named("storage"))
		if err != nil {
			logger.Fatal("storage_init_failed", zap.String("dir", cfg.StorageDir), zap.Error(err))
		}
		st = fs
		logger.Info("storage_file", zap.String("dir", cfg.StorageDir))
	}

	notifier := notify.NewFromWebhooks(cfg.TargetURL, cfg.DiscordWebhookURL, cfg.SlackWebhookURL, logger.Named("notify"))
	prober := probe.NewProber(probe.NewHTTPChecker(), logger.Named("probe"))

	var opts []monitor.Option
	if cfg.PersistLastStatus {
		opts = append(opts, monitor.WithStatusStore(st))
	}
	if cfg.DNSDiagnose {
		opts = append(opts, monitor.WithDiagnoser(probe.NewDNSDiagnoser()))
	}
	mon := monitor.New(monitor.Config{
		URL:         cfg.TargetURL,
		ThresholdMS: cfg.ResponseThresholdMS,
		RetryCount:  cfg.RetryCount,
	}, prober, st, notifier, logger.Named("monitor"), opts...)
	if err := mon.Restore(ctx); err != nil {
		logger.Warn("last_status_restore_failed", zap.Error(err))
	}

	rc := scheduler.NewRechecker(logger.Named("scheduler"), mon, cfg.CheckInterval())
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		rc.Run(ctx)
	}()

	api := httpapi.NewServer(logger.Named("http"), st, mon)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// a manual check may run every retry to its timeout
		WriteTimeout: time.Duration(cfg.RetryCount+1)*(probe.DefaultTimeout+probe.RetryPause) + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("api_listen",
			zap.String("addr", cfg.Addr),
			zap.String("target", cfg.TargetURL),
			zap.Duration("interval", cfg.CheckInterval()),
			zap.Bool("notifier_enabled", notifier.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown_signal")
	case err := <-errc:
		logger.Error("api_listen_failed", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_error", zap.Error(err))
	}
	<-schedDone
	logger.Info("shutdown_complete")
}
