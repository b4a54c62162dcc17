package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// Checker runs one full check cycle. *monitor.Monitor satisfies it.
type Checker interface {
	CheckService(ctx context.Context) (domain.CheckResult, error)
}

type Rechecker struct {
	Logger   *zap.Logger
	Checker  Checker
	Interval time.Duration
}

func NewRechecker(logger *zap.Logger, checker Checker, interval time.Duration) *Rechecker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval < 0 {
		interval = 0
	}
	return &Rechecker{
		Logger:   logger,
		Checker:  checker,
		Interval: interval,
	}
}

// Run starts the loop. It does an immediate pass, then runs each tick.
// Passes never overlap: a tick that arrives while a check is still running
// is dropped. Stops when ctx is cancelled.
func (r *Rechecker) Run(ctx context.Context) {
	if r.Interval == 0 {
		// disabled
		r.Logger.Info("rechecker_disabled")
		return
	}
	t := time.NewTicker(r.Interval)
	defer t.Stop()

	r.Logger.Info("rechecker_started", zap.Duration("interval", r.Interval))

	// immediate pass
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Logger.Info("rechecker_stopped")
			return
		case <-t.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Rechecker) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	res, err := r.Checker.CheckService(ctx)
	if err != nil {
		r.Logger.Error("rechecker_check_error",
			zap.String("url", res.URL),
			zap.Error(err),
		)
		return
	}
	r.Logger.Debug("rechecker_checked",
		zap.String("url", res.URL),
		zap.String("status", string(res.Status)),
		zap.Int64("response_time_ms", res.ResponseTimeMS),
		zap.Int("alerts", len(res.Alerts)),
	)
}
