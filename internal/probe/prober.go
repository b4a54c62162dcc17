package probe

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/obs"
)

const (
	// DefaultTimeout bounds every single attempt.
	DefaultTimeout = 5 * time.Second
	// RetryPause is the fixed wait between a failed attempt and the next one.
	RetryPause = 1 * time.Second
)

// Prober runs a Checker with bounded retries and measures the cumulative
// response time of the whole series.
type Prober struct {
	Inner  Checker
	Pause  time.Duration
	Logger *zap.Logger

	// sleep and now are swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

func NewProber(inner Checker, logger *zap.Logger) *Prober {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{
		Inner:  inner,
		Pause:  RetryPause,
		Logger: logger,
		sleep:  sleepCtx,
		now:    time.Now,
	}
}

// Probe performs up to maxRetries+1 attempts, each bounded by timeout, and
// stops at the first success. The returned result carries only Status,
// ResponseTimeMS and Error; the caller stamps URL and Timestamp.
func (p *Prober) Probe(ctx context.Context, target string, timeout time.Duration, maxRetries int) domain.CheckResult {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	start := p.now()
	var last Attempt
	for attempt := 0; ; attempt++ {
		actx, cancel := context.WithTimeout(ctx, timeout)
		last = p.Inner.Check(actx, target)
		cancel()

		if last.Success {
			obs.ProbeAttempts.WithLabelValues("success").Inc()
			break
		}
		obs.ProbeAttempts.WithLabelValues("failure").Inc()
		p.Logger.Warn("probe_attempt_failed",
			zap.String("url", target),
			zap.Int("attempt", attempt+1),
			zap.Int("status_code", last.StatusCode),
			zap.String("error", last.Err),
		)

		if attempt >= maxRetries {
			break
		}
		if err := p.sleep(ctx, p.Pause); err != nil {
			break
		}
	}
	elapsed := p.now().Sub(start)

	out := domain.CheckResult{
		Status:         domain.StatusDown,
		ResponseTimeMS: elapsed.Milliseconds(),
	}
	if last.Success {
		out.Status = domain.StatusUp
	} else {
		out.Error = last.Err
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
