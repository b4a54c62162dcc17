// Package monitor owns the check cycle for one target: probe, derive
// alerts against the last known status, notify, persist.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/obs"
	"github.com/hamed0406/uptimemonitor/internal/probe"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

type Prober interface {
	Probe(ctx context.Context, target string, timeout time.Duration, maxRetries int) domain.CheckResult
}

type Notifier interface {
	Send(ctx context.Context, a domain.Alert)
}

type Diagnoser interface {
	Diagnose(ctx context.Context, target string) probe.DNSStatus
}

type Config struct {
	URL         string
	ThresholdMS int64
	RetryCount  int
	// Timeout bounds each probe attempt; zero means probe.DefaultTimeout.
	Timeout time.Duration
}

// Monitor is one target's orchestrator. Run one Monitor per target.
type Monitor struct {
	cfg      Config
	prober   Prober
	store    repo.MetricStore
	notifier Notifier
	states   repo.StatusStore
	dns      Diagnoser
	log      *zap.Logger
	now      func() time.Time

	flight singleflight.Group

	mu         sync.RWMutex
	lastStatus domain.Status
}

type Option func(*Monitor)

// WithStatusStore persists the last known status so a restart does not
// swallow the first transition.
func WithStatusStore(s repo.StatusStore) Option {
	return func(m *Monitor) { m.states = s }
}

// WithDiagnoser logs a DNS diagnosis whenever a check ends down.
func WithDiagnoser(d Diagnoser) Option {
	return func(m *Monitor) { m.dns = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

func New(cfg Config, p Prober, store repo.MetricStore, n Notifier, log *zap.Logger, opts ...Option) *Monitor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = probe.DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	m := &Monitor{
		cfg:        cfg,
		prober:     p,
		store:      store,
		notifier:   n,
		log:        log,
		now:        time.Now,
		lastStatus: domain.StatusUnknown,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads the persisted last status. Without a status store it is a
// no-op and the monitor starts from unknown.
func (m *Monitor) Restore(ctx context.Context) error {
	if m.states == nil {
		return nil
	}
	st, err := m.states.LastStatus(ctx)
	if err != nil {
		return fmt.Errorf("restore last status: %w", err)
	}
	m.mu.Lock()
	m.lastStatus = st
	m.mu.Unlock()
	m.log.Info("last_status_restored", zap.String("status", string(st)))
	return nil
}

func (m *Monitor) LastStatus() domain.Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastStatus
}

// CheckService runs one check. Callers arriving while a check is in flight
// wait for it and receive the same result instead of starting another.
// The check is detached from the caller's cancellation; the probe timeout
// is its only bound.
//
// A non-nil error means the result could not be persisted. The result is
// still returned, alerts were still sent and the last status still moved.
func (m *Monitor) CheckService(ctx context.Context) (domain.CheckResult, error) {
	v, err, shared := m.flight.Do("check", func() (any, error) {
		return m.check(context.WithoutCancel(ctx))
	})
	if shared {
		m.log.Debug("check_joined_in_flight")
	}
	return v.(domain.CheckResult), err
}

func (m *Monitor) check(ctx context.Context) (domain.CheckResult, error) {
	raw := m.prober.Probe(ctx, m.cfg.URL, m.cfg.Timeout, m.cfg.RetryCount)

	res := domain.CheckResult{
		Status:         raw.Status,
		ResponseTimeMS: raw.ResponseTimeMS,
		URL:            m.cfg.URL,
		Timestamp:      m.now().UTC(),
		Error:          raw.Error,
	}
	obs.ChecksTotal.WithLabelValues(string(res.Status)).Inc()
	obs.CheckDuration.Observe(float64(res.ResponseTimeMS) / 1000)
	if res.Up() {
		obs.TargetUp.Set(1)
	} else {
		obs.TargetUp.Set(0)
		m.diagnose(ctx)
	}

	res.Alerts = DeriveAlerts(m.LastStatus(), res, m.cfg.ThresholdMS)
	for _, a := range res.Alerts {
		obs.AlertsTotal.WithLabelValues(string(a.Type())).Inc()
		m.log.Warn("alert_raised",
			zap.String("alert_type", string(a.Type())),
			zap.String("url", m.cfg.URL),
			zap.Int64("response_time_ms", res.ResponseTimeMS),
			zap.Int64("threshold_ms", m.cfg.ThresholdMS),
		)
		m.notifier.Send(ctx, a)
	}

	m.setLastStatus(ctx, res.Status)

	if _, err := m.store.Append(ctx, res); err != nil {
		m.log.Error("check_persist_failed", zap.String("url", m.cfg.URL), zap.Error(err))
		return res, fmt.Errorf("persist check: %w", err)
	}

	m.log.Info("check_completed",
		zap.String("url", m.cfg.URL),
		zap.String("status", string(res.Status)),
		zap.Int64("response_time_ms", res.ResponseTimeMS),
		zap.Int("alerts", len(res.Alerts)),
	)
	return res, nil
}

func (m *Monitor) setLastStatus(ctx context.Context, s domain.Status) {
	m.mu.Lock()
	m.lastStatus = s
	m.mu.Unlock()

	if m.states == nil {
		return
	}
	if err := m.states.SetLastStatus(ctx, s); err != nil {
		m.log.Warn("last_status_persist_failed", zap.Error(err))
	}
}

func (m *Monitor) diagnose(ctx context.Context) {
	if m.dns == nil {
		return
	}
	d := m.dns.Diagnose(ctx, m.cfg.URL)
	m.log.Info("dns_check",
		zap.String("domain", d.Domain),
		zap.String("class", d.Class),
		zap.Bool("has_a_or_aaaa", d.HasAOrAAAA),
		zap.String("cname", d.CNAME),
		zap.String("server", d.Server),
		zap.String("resolver_error", d.ResolverError),
	)
}
