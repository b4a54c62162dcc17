package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptime_checks_total",
		Help: "Completed checks by final status.",
	}, []string{"status"})

	ProbeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptime_probe_attempts_total",
		Help: "Individual HTTP attempts, retries included.",
	}, []string{"outcome"})

	CheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "uptime_check_duration_seconds",
		Help:    "Cumulative probe time per check, retries and pauses included.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	})

	AlertsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptime_alerts_total",
		Help: "Alerts derived by the monitor.",
	}, []string{"type"})

	NotifyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptime_notify_failures_total",
		Help: "Alert deliveries that failed, per channel.",
	}, []string{"channel"})

	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "uptime_storage_errors_total",
		Help: "Metric log read/write failures.",
	}, []string{"op"})

	TargetUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "uptime_target_up",
		Help: "1 if the last check found the target up, 0 otherwise.",
	})
)
