package domain

import "time"

// Status is the outcome of a probe as seen by the monitor.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
	// StatusUnknown is only ever a "previous" value: the monitor has not
	// completed a check yet.
	StatusUnknown Status = "unknown"
)

// Known reports whether s is a concrete probe outcome.
func (s Status) Known() bool { return s == StatusUp || s == StatusDown }

// CheckResult is one probe outcome plus the alerts derived from it.
//
// ResponseTimeMS is wall-clock time from the start of the first attempt to
// the end of the last one, retries and pauses included.
type CheckResult struct {
	Status         Status    `json:"status"`
	ResponseTimeMS int64     `json:"responseTime"`
	URL            string    `json:"url"`
	Timestamp      time.Time `json:"timestamp"`
	Error          string    `json:"error,omitempty"`
	Alerts         Alerts    `json:"alerts"`
}

// Up is shorthand for r.Status == StatusUp.
func (r CheckResult) Up() bool { return r.Status == StatusUp }
