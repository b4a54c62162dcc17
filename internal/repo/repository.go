package repo

import (
	"context"
	"errors"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// ErrStorage wraps every failure to persist the metric log.
var ErrStorage = errors.New("metric storage")

// Ports (interfaces). The monitor and the HTTP API only see these.
type MetricStore interface {
	// Append adds r, drops entries older than the retention window and
	// returns what remains, in insertion order.
	Append(ctx context.Context, r domain.CheckResult) ([]domain.CheckResult, error)
	// All returns the whole log; an unreadable medium reads as empty.
	All(ctx context.Context) ([]domain.CheckResult, error)
	// Latest returns nil, nil when the log is empty.
	Latest(ctx context.Context) (*domain.CheckResult, error)
}

// Prune keeps the entries whose timestamp is not older than cutoff,
// preserving order.
func Prune(results []domain.CheckResult, cutoff time.Time) []domain.CheckResult {
	kept := make([]domain.CheckResult, 0, len(results))
	for _, r := range results {
		if !r.Timestamp.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	return kept
}
