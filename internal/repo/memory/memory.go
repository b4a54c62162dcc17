package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

var _ repo.MetricStore = (*Store)(nil)
var _ repo.StatusStore = (*Store)(nil)

// Store keeps the metric log in process memory. It applies the same
// retention rule as the file store.
type Store struct {
	mu         sync.RWMutex
	retention  time.Duration
	now        func() time.Time
	results    []domain.CheckResult
	lastStatus domain.Status
}

func New(retention time.Duration) *Store {
	return &Store{
		retention:  retention,
		now:        time.Now,
		results:    make([]domain.CheckResult, 0, 128),
		lastStatus: domain.StatusUnknown,
	}
}

// WithClock overrides the clock used for the retention cutoff.
func (m *Store) WithClock(now func() time.Time) *Store {
	m.now = now
	return m
}

func (m *Store) Append(ctx context.Context, r domain.CheckResult) ([]domain.CheckResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = repo.Prune(append(m.results, r), m.now().Add(-m.retention))
	return m.snapshot(), nil
}

func (m *Store) All(ctx context.Context) ([]domain.CheckResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(), nil
}

func (m *Store) Latest(ctx context.Context) (*domain.CheckResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.results) == 0 {
		return nil, nil
	}
	last := m.results[len(m.results)-1]
	return &last, nil
}

// snapshot copies so callers never alias the internal slice.
func (m *Store) snapshot() []domain.CheckResult {
	out := make([]domain.CheckResult, len(m.results))
	copy(out, m.results)
	return out
}

func (m *Store) LastStatus(ctx context.Context) (domain.Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastStatus, nil
}

func (m *Store) SetLastStatus(ctx context.Context, s domain.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastStatus = s
	return nil
}
