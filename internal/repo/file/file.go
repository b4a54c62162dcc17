// Package file persists the metric log as a single pretty-printed JSON
// array, rewritten wholesale on every append.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/obs"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

const (
	MetricsFile = "metrics.json"
	StateFile   = "state.json"
)

var _ repo.MetricStore = (*Store)(nil)
var _ repo.StatusStore = (*Store)(nil)

type Store struct {
	mu        sync.Mutex
	dir       string
	retention time.Duration
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Store)

// WithClock overrides the clock used to compute the retention cutoff.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates dir if needed and seeds an empty metrics file when none exists.
func New(dir string, retention time.Duration, log *zap.Logger, opts ...Option) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{dir: dir, retention: retention, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", repo.ErrStorage, dir, err)
	}
	if _, err := os.Stat(s.metricsPath()); errors.Is(err, fs.ErrNotExist) {
		if err := s.writeJSON(s.metricsPath(), []domain.CheckResult{}); err != nil {
			return nil, fmt.Errorf("%w: seed %s: %v", repo.ErrStorage, s.metricsPath(), err)
		}
	}
	return s, nil
}

func (s *Store) metricsPath() string { return filepath.Join(s.dir, MetricsFile) }
func (s *Store) statePath() string { return filepath.Join(s.dir, StateFile) }

// ---- MetricStore ----

func (s *Store) Append(ctx context.Context, r domain.CheckResult) ([]domain.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		// lossy but available: start over rather than refuse the write
		obs.StorageErrors.WithLabelValues("read").Inc()
		s.log.Warn("metrics_read_failed_resetting", zap.String("path", s.metricsPath()), zap.Error(err))
		all = nil
	}
	all = append(all, r)

	kept := repo.Prune(all, s.now().Add(-s.retention))
	if err := s.writeJSON(s.metricsPath(), kept); err != nil {
		obs.StorageErrors.WithLabelValues("write").Inc()
		return nil, fmt.Errorf("%w: write %s: %v", repo.ErrStorage, s.metricsPath(), err)
	}
	if pruned := len(all) - len(kept); pruned > 0 {
		s.log.Debug("metrics_pruned", zap.Int("pruned", pruned), zap.Int("kept", len(kept)))
	}
	return kept, nil
}

func (s *Store) All(ctx context.Context) ([]domain.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		obs.StorageErrors.WithLabelValues("read").Inc()
		s.log.Warn("metrics_read_failed", zap.String("path", s.metricsPath()), zap.Error(err))
		return []domain.CheckResult{}, nil
	}
	return all, nil
}

func (s *Store) Latest(ctx context.Context) (*domain.CheckResult, error) {
	all, _ := s.All(ctx)
	if len(all) == 0 {
		return nil, nil
	}
	last := all[len(all)-1]
	return &last, nil
}

// read returns an empty log for a missing file.
func (s *Store) read() ([]domain.CheckResult, error) {
	b, err := os.ReadFile(s.metricsPath())
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.CheckResult{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []domain.CheckResult{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.metricsPath(), err)
	}
	return out, nil
}

// writeJSON replaces path atomically via a temp file in the same directory.
func (s *Store) writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ---- StatusStore ----

type state struct {
	LastStatus domain.Status `json:"lastStatus"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

func (s *Store) LastStatus(ctx context.Context) (domain.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.statePath())
	if errors.Is(err, fs.ErrNotExist) {
		return domain.StatusUnknown, nil
	}
	if err != nil {
		return domain.StatusUnknown, fmt.Errorf("%w: read %s: %v", repo.ErrStorage, s.statePath(), err)
	}
	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		return domain.StatusUnknown, fmt.Errorf("%w: decode %s: %v", repo.ErrStorage, s.statePath(), err)
	}
	if !st.LastStatus.Known() {
		return domain.StatusUnknown, nil
	}
	return st.LastStatus, nil
}

func (s *Store) SetLastStatus(ctx context.Context, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(s.statePath(), state{LastStatus: status, UpdatedAt: s.now().UTC()}); err != nil {
		return fmt.Errorf("%w: write %s: %v", repo.ErrStorage, s.statePath(), err)
	}
	return nil
}
