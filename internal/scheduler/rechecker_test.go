package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

// --- fakes ---

type fakeChecker struct {
	mu    sync.Mutex
	n     int
	err   error
	delay time.Duration
}

func (f *fakeChecker) CheckService(ctx context.Context) (domain.CheckResult, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return domain.CheckResult{
		Status:    domain.StatusUp,
		URL:       "https://example.com",
		Timestamp: time.Now().UTC(),
	}, f.err
}

func (f *fakeChecker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.n
}

// --- tests ---

func TestRechecker_ImmediatePassThenTicks(t *testing.T) {
	chk := &fakeChecker{}
	rc := NewRechecker(zap.NewNop(), chk, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go rc.Run(ctx)

	// Wait a tiny bit for the immediate pass to execute.
	time.Sleep(2 * time.Millisecond)
	if n := chk.calls(); n < 1 {
		t.Fatalf("expected immediate pass, got n=%d", n)
	}

	time.Sleep(40 * time.Millisecond)
	if n := chk.calls(); n < 3 {
		t.Fatalf("expected ticks after the immediate pass, got n=%d", n)
	}
}

func TestRechecker_StopsOnCancel(t *testing.T) {
	chk := &fakeChecker{}
	rc := NewRechecker(zap.NewNop(), chk, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rc.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	n := chk.calls()
	time.Sleep(20 * time.Millisecond)
	if chk.calls() != n {
		t.Fatalf("checks continued after stop: %d -> %d", n, chk.calls())
	}
}

func TestRechecker_DisabledWithZeroInterval(t *testing.T) {
	chk := &fakeChecker{}
	rc := NewRechecker(zap.NewNop(), chk, 0)

	done := make(chan struct{})
	go func() {
		rc.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled Run should return immediately")
	}
	if chk.calls() != 0 {
		t.Fatalf("disabled rechecker ran %d checks", chk.calls())
	}
}

func TestRechecker_SlowCheckDoesNotOverlap(t *testing.T) {
	chk := &fakeChecker{delay: 20 * time.Millisecond}
	rc := NewRechecker(zap.NewNop(), chk, 2*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 70*time.Millisecond)
	defer cancel()
	rc.Run(ctx)

	// Sequential passes of 20ms fit at most four times into 70ms.
	if n := chk.calls(); n > 4 {
		t.Fatalf("expected at most 4 sequential checks, got %d", n)
	}
}

func TestRechecker_LogsCheckErrorAndContinues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	chk := &fakeChecker{err: errors.New("disk full")}
	rc := NewRechecker(zap.New(core), chk, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	rc.Run(ctx)

	if chk.calls() < 2 {
		t.Fatalf("expected the loop to keep running after an error, got %d checks", chk.calls())
	}
	if logs.FilterMessage("rechecker_check_error").Len() == 0 {
		t.Fatal("expected rechecker_check_error log entry")
	}
}
