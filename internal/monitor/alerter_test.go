package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

func result(s domain.Status, ms int64) domain.CheckResult {
	return domain.CheckResult{Status: s, ResponseTimeMS: ms, URL: target, Timestamp: fixedNow}
}

func TestDeriveAlerts_Table(t *testing.T) {
	tests := []struct {
		name  string
		prev  domain.Status
		r     domain.CheckResult
		types []domain.AlertType
	}{
		{"unknown to up", domain.StatusUnknown, result(domain.StatusUp, 100), nil},
		{"unknown to down", domain.StatusUnknown, result(domain.StatusDown, 0), nil},
		{"unknown to slow up", domain.StatusUnknown, result(domain.StatusUp, 6000), []domain.AlertType{domain.AlertHighLatency}},
		{"up to up", domain.StatusUp, result(domain.StatusUp, 100), nil},
		{"up to down", domain.StatusUp, result(domain.StatusDown, 0), []domain.AlertType{domain.AlertStatusChange}},
		{"down to down", domain.StatusDown, result(domain.StatusDown, 0), nil},
		{"down to up", domain.StatusDown, result(domain.StatusUp, 100), []domain.AlertType{domain.AlertStatusChange}},
		{"down to slow up", domain.StatusDown, result(domain.StatusUp, 6000), []domain.AlertType{domain.AlertStatusChange, domain.AlertHighLatency}},
		{"at threshold", domain.StatusUp, result(domain.StatusUp, 5000), nil},
		{"slow down is not latency", domain.StatusDown, result(domain.StatusDown, 9000), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveAlerts(tt.prev, tt.r, 5000)
			require.Len(t, got, len(tt.types))
			for i, typ := range tt.types {
				assert.Equal(t, typ, got[i].Type())
				assert.Equal(t, target, got[i].Target())
				assert.Equal(t, fixedNow, got[i].At())
			}
		})
	}
}

func TestDeriveAlerts_ResponseTimeOnlyWhenPositive(t *testing.T) {
	got := DeriveAlerts(domain.StatusUp, result(domain.StatusDown, 0), 5000)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].(domain.StatusChange).ResponseTimeMS)

	got = DeriveAlerts(domain.StatusUp, result(domain.StatusDown, 1200), 5000)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].(domain.StatusChange).ResponseTimeMS)
}

// Over every up/down sequence of length 6, the number of status changes
// equals the number of adjacent differing pairs.
func TestDeriveAlerts_TransitionCountMatchesSequence(t *testing.T) {
	const n = 6
	for mask := 0; mask < 1<<n; mask++ {
		prev := domain.StatusUnknown
		changes, want := 0, 0
		for i := 0; i < n; i++ {
			s := domain.StatusDown
			if mask&(1<<i) != 0 {
				s = domain.StatusUp
			}
			if i > 0 && s != prev {
				want++
			}
			for _, a := range DeriveAlerts(prev, result(s, 10), 5000) {
				if sc, ok := a.(domain.StatusChange); ok {
					changes++
					assert.Equal(t, prev, sc.From)
					assert.Equal(t, s, sc.To)
				}
			}
			prev = s
		}
		assert.Equal(t, want, changes, "mask %06b", mask)
	}
}

func TestDeriveAlerts_NeverNil(t *testing.T) {
	got := DeriveAlerts(domain.StatusUp, result(domain.StatusUp, 1), 5000)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
