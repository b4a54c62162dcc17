package monitor

import "github.com/hamed0406/uptimemonitor/internal/domain"

// DeriveAlerts compares a finished check with the previous known status.
//
// A StatusChange fires only between two known, differing outcomes, so the
// first check after start never produces one. A HighLatency fires for an up
// result slower than thresholdMS. When both fire, the status change comes
// first.
func DeriveAlerts(prev domain.Status, r domain.CheckResult, thresholdMS int64) domain.Alerts {
	alerts := domain.Alerts{}

	if prev.Known() && prev != r.Status {
		sc := domain.StatusChange{
			From:      prev,
			To:        r.Status,
			URL:       r.URL,
			Timestamp: r.Timestamp,
			Error:     r.Error,
		}
		if r.ResponseTimeMS > 0 {
			rt := r.ResponseTimeMS
			sc.ResponseTimeMS = &rt
		}
		alerts = append(alerts, sc)
	}

	if r.Status == domain.StatusUp && r.ResponseTimeMS > thresholdMS {
		alerts = append(alerts, domain.HighLatency{
			ResponseTimeMS: r.ResponseTimeMS,
			ThresholdMS:    thresholdMS,
			URL:            r.URL,
			Timestamp:      r.Timestamp,
		})
	}
	return alerts
}
