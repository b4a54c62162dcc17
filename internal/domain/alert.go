package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type AlertType string

const (
	AlertStatusChange AlertType = "status_change"
	AlertHighLatency  AlertType = "high_latency"
)

// Alert is a closed sum: StatusChange or HighLatency. The unexported method
// keeps other packages from adding variants, so a type switch over the two
// is exhaustive.
type Alert interface {
	Type() AlertType
	Target() string
	At() time.Time
	isAlert()
}

// StatusChange fires when two consecutive known outcomes differ.
type StatusChange struct {
	From           Status    `json:"from"`
	To             Status    `json:"to"`
	URL            string    `json:"url"`
	Timestamp      time.Time `json:"timestamp"`
	ResponseTimeMS *int64    `json:"responseTime,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// HighLatency fires when an up probe took longer than the threshold.
type HighLatency struct {
	ResponseTimeMS int64     `json:"responseTime"`
	ThresholdMS    int64     `json:"threshold"`
	URL            string    `json:"url"`
	Timestamp      time.Time `json:"timestamp"`
}

func (StatusChange) Type() AlertType { return AlertStatusChange }
func (a StatusChange) Target() string { return a.URL }
func (a StatusChange) At() time.Time { return a.Timestamp }
func (StatusChange) isAlert() {}
func (HighLatency) Type() AlertType { return AlertHighLatency }
func (a HighLatency) Target() string { return a.URL }
func (a HighLatency) At() time.Time { return a.Timestamp }
func (HighLatency) isAlert() {}

func (a StatusChange) MarshalJSON() ([]byte, error) {
	type plain StatusChange
	return json.Marshal(struct {
		Type AlertType `json:"type"`
		plain
	}{AlertStatusChange, plain(a)})
}

func (a HighLatency) MarshalJSON() ([]byte, error) {
	type plain HighLatency
	return json.Marshal(struct {
		Type AlertType `json:"type"`
		plain
	}{AlertHighLatency, plain(a)})
}

// Alerts is an ordered list of alerts that decodes by its "type" tag.
type Alerts []Alert

func (as Alerts) MarshalJSON() ([]byte, error) {
	if as == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Alert(as))
}

func (as *Alerts) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Alerts, 0, len(raw))
	for i, r := range raw {
		var tag struct {
			Type AlertType `json:"type"`
		}
		if err := json.Unmarshal(r, &tag); err != nil {
			return fmt.Errorf("alert %d: %w", i, err)
		}
		switch tag.Type {
		case AlertStatusChange:
			var a StatusChange
			if err := json.Unmarshal(r, &a); err != nil {
				return fmt.Errorf("alert %d: %w", i, err)
			}
			out = append(out, a)
		case AlertHighLatency:
			var a HighLatency
			if err := json.Unmarshal(r, &a); err != nil {
				return fmt.Errorf("alert %d: %w", i, err)
			}
			out = append(out, a)
		default:
			return fmt.Errorf("alert %d: unknown type %q", i, tag.Type)
		}
	}
	*as = out
	return nil
}
