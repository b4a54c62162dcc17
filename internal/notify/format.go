package notify

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

const (
	ColorRed   = 0xFF0000
	ColorGreen = 0x00FF00
	ColorAmber = 0xFFAA00
)

// isoMillis matches the millisecond ISO-8601 form the channel renders.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type Field struct {
	Name  string
	Value string
}

// Message is a channel-neutral rendering of an alert.
type Message struct {
	Title       string
	Description string
	Color       int
	Timestamp   time.Time
	Fields      []Field
}

// Format renders a. The Timestamp field is the send time, not the alert's.
func Format(a domain.Alert, targetURL string, now time.Time) Message {
	url := a.Target()
	if url == "" {
		url = targetURL
	}
	now = now.UTC()
	m := Message{
		Timestamp: now,
		Fields: []Field{
			{Name: "URL", Value: url},
			{Name: "Timestamp", Value: now.Format(isoMillis)},
		},
	}

	switch v := a.(type) {
	case domain.StatusChange:
		switch v.To {
		case domain.StatusDown:
			m.Title = "Service Down"
			m.Description = fmt.Sprintf("Service %s is unreachable", url)
			m.Color = ColorRed
			if v.Error != "" {
				m.Fields = append(m.Fields, Field{Name: "Error", Value: v.Error})
			}
		case domain.StatusUp:
			m.Title = "Service Up"
			m.Description = fmt.Sprintf("Service %s is reachable again", url)
			m.Color = ColorGreen
			if v.ResponseTimeMS != nil {
				m.Fields = append(m.Fields, Field{Name: "Response time", Value: ms(*v.ResponseTimeMS)})
			}
		default:
			generic(&m, url)
		}
		if v.From.Known() {
			m.Fields = append(m.Fields, Field{Name: "Previous status", Value: string(v.From)})
		}
	case domain.HighLatency:
		m.Title = "High Latency"
		m.Description = fmt.Sprintf("Service %s is responding slowly", url)
		m.Color = ColorAmber
		m.Fields = append(m.Fields,
			Field{Name: "Response time", Value: ms(v.ResponseTimeMS)},
			Field{Name: "Threshold", Value: ms(v.ThresholdMS)},
		)
	default:
		generic(&m, url)
	}
	return m
}

func generic(m *Message, url string) {
	m.Title = "Alert"
	m.Description = fmt.Sprintf("Alert for %s", url)
	m.Color = ColorAmber
}

func ms(v int64) string { return strconv.FormatInt(v, 10) + "ms" }
