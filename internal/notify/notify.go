package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/obs"
)

var (
	ErrWebhookMalformed = errors.New("webhook url malformed")
	ErrDeliveryFailed   = errors.New("alert delivery failed")
)

// Channel delivers a rendered message to one external destination.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, m Message) error
}

type Multi []Channel

// Deliver sends m to every channel and combines their failures.
func (m Multi) Deliver(ctx context.Context, msg Message) error {
	var err error
	for _, c := range m {
		if c == nil {
			continue
		}
		if e := c.Deliver(ctx, msg); e != nil {
			obs.NotifyFailures.WithLabelValues(c.Name()).Inc()
			err = multierr.Append(err, fmt.Errorf("%s: %w", c.Name(), e))
		}
	}
	return err
}

// Notifier formats alerts and hands them to its channels. With no channels
// it is disabled and Send only logs.
type Notifier struct {
	channels  Multi
	targetURL string
	log       *zap.Logger
	now       func() time.Time
}

// New builds a Notifier. targetURL is shown when an alert carries no URL.
func New(targetURL string, log *zap.Logger, channels ...Channel) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	var cs Multi
	for _, c := range channels {
		if c != nil {
			cs = append(cs, c)
		}
	}
	return &Notifier{channels: cs, targetURL: targetURL, log: log, now: time.Now}
}

// NewFromWebhooks wires the Discord and Slack channels from configuration.
// An empty or malformed webhook leaves that channel out for the lifetime of
// the process; if none survive the Notifier is disabled.
func NewFromWebhooks(targetURL, discordURL, slackURL string, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	var channels []Channel

	switch d, err := NewDiscord(discordURL); {
	case err != nil:
		log.Error("discord_webhook_invalid", zap.Error(err))
	case d != nil:
		channels = append(channels, d)
	}

	switch s, err := NewSlack(slackURL); {
	case err != nil:
		log.Error("slack_webhook_invalid", zap.Error(err))
	case s != nil:
		channels = append(channels, s)
	}

	if len(channels) == 0 {
		log.Warn("notifier_disabled", zap.String("reason", "no valid webhook configured"))
	}
	return New(targetURL, log, channels...)
}

func (n *Notifier) Enabled() bool { return len(n.channels) > 0 }

// Send never fails to the caller: delivery errors are logged and dropped.
func (n *Notifier) Send(ctx context.Context, a domain.Alert) {
	if a == nil {
		return
	}
	fields := []zap.Field{
		zap.String("alert_type", string(a.Type())),
		zap.String("url", a.Target()),
	}
	if !n.Enabled() {
		n.log.Warn("alert_not_sent_notifier_disabled", fields...)
		return
	}

	msg := Format(a, n.targetURL, n.now())
	if err := n.channels.Deliver(ctx, msg); err != nil {
		n.log.Error("alert_delivery_failed", append(fields, zap.Error(err))...)
		return
	}
	n.log.Info("alert_sent", append(fields, zap.String("title", msg.Title))...)
}
