package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Slack struct {
	Webhook string
	Client  *http.Client
}

func NewSlack(webhook string) (*Slack, error) {
	if webhook == "" {
		return nil, nil
	}
	u, err := url.ParseRequestURI(webhook)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: slack webhook %q", ErrWebhookMalformed, webhook)
	}
	return &Slack{
		Webhook: webhook,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type slackPayload struct {
	Text string `json:"text"`
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Deliver(ctx context.Context, m Message) error {
	var b strings.Builder
	b.WriteString("*" + m.Title + "*\n" + m.Description)
	for _, f := range m.Fields {
		b.WriteString("\n" + f.Name + ": " + f.Value)
	}
	body, _ := json.Marshal(slackPayload{Text: b.String()})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Webhook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: slack status %d", ErrDeliveryFailed, resp.StatusCode)
	}
	return nil
}
