package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidDiscordWebhook(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"https://discord.com/api/webhooks/123456/abc-DEF_tok", true},
		{"http://127.0.0.1:9999/api/webhooks/1/t", true},
		{"https://discord.com/api/webhooks/abc/tok", false},
		{"https://discord.com/api/webhooks/123/", false},
		{"discord.com/api/webhooks/1/t", false},
		{"ftp://discord.com/api/webhooks/1/t", false},
		{"", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ValidDiscordWebhook(c.in), "ValidDiscordWebhook(%q)", c.in)
	}
}

func TestNewDiscord_Malformed(t *testing.T) {
	d, err := NewDiscord("https://example.com/not-a-webhook")
	require.ErrorIs(t, err, ErrWebhookMalformed)
	assert.Nil(t, d)

	d, err = NewDiscord("")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDiscord_DeliverSendsEmbed(t *testing.T) {
	var got discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d, err := NewDiscord(srv.URL + "/api/webhooks/42/token")
	require.NoError(t, err)

	now := time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)
	err = d.Deliver(context.Background(), Message{
		Title:       "Service Down",
		Description: "Service https://example.com is unreachable",
		Color:       ColorRed,
		Timestamp:   now,
		Fields:      []Field{{Name: "URL", Value: "https://example.com"}},
	})
	require.NoError(t, err)

	assert.Equal(t, discordUsername, got.Username)
	require.Len(t, got.Embeds, 1)
	e := got.Embeds[0]
	assert.Equal(t, "Service Down", e.Title)
	assert.Equal(t, ColorRed, e.Color)
	assert.Equal(t, "2025-08-18T12:00:00.000Z", e.Timestamp)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "URL", e.Fields[0].Name)
}

func TestDiscord_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d, err := NewDiscord(srv.URL + "/api/webhooks/42/token")
	require.NoError(t, err)
	err = d.Deliver(context.Background(), Message{Title: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDeliveryFailed))
}
