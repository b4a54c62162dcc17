// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/hamed0406/uptimemonitor/internal/config"
	"github.com/hamed0406/uptimemonitor/internal/notify"
	"github.com/hamed0406/uptimemonitor/internal/probe"
)

type level int

const (
	levelOK level = iota
	levelWarn
	levelFail
)

type finding struct {
	level level
	msg   string
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✖ config:", err)
		os.Exit(1)
	}
	if !report(os.Stdout, os.Stderr, check(cfg)) {
		os.Exit(1)
	}
}

func report(stdout, stderr io.Writer, fs []finding) bool {
	passed := true
	for _, f := range fs {
		switch f.level {
		case levelOK:
			fmt.Fprintln(stdout, "✔", f.msg)
		case levelWarn:
			fmt.Fprintln(stderr, "⚠", f.msg)
		case levelFail:
			fmt.Fprintln(stderr, "✖", f.msg)
			passed = false
		}
	}
	if passed {
		fmt.Fprintln(stdout, "✔ preflight passed")
	}
	return passed
}

func check(cfg config.Config) []finding {
	var out []finding
	ok := func(msg string) { out = append(out, finding{levelOK, msg}) }
	warn := func(msg string) { out = append(out, finding{levelWarn, msg}) }
	fail := func(msg string) { out = append(out, finding{levelFail, msg}) }

	if probe.ValidTargetURL(cfg.TargetURL) {
		ok("TARGET_URL=" + cfg.TargetURL)
	} else {
		fail("TARGET_URL is not an absolute http(s) URL: " + cfg.TargetURL)
	}

	switch {
	case cfg.DiscordWebhookURL == "" && cfg.SlackWebhookURL == "":
		warn("no DISCORD_WEBHOOK_URL or SLACK_WEBHOOK_URL; alerts will only be logged.")
	case cfg.DiscordWebhookURL != "" && !notify.ValidDiscordWebhook(cfg.DiscordWebhookURL):
		fail("DISCORD_WEBHOOK_URL does not look like https://discord.com/api/webhooks/<id>/<token>; notifier would be disabled.")
	case cfg.DiscordWebhookURL != "":
		ok("DISCORD_WEBHOOK_URL present")
	}
	if cfg.SlackWebhookURL != "" {
		if _, err := notify.NewSlack(cfg.SlackWebhookURL); err != nil {
			fail("SLACK_WEBHOOK_URL invalid: " + err.Error())
		} else {
			ok("SLACK_WEBHOOK_URL present")
		}
	}

	if len(cfg.AdminAPIKeys) == 0 {
		warn("ADMIN_API_KEYS is empty; POST /api/check is open to anyone.")
	}
	if len(cfg.PublicAPIKeys) == 0 && len(cfg.AdminAPIKeys) == 0 {
		warn("PUBLIC_API_KEYS and ADMIN_API_KEYS are empty; read routes are open.")
	}
	for _, k := range append(append([]string{}, cfg.PublicAPIKeys...), cfg.AdminAPIKeys...) {
		if len(k) < 16 {
			warn("an API key is shorter than 16 characters.")
			break
		}
	}

	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		fail("API_ADDR is not host:port: " + cfg.Addr)
	} else {
		ok("API_ADDR=" + cfg.Addr)
	}

	if cfg.CheckIntervalSec == 0 {
		warn("CHECK_INTERVAL is 0; scheduled checks are disabled.")
	}
	if cfg.StorageDir == "" {
		warn("STORAGE_DIR empty; metrics are kept in memory and lost on restart.")
	} else {
		ok("STORAGE_DIR=" + cfg.StorageDir)
	}

	if len(cfg.AllowedOrigins) == 0 || strings.Join(cfg.AllowedOrigins, ",") == "*" {
		warn("ALLOWED_ORIGINS allows every origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}
	return out
}
