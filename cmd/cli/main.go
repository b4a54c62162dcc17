package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
)

const usage = `usage: uptime-cli [-api URL] [-key KEY] <status|metrics|check>

  status   show the latest check
  metrics  list the retained metric log
  check    trigger a check now (needs an admin key)

API_BASE and API_KEY provide defaults for -api and -key.`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("uptime-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprintln(stderr, usage) }

	api := fs.String("api", envOr("API_BASE", "http://localhost:8080"), "API base URL")
	key := fs.String("key", os.Getenv("API_KEY"), "API key")
	timeout := fs.Duration("timeout", 60*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	c := client{base: strings.TrimRight(*api, "/"), key: *key, http: &http.Client{Timeout: *timeout}}

	var err error
	switch fs.Arg(0) {
	case "status":
		err = c.status(stdout)
	case "metrics":
		err = c.metrics(stdout)
	case "check":
		err = c.check(stdout)
	default:
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

type client struct {
	base string
	key  string
	http *http.Client
}

func (c client) do(method, path string, out any) error {
	req, err := http.NewRequest(method, c.base+path, nil)
	if err != nil {
		return err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contacting API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Error != "" {
			return fmt.Errorf("API returned %s: %s", resp.Status, e.Error)
		}
		return fmt.Errorf("API returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c client) status(w io.Writer) error {
	var st struct {
		Status       string     `json:"status"`
		LastCheck    *time.Time `json:"lastCheck"`
		ResponseTime *int64     `json:"responseTime"`
		URL          string     `json:"url"`
		Message      string     `json:"message"`
	}
	if err := c.do(http.MethodGet, "/api/status", &st); err != nil {
		return err
	}
	if st.LastCheck == nil {
		fmt.Fprintf(w, "%s (%s)\n", st.Status, st.Message)
		return nil
	}
	var rt int64
	if st.ResponseTime != nil {
		rt = *st.ResponseTime
	}
	fmt.Fprintf(w, "%s %s %dms at %s\n", st.URL, strings.ToUpper(st.Status), rt, st.LastCheck.Format(time.RFC3339))
	return nil
}

func (c client) metrics(w io.Writer) error {
	var list []domain.CheckResult
	if err := c.do(http.MethodGet, "/api/metrics", &list); err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "no checks recorded")
		return nil
	}
	up := 0
	for _, r := range list {
		if r.Up() {
			up++
		}
		printResult(w, r)
	}
	fmt.Fprintf(w, "%d checks, %.1f%% up\n", len(list), float64(up)*100/float64(len(list)))
	return nil
}

func (c client) check(w io.Writer) error {
	var r domain.CheckResult
	if err := c.do(http.MethodPost, "/api/check", &r); err != nil {
		return err
	}
	printResult(w, r)
	for _, a := range r.Alerts {
		fmt.Fprintf(w, "  alert: %s\n", a.Type())
	}
	return nil
}

func printResult(w io.Writer, r domain.CheckResult) {
	line := fmt.Sprintf("%s  %-4s %6dms", r.Timestamp.Format(time.RFC3339), r.Status, r.ResponseTimeMS)
	if r.Error != "" {
		line += "  " + r.Error
	}
	fmt.Fprintln(w, line)
}
