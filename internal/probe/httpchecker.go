package probe

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const userAgent = "uptime-monitor/1.0"

type HTTPChecker struct {
	Client *http.Client
}

// NewHTTPChecker returns a checker whose client has no overall timeout;
// each attempt is bounded by the context the Prober hands it.
func NewHTTPChecker() *HTTPChecker {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   DefaultTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   DefaultTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &HTTPChecker{Client: &http.Client{Transport: transport}}
}

// Check issues a GET and classifies the outcome: 2xx is success, any other
// status is reported as "HTTP status <code>", transport errors verbatim.
func (h *HTTPChecker) Check(ctx context.Context, target string) Attempt {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Attempt{Err: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.Client.Do(req)
	if err != nil {
		return Attempt{Err: err.Error()}
	}
	defer resp.Body.Close()
	// drain a bounded amount so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Attempt{Success: true, StatusCode: resp.StatusCode}
	}
	return Attempt{
		StatusCode: resp.StatusCode,
		Err:        fmt.Sprintf("HTTP status %d", resp.StatusCode),
	}
}
