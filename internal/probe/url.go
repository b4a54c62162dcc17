package probe

import (
	"net/url"
	"strings"
)

// ValidTargetURL reports whether raw is an absolute http(s) URL with a host.
func ValidTargetURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}
