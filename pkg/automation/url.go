package automation

import (
	"net/url"
	"strings"
)

// DefaultHomeURL is the navigation target used when a launch request carries
// no usable URL.
const DefaultHomeURL = "https://www.google.com"

// EnsureValidURL normalizes a user-supplied navigation target. Empty or
// unparsable input falls back to the default home URL; input without a
// scheme gets https:// prepended; http/https URLs pass through unchanged.
func EnsureValidURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultHomeURL
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return DefaultHomeURL
	}

	return raw
}
