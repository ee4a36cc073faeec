package engine

import (
	"net/url"
	"strings"

	"github.com/webinsights/webinsights/internal/core"
)

// CanonicalURL validates raw and reduces it to its canonical homepage form:
// scheme and host only, path reset to root. Repeated analyses of any path on
// the same host land on the same canonical request. The function is
// idempotent over its own output.
func CanonicalURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", core.ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", core.ErrInvalidURL
	}
	if parsed.Host == "" {
		return "", core.ErrInvalidURL
	}

	return parsed.Scheme + "://" + parsed.Host + "/", nil
}
