package proxy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apiweave/agentgate/internal/domain"
)

// ErrNoBaseURL is returned when an endpoint declares a relative
// upstream URL but its group has no base URL to resolve it against.
// This is a catalog defect, not an upstream failure, and is surfaced as
// a 500-class configuration error by the dispatcher.
var ErrNoBaseURL = errors.New("relative upstream url with no group baseUrl")

// BuildUpstreamURL composes the fully qualified upstream URL for an
// endpoint. An absolute upstream URL is returned unchanged and the
// group's base URL is ignored; a relative one is appended to the base
// URL with exactly one joining slash.
func BuildUpstreamURL(group *domain.Group, ep *domain.Endpoint) (string, error) {
	if domain.IsAbsoluteURL(ep.UpstreamURL) {
		return ep.UpstreamURL, nil
	}
	if group.BaseURL == "" {
		return "", fmt.Errorf("endpoint %q: %w", ep.Path, ErrNoBaseURL)
	}

	base := strings.TrimSuffix(group.BaseURL, "/")
	fragment := "/" + strings.TrimPrefix(ep.UpstreamURL, "/")
	return base + fragment, nil
}
