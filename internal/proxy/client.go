// Package proxy performs the outbound half of a gateway call: building
// the upstream URL for a resolved endpoint and executing exactly one
// HTTP request against it.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/apiweave/agentgate/internal/domain"
)

const userAgent = "agentgate/0.1.0"

// Client executes upstream calls. One outbound request per Execute
// invocation; no retries, no backoff.
type Client struct {
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates an upstream client. A zero timeout leaves the
// transport default in place.
func NewClient(timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Execute calls upstreamURL with the given method, forwarding query
// parameters verbatim (repeated keys preserved). The body is attached
// as a JSON payload only for a non-empty POST; other methods never send
// one. Every transport failure and every non-JSON response body is
// normalized into a failed ProxyResult, never returned as an error.
func (c *Client) Execute(ctx context.Context, upstreamURL, method string, query url.Values, body []byte) domain.ProxyResult {
	c.logger.Debug().Str("method", method).Str("upstream_url", upstreamURL).Msg("proxying upstream request")

	target := upstreamURL
	if encoded := query.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + encoded
	}

	var reqBody io.Reader
	if method == http.MethodPost && len(body) > 0 {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return c.fail(target, fmt.Errorf("failed to create upstream request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(target, fmt.Errorf("upstream request failed: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(target, fmt.Errorf("failed to read upstream response: %w", err))
	}

	if !json.Valid(respBody) {
		return c.fail(target, fmt.Errorf("upstream returned a non-JSON body (status %d)", resp.StatusCode))
	}

	return domain.ProxyResult{
		OK:          true,
		StatusCode:  resp.StatusCode,
		Data:        json.RawMessage(respBody),
		UpstreamURL: target,
	}
}

func (c *Client) fail(target string, err error) domain.ProxyResult {
	c.logger.Warn().Err(err).Str("upstream_url", target).Msg("upstream call failed")
	return domain.ProxyResult{
		OK:          false,
		Error:       err.Error(),
		UpstreamURL: target,
	}
}
