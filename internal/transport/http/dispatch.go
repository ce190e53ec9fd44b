package http

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/apiweave/agentgate/internal/docs"
	"github.com/apiweave/agentgate/internal/domain"
	"github.com/apiweave/agentgate/internal/proxy"
)

// Dispatch serves every catalog-declared endpoint. The gates run in a
// fixed order: resolve the path, validate the verb against the declared
// method set, negotiate the response mode, then either render the
// endpoint's documentation or proxy the call upstream. Path resolution
// is deliberately separate from method checking so an unknown path
// yields 404 while a known path with the wrong verb yields 405.
func (h *Handler) Dispatch(c echo.Context) error {
	req := c.Request()

	route, ok := h.catalog.Resolve(req.URL.Path)
	if !ok {
		// Not one of ours; defer to the generic fallback.
		return h.NotFound(c)
	}

	if !route.Endpoint.Methods.Allows(req.Method) {
		return c.JSON(http.StatusMethodNotAllowed, map[string]interface{}{
			"error":          "Method not allowed",
			"method":         req.Method,
			"allowedMethods": route.Endpoint.Methods,
		})
	}

	if wantsDocumentation(req.Header.Get(echo.HeaderAccept)) {
		return c.HTML(http.StatusOK, docs.RenderEndpoint(route.Agent, route.Endpoint, h.cfg.PublicBaseURL))
	}

	return h.proxyUpstream(c, route)
}

// proxyUpstream builds the upstream URL for the route, executes the
// call, and assembles the response envelope.
func (h *Handler) proxyUpstream(c echo.Context, route domain.ResolvedRoute) error {
	req := c.Request()
	requestID := "req_" + uuid.New().String()[:8]

	upstreamURL, err := proxy.BuildUpstreamURL(route.Group, route.Endpoint)
	if err != nil {
		h.logger.Error().Err(err).Str("endpoint", route.Endpoint.Path).Msg("upstream url resolution failed")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error":    "Configuration error",
			"message":  err.Error(),
			"endpoint": route.Endpoint.Path,
		})
	}

	var body []byte
	if req.Body != nil {
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		}
	}

	result := h.proxy.Execute(req.Context(), upstreamURL, req.Method, c.QueryParams(), body)
	if !result.OK {
		return c.JSON(http.StatusBadGateway, map[string]interface{}{
			"error":       "Bad Gateway",
			"message":     "upstream request failed",
			"detail":      result.Error,
			"endpoint":    route.Endpoint.Path,
			"upstreamUrl": result.UpstreamURL,
			"requestId":   requestID,
		})
	}

	return c.JSON(result.StatusCode, h.envelope(route, requestID, result.Data))
}

// envelope merges the gateway's request metadata with the upstream
// payload's top-level fields. Upstream fields win on key collision. A
// non-object payload (array, scalar) is carried under a data key since
// it has no top-level fields to merge.
func (h *Handler) envelope(route domain.ResolvedRoute, requestID string, payload json.RawMessage) map[string]interface{} {
	out := map[string]interface{}{
		"endpoint":  route.Endpoint.Path,
		"agent":     route.Agent.Name,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"requestId": requestID,
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err == nil && fields != nil {
		for k, v := range fields {
			out[k] = v
		}
		return out
	}

	out["data"] = payload
	return out
}
