// Package http provides the HTTP server implementation for the
// gateway: the static routes, the catalog-driven dispatch routes, and
// the fallback handlers.
package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/apiweave/agentgate/internal/catalog"
	"github.com/apiweave/agentgate/internal/config"
	"github.com/apiweave/agentgate/internal/proxy"
)

// NewServer creates and configures the gateway's HTTP server. Every
// endpoint declared in the catalog is registered for all verbs; the
// dispatcher narrows them down to the declared method set so an
// unmatched verb yields 405 while an unmatched path falls through to
// the generic 404 handler.
func NewServer(cfg *config.Config, cat *catalog.Catalog, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h := NewHandler(cfg, cat, proxy.NewClient(cfg.UpstreamTimeout, logger), logger)

	e.HTTPErrorHandler = h.HTTPErrorHandler

	h.RegisterRoutes(e)

	return e
}

// RegisterRoutes registers the static routes, one catch-all route per
// catalog endpoint, and the 404 fallback.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/", h.Root)
	e.GET("/agents", h.ListAgents)
	e.GET("/agents/:agent_id", h.GetAgent)

	for _, ep := range h.catalog.Endpoints() {
		e.Any(ep.Path, h.Dispatch)
	}

	e.RouteNotFound("/*", h.NotFound)
}

// HTTPErrorHandler turns unhandled faults into the gateway's JSON error
// shape. Internal detail is disclosed only outside production.
func (h *Handler) HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.Request().URL.Path).Msg("unhandled internal fault")
	}

	body := map[string]interface{}{"error": message}
	if !h.cfg.IsProduction() {
		body["detail"] = err.Error()
	}

	if writeErr := c.JSON(status, body); writeErr != nil {
		h.logger.Error().Err(writeErr).Msg("failed to write error response")
	}
}
