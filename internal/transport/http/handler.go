package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/apiweave/agentgate/internal/catalog"
	"github.com/apiweave/agentgate/internal/config"
	"github.com/apiweave/agentgate/internal/docs"
	"github.com/apiweave/agentgate/internal/proxy"
)

// Handler handles HTTP requests.
type Handler struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	proxy   *proxy.Client
	logger  zerolog.Logger
	started time.Time
}

// NewHandler creates a new handler.
func NewHandler(cfg *config.Config, cat *catalog.Catalog, client *proxy.Client, logger zerolog.Logger) *Handler {
	return &Handler{
		cfg:     cfg,
		catalog: cat,
		proxy:   client,
		logger:  logger,
		started: time.Now(),
	}
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":        "healthy",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"uptime":        time.Since(h.started).Round(time.Second).String(),
		"environment":   h.cfg.Environment,
		"agentCount":    h.catalog.AgentCount(),
		"endpointCount": h.catalog.EndpointCount(),
	})
}

// Root serves the landing page: rendered documentation for browsers, a
// JSON summary for everything else.
// GET /
func (h *Handler) Root(c echo.Context) error {
	if wantsDocumentation(c.Request().Header.Get(echo.HeaderAccept)) {
		return c.HTML(http.StatusOK, docs.RenderIndex(h.catalog.Agents(), h.cfg.PublicBaseURL))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"service":       "agentgate",
		"agentCount":    h.catalog.AgentCount(),
		"endpointCount": h.catalog.EndpointCount(),
		"endpoints":     h.catalog.Endpoints(),
	})
}

// ListAgents lists all configured agents.
// GET /agents
func (h *Handler) ListAgents(c echo.Context) error {
	agents := h.catalog.Agents()

	agentList := make([]map[string]interface{}, len(agents))
	for i := range agents {
		a := &agents[i]
		agentList[i] = map[string]interface{}{
			"id":            a.ID,
			"name":          a.Name,
			"description":   a.Description,
			"icon":          a.Icon,
			"endpointCount": catalog.EndpointCountFor(a),
			"link":          h.cfg.PublicBaseURL + "/agents/" + a.ID,
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"agents": agentList,
	})
}

// GetAgent gets a specific agent by id.
// GET /agents/:agent_id
func (h *Handler) GetAgent(c echo.Context) error {
	agent, ok := h.catalog.AgentByID(c.Param("agent_id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Agent not found"})
	}
	return c.JSON(http.StatusOK, agent)
}

// NotFound is the fallback for paths that match no declared endpoint:
// a rendered not-found page in documentation mode, otherwise a JSON
// body enumerating every routable path.
func (h *Handler) NotFound(c echo.Context) error {
	req := c.Request()
	if wantsDocumentation(req.Header.Get(echo.HeaderAccept)) {
		return c.HTML(http.StatusNotFound, docs.RenderNotFound(req.URL.Path))
	}

	available := make([]string, 0, h.catalog.EndpointCount())
	for _, ep := range h.catalog.Endpoints() {
		available = append(available, ep.Path)
	}

	return c.JSON(http.StatusNotFound, map[string]interface{}{
		"error":              "Not found",
		"message":            "no endpoint is declared at " + req.URL.Path,
		"method":             req.Method,
		"availableEndpoints": available,
	})
}
