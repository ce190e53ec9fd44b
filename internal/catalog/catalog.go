// Package catalog holds the immutable registry of agents the gateway
// serves. It is built once at startup, validated, and shared read-only
// across all request flows, so lookups need no locking.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/apiweave/agentgate/internal/domain"
)

//go:embed default_catalog.json
var defaultCatalogJSON []byte

// EndpointInfo is an endpoint annotated with its owning agent's display
// attributes, used wherever the flattened endpoint list is shown.
type EndpointInfo struct {
	domain.Endpoint
	AgentID   string `json:"agentId"`
	AgentName string `json:"agentName"`
	AgentIcon string `json:"agentIcon,omitempty"`
}

// Catalog is the validated, indexed set of agents.
type Catalog struct {
	agents    []domain.Agent
	byID      map[string]*domain.Agent
	byPath    map[string]domain.ResolvedRoute
	flattened []EndpointInfo
}

type catalogFile struct {
	Agents []domain.Agent `json:"agents"`
}

// Load reads the catalog from the JSON document at path, or from the
// embedded default catalog when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalogJSON
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
	}

	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return New(file.Agents)
}

// New validates the agent set and builds the lookup indexes. It
// enforces the catalog invariants: agent ids are unique, endpoint paths
// are globally unique, every endpoint declares at least one method, and
// a relative upstream URL is only legal inside a group with a base URL.
func New(agents []domain.Agent) (*Catalog, error) {
	c := &Catalog{
		agents: agents,
		byID:   make(map[string]*domain.Agent),
		byPath: make(map[string]domain.ResolvedRoute),
	}

	for ai := range agents {
		agent := &c.agents[ai]
		if agent.ID == "" {
			return nil, fmt.Errorf("agent %q has no id", agent.Name)
		}
		if _, dup := c.byID[agent.ID]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", agent.ID)
		}
		c.byID[agent.ID] = agent

		for gi := range agent.Groups {
			group := &agent.Groups[gi]
			for ei := range group.Endpoints {
				ep := &group.Endpoints[ei]
				if ep.Path == "" {
					return nil, fmt.Errorf("agent %q: endpoint %q has no path", agent.ID, ep.ID)
				}
				if _, dup := c.byPath[ep.Path]; dup {
					return nil, fmt.Errorf("duplicate endpoint path %q", ep.Path)
				}
				if len(ep.Methods) == 0 {
					return nil, fmt.Errorf("endpoint %q declares no methods", ep.Path)
				}
				if !domain.IsAbsoluteURL(ep.UpstreamURL) && group.BaseURL == "" {
					return nil, fmt.Errorf("endpoint %q has relative upstream url %q but group %q has no baseUrl",
						ep.Path, ep.UpstreamURL, group.Name)
				}

				c.byPath[ep.Path] = domain.ResolvedRoute{
					Agent:    agent,
					Group:    group,
					Endpoint: ep,
				}
				c.flattened = append(c.flattened, EndpointInfo{
					Endpoint:  *ep,
					AgentID:   agent.ID,
					AgentName: agent.Name,
					AgentIcon: agent.Icon,
				})
			}
		}
	}

	return c, nil
}

// Agents returns all agents in declaration order.
func (c *Catalog) Agents() []domain.Agent {
	return c.agents
}

// AgentByID returns the agent with the given id. Absence is not an
// error; callers decide how to surface "not found".
func (c *Catalog) AgentByID(id string) (*domain.Agent, bool) {
	agent, ok := c.byID[id]
	return agent, ok
}

// Endpoints returns every endpoint of every group of every agent in
// declaration order, annotated for display.
func (c *Catalog) Endpoints() []EndpointInfo {
	return c.flattened
}

// EndpointCount returns the number of routable endpoints.
func (c *Catalog) EndpointCount() int {
	return len(c.flattened)
}

// AgentCount returns the number of configured agents.
func (c *Catalog) AgentCount() int {
	return len(c.agents)
}

// Resolve maps a request path to its declared route. Matching is exact
// and case-sensitive with no trailing-slash normalization; paths that
// differ only in a trailing slash are distinct.
func (c *Catalog) Resolve(path string) (domain.ResolvedRoute, bool) {
	route, ok := c.byPath[path]
	return route, ok
}

// EndpointCountFor returns how many endpoints an agent declares across
// all of its groups.
func EndpointCountFor(agent *domain.Agent) int {
	n := 0
	for _, g := range agent.Groups {
		n += len(g.Endpoints)
	}
	return n
}
