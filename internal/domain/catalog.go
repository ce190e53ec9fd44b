// Package domain defines the gateway's data model: agents, their
// endpoint groups, and the request-scoped results produced while
// dispatching a call.
package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// IsAbsoluteURL reports whether raw parses as a URL with a scheme. An
// endpoint upstream URL that is absolute overrides its group's base URL
// entirely; a relative one is appended to it.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// Agent is a named family of related endpoints, typically fronting one
// third-party service. Agents are built once at startup and never
// mutated afterwards.
type Agent struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Icon        string  `json:"icon,omitempty"`
	Groups      []Group `json:"groups"`
}

// Group is a sub-grouping within an agent whose endpoints share a
// common upstream base URL. A group has no identity outside its agent.
type Group struct {
	Name      string     `json:"name"`
	BaseURL   string     `json:"baseUrl,omitempty"`
	Endpoints []Endpoint `json:"endpoints"`
}

// Endpoint is one externally routable path. Path is the dispatch key
// and must be unique across the whole catalog. UpstreamURL is either an
// absolute URL, which overrides the group's BaseURL entirely, or a path
// fragment appended to it.
type Endpoint struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Path            string          `json:"path"`
	UpstreamURL     string          `json:"upstreamUrl"`
	Methods         MethodSet       `json:"method"`
	Parameters      string          `json:"parameters,omitempty"`
	ExampleResponse json.RawMessage `json:"exampleResponse,omitempty"`
}

// MethodSet is the ordered set of HTTP verbs an endpoint accepts. The
// catalog format allows declaring a single verb as a bare string or
// several as an array; both decode into the same shape so downstream
// code only ever deals with a slice.
type MethodSet []string

// UnmarshalJSON accepts either "GET" or ["GET","POST"].
func (m *MethodSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*m = MethodSet{strings.ToUpper(single)}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("method must be a string or an array of strings: %w", err)
	}
	set := make(MethodSet, len(many))
	for i, v := range many {
		set[i] = strings.ToUpper(v)
	}
	*m = set
	return nil
}

// MarshalJSON always emits the array form.
func (m MethodSet) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(m))
}

// Allows reports whether verb is in the set. Matching is exact; verbs
// are normalized to upper case when the set is decoded.
func (m MethodSet) Allows(verb string) bool {
	for _, v := range m {
		if v == verb {
			return true
		}
	}
	return false
}

// ResolvedRoute is the request-scoped triple produced by path
// resolution. It borrows pointers into the immutable catalog and is
// discarded when the response is written.
type ResolvedRoute struct {
	Agent    *Agent
	Group    *Group
	Endpoint *Endpoint
}

// ProxyResult is the outcome of one upstream call. Failures are carried
// as values here, never as Go errors, so the dispatcher always gets a
// result it can turn into a response.
type ProxyResult struct {
	OK          bool
	StatusCode  int
	Data        json.RawMessage
	Error       string
	UpstreamURL string
}
