// Package docs renders the browser-facing documentation pages. The
// renderer is a pure function of the resolved route and the public base
// URL; it performs no I/O and cannot fail for a well-formed route.
package docs

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strings"

	"github.com/apiweave/agentgate/internal/domain"
)

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem auto; max-width: 52rem; padding: 0 1rem; color: #1f2430; }
h1 { font-size: 1.5rem; }
code, pre { background: #f4f5f7; border-radius: 4px; font-family: "SF Mono", Menlo, monospace; }
code { padding: 0.1rem 0.3rem; }
pre { padding: 0.8rem; overflow-x: auto; }
.method { display: inline-block; background: #2457d6; color: #fff; border-radius: 4px; padding: 0.1rem 0.5rem; font-size: 0.85rem; margin-right: 0.3rem; }
.muted { color: #6b7280; }
a { color: #2457d6; }
table { border-collapse: collapse; width: 100%; }
td, th { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #e5e7eb; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>`

const endpointBody = `<p class="muted"><a href="/">{{.AgentName}}</a></p>
<h1>{{.EndpointName}}</h1>
<p>{{.Description}}</p>
<p>{{range .Methods}}<span class="method">{{.}}</span>{{end}}<code>{{.Path}}</code></p>
<h2>Example request</h2>
<pre>curl -H "Accept: application/json" "{{.ExampleURL}}"</pre>
{{if .ExampleResponse}}<h2>Example response</h2>
<pre>{{.ExampleResponse}}</pre>{{end}}`

const indexBody = `<h1>API Gateway</h1>
<p class="muted">{{.AgentCount}} agents, {{.EndpointCount}} endpoints. Request any path with <code>Accept: application/json</code> for live data.</p>
{{range .Agents}}<h2>{{.Name}}</h2>
<p class="muted">{{.Description}}</p>
<table>
{{range .Endpoints}}<tr><td>{{range .Methods}}<span class="method">{{.}}</span>{{end}}</td><td><a href="{{.Path}}">{{.Path}}</a></td><td>{{.Name}}</td></tr>
{{end}}</table>
{{end}}`

const notFoundBody = `<h1>Not Found</h1>
<p>No endpoint is declared at <code>{{.Path}}</code>.</p>
<p class="muted"><a href="/">Back to the endpoint index</a></p>`

var (
	shellTmpl    = template.Must(template.New("shell").Parse(pageShell))
	endpointTmpl = template.Must(template.New("endpoint").Parse(endpointBody))
	indexTmpl    = template.Must(template.New("index").Parse(indexBody))
	notFoundTmpl = template.Must(template.New("notfound").Parse(notFoundBody))
)

// RenderEndpoint produces the documentation page for one endpoint.
func RenderEndpoint(agent *domain.Agent, ep *domain.Endpoint, publicBaseURL string) string {
	exampleURL := strings.TrimSuffix(publicBaseURL, "/") + ep.Path
	if ep.Parameters != "" {
		exampleURL += "?" + ep.Parameters
	}

	data := struct {
		AgentName       string
		EndpointName    string
		Description     string
		Methods         []string
		Path            string
		ExampleURL      string
		ExampleResponse string
	}{
		AgentName:       agent.Name,
		EndpointName:    ep.Name,
		Description:     ep.Description,
		Methods:         []string(ep.Methods),
		Path:            ep.Path,
		ExampleURL:      exampleURL,
		ExampleResponse: prettyJSON(ep.ExampleResponse),
	}
	return page(ep.Name, endpointTmpl, data)
}

// RenderIndex produces the landing page listing every agent and its
// endpoints.
func RenderIndex(agents []domain.Agent, publicBaseURL string) string {
	type indexEndpoint struct {
		Methods []string
		Path    string
		Name    string
	}
	type indexAgent struct {
		Name        string
		Description string
		Endpoints   []indexEndpoint
	}

	data := struct {
		Agents        []indexAgent
		AgentCount    int
		EndpointCount int
	}{AgentCount: len(agents)}

	for _, a := range agents {
		ia := indexAgent{Name: a.Name, Description: a.Description}
		for _, g := range a.Groups {
			for _, ep := range g.Endpoints {
				ia.Endpoints = append(ia.Endpoints, indexEndpoint{
					Methods: []string(ep.Methods),
					Path:    ep.Path,
					Name:    ep.Name,
				})
				data.EndpointCount++
			}
		}
		data.Agents = append(data.Agents, ia)
	}
	return page("API Gateway", indexTmpl, data)
}

// RenderNotFound produces the documentation-mode page for an unmatched
// path.
func RenderNotFound(path string) string {
	return page("Not Found", notFoundTmpl, struct{ Path string }{Path: path})
}

func page(title string, body *template.Template, data interface{}) string {
	var inner bytes.Buffer
	if err := body.Execute(&inner, data); err != nil {
		return "<!DOCTYPE html><html><body><h1>" + template.HTMLEscapeString(title) + "</h1></body></html>"
	}

	var out bytes.Buffer
	shell := struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(inner.String())}
	if err := shellTmpl.Execute(&out, shell); err != nil {
		return inner.String()
	}
	return out.String()
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
