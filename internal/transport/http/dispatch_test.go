package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/apiweave/agentgate/internal/catalog"
	"github.com/apiweave/agentgate/internal/domain"
	"github.com/apiweave/agentgate/internal/proxy"
)

func TestDispatchProxiesData(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/current" {
			t.Fatalf("unexpected upstream path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"temp":72}`)
	}))
	defer upstream.Close()

	e := newTestServer(t, testAgents(upstream.URL))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/weather/current", body["endpoint"])
	assert.Equal(t, "Weather Agent", body["agent"])
	assert.NotEmpty(t, body["timestamp"])
	assert.Equal(t, float64(72), body["temp"])
}

func TestDispatchRendersDocumentation(t *testing.T) {
	e := newTestServer(t, testAgents("https://wx.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	req.Header.Set(echo.HeaderAccept, "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	page := rec.Body.String()
	assert.Contains(t, page, "Current Weather")
	assert.Contains(t, page, "/weather/current")
}

func TestDispatchBrowserAcceptingBothGetsData(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"temp":72}`)
	}))
	defer upstream.Close()

	e := newTestServer(t, testAgents(upstream.URL))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	req.Header.Set(echo.HeaderAccept, "text/html,application/json")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

func TestDispatchMethodNotAllowed(t *testing.T) {
	e := newTestServer(t, testAgents("https://wx.example.com"))

	req := httptest.NewRequest(http.MethodPost, "/weather/current", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	var body struct {
		Error          string   `json:"error"`
		Method         string   `json:"method"`
		AllowedMethods []string `json:"allowedMethods"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "POST", body.Method)
	assert.Equal(t, []string{"GET"}, body.AllowedMethods)
}

func TestDispatchUnknownPath(t *testing.T) {
	e := newTestServer(t, testAgents("https://wx.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Error              string   `json:"error"`
		Method             string   `json:"method"`
		AvailableEndpoints []string `json:"availableEndpoints"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "GET", body.Method)
	assert.Contains(t, body.AvailableEndpoints, "/weather/current")
}

func TestDispatchUnknownPathDocumentationMode(t *testing.T) {
	e := newTestServer(t, testAgents("https://wx.example.com"))

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	req.Header.Set(echo.HeaderAccept, "text/html")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "/nonexistent")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
}

func TestDispatchAbsoluteUpstreamOverride(t *testing.T) {
	var baseHit, overrideHit bool

	base := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		baseHit = true
		fmt.Fprint(w, `{}`)
	}))
	defer base.Close()

	override := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		overrideHit = true
		fmt.Fprint(w, `{"source":"override"}`)
	}))
	defer override.Close()

	agents := testAgents(base.URL)
	agents[0].Groups[0].Endpoints = append(agents[0].Groups[0].Endpoints, domain.Endpoint{
		ID:          "alerts",
		Name:        "Alerts",
		Path:        "/weather/alerts",
		UpstreamURL: override.URL + "/active",
		Methods:     domain.MethodSet{"GET"},
	})
	e := newTestServer(t, agents)

	req := httptest.NewRequest(http.MethodGet, "/weather/alerts", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, overrideHit)
	assert.False(t, baseHit, "group baseUrl must not be contacted when the endpoint overrides it")

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "override", body["source"])
}

func TestDispatchForwardsQueryString(t *testing.T) {
	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{}`)
	}))
	defer upstream.Close()

	e := newTestServer(t, testAgents(upstream.URL))

	req := httptest.NewRequest(http.MethodGet, "/weather/current?a=1&b=2", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, gotQuery, "a=1")
	assert.Contains(t, gotQuery, "b=2")
}

func TestDispatchUpstreamFailureIs502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := upstream.URL
	upstream.Close()

	e := newTestServer(t, testAgents(baseURL))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bad Gateway", body["error"])
	assert.NotEmpty(t, body["detail"])
	assert.Equal(t, "/weather/current", body["endpoint"])
	assert.NotEmpty(t, body["upstreamUrl"])
}

func TestDispatchUpstreamFieldsWinOnCollision(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"endpoint":"upstream-wins","agent":"upstream-agent"}`)
	}))
	defer upstream.Close()

	e := newTestServer(t, testAgents(upstream.URL))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "upstream-wins", body["endpoint"])
	assert.Equal(t, "upstream-agent", body["agent"])
}

func TestDispatchNonObjectPayloadUnderDataKey(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[1,2,3]`)
	}))
	defer upstream.Close()

	e := newTestServer(t, testAgents(upstream.URL))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{float64(1), float64(2), float64(3)}, body["data"])
	assert.Equal(t, "/weather/current", body["endpoint"])
}

func TestDispatchForwardsPostBody(t *testing.T) {
	var gotBody string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer upstream.Close()

	agents := testAgents(upstream.URL)
	agents[0].Groups[0].Endpoints[0].Methods = domain.MethodSet{"GET", "POST"}
	e := newTestServer(t, agents)

	req := httptest.NewRequest(http.MethodPost, "/weather/current", strings.NewReader(`{"city":"Berlin"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"city":"Berlin"}`, gotBody)
}

// proxyUpstream guards against a relative upstream URL with no group
// base URL even though catalog validation rejects that shape at load
// time; a hand-built route exercises the guard directly.
func TestProxyUpstreamConfigurationError(t *testing.T) {
	cat, err := catalog.New(testAgents("https://wx.example.com"))
	assert.NoError(t, err)

	h := NewHandler(testConfig(), cat, proxy.NewClient(0, zerolog.Nop()), zerolog.Nop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/broken", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	route := domain.ResolvedRoute{
		Agent:    &domain.Agent{ID: "a", Name: "A"},
		Group:    &domain.Group{Name: "g"},
		Endpoint: &domain.Endpoint{Path: "/broken", UpstreamURL: "/nowhere", Methods: domain.MethodSet{"GET"}},
	}

	assert.NoError(t, h.proxyUpstream(c, route))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Configuration error", body["error"])
}
