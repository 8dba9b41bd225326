package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/pkg/adapters/memory"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/observability"
	"github.com/aretw0/statemap/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkoutLayout = `{
  "class": "GraphLinksModel",
  "linkFromPortIdProperty": "fromPort",
  "nodeDataArray": [
    {"key": "cart", "category": "Start", "loc": "0 0"},
    {"key": "paid", "category": "Conditional", "concrete": "isPaid"},
    {"key": "ship", "category": "State", "turbo": true}
  ],
  "linkDataArray": [
    {"from": "cart", "to": "paid", "fromPort": "complete"},
    {"from": "paid", "to": "ship", "fromPort": "true"},
    {"from": "paid", "to": "cart", "fromPort": "false"}
  ]
}`

const checkoutConfig = `{
  "states": [
    {"id": "cart", "entryPoint": true, "links": {"complete": "paid"}},
    {"id": "ship", "turboSkip": true, "links": {}}
  ],
  "decisions": [
    {"id": "paid", "concrete": "isPaid", "links": {"true": "ship", "false": "cart"}}
  ],
  "superStates": []
}`

func newTestHandler(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	h, err := NewHandler(opts...)
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.Equal(t, "Statemap API", doc.Info.Title)
	assert.NotNil(t, doc.Paths.Find("/diagrams/{id}/config"))
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, "GET", "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	var info struct {
		App        string                       `json:"app"`
		Version    string                       `json:"version"`
		APIVersion string                       `json:"api_version"`
		Attributes map[string]map[string]string `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "statemap-http", info.App)
	assert.Equal(t, strings.TrimSpace(statemap.Version), info.Version)
	assert.Equal(t, "1.0.0", info.APIVersion)
	assert.Equal(t, "string?", info.Attributes["Conditional"]["concrete"])
	assert.Equal(t, "bool?", info.Attributes["State"]["turbo"])

	w = do(t, h, "GET", "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")
}

func TestProject(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/project", checkoutLayout)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Config      domain.Document   `json:"config"`
		Diagnostics []json.RawMessage `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"cart"}, resp.Config.EntryPoints())
	require.Len(t, resp.Config.Decisions, 1)
	assert.Equal(t, "isPaid", resp.Config.Decisions[0].Concrete)
	assert.Empty(t, resp.Diagnostics)
}

func TestProject_NoEntryPoint(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/project", `{"nodeDataArray": [{"key": "a", "category": "State"}], "linkDataArray": []}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"config": {}, "diagnostics": []}`, w.Body.String())
}

func TestProject_Diagnostics(t *testing.T) {
	h := newTestHandler(t)

	body := `{"nodeDataArray": [
	  {"key": "a", "category": "Start"},
	  {"key": "w", "category": "Widget"}
	], "linkDataArray": []}`
	w := do(t, h, "POST", "/project", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"unknown_category"`)
}

func TestRequestValidation(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"layout must be an object", "/project", `[]`},
		{"nodes must be an array", "/project", `{"nodeDataArray": "nope"}`},
		{"states must be an array", "/validate", `{"states": "x"}`},
		{"state needs an id", "/hydrate", `{"states": [{"links": {}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, "POST", tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}

	w := do(t, h, "GET", "/diagrams/d/config?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHydrate(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/hydrate", checkoutConfig)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var model struct {
		NodeDataArray []map[string]any `json:"nodeDataArray"`
		LinkDataArray []map[string]any `json:"linkDataArray"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &model))
	assert.Len(t, model.NodeDataArray, 3)
	assert.Len(t, model.LinkDataArray, 3)
	assert.Equal(t, "cart", model.NodeDataArray[0]["key"])
	assert.Equal(t, "Start", model.NodeDataArray[0]["category"])
}

func TestHydrate_Rejected(t *testing.T) {
	h := newTestHandler(t)

	body := `{"states": [
	  {"id": "a", "entryPoint": true, "links": {"complete": "ghost"}},
	  {"id": "a", "links": {}}
	]}`
	w := do(t, h, "POST", "/hydrate", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var res ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
}

func TestValidate(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "POST", "/validate", checkoutConfig)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid": true, "errors": []}`, w.Body.String())

	w = do(t, h, "POST", "/validate", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res ValidationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "entry point")
}

func TestDiagramLifecycle(t *testing.T) {
	h := newTestHandler(t)

	w := do(t, h, "GET", "/diagrams/checkout", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, "PUT", "/diagrams/checkout", `{"name": "Checkout", "layout": `+checkoutLayout+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var commit CommitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &commit))
	assert.Equal(t, "checkout", commit.Diagram.ID)
	assert.Equal(t, "Checkout", commit.Diagram.Name)
	require.NotNil(t, commit.Diff)
	assert.Equal(t, []string{"cart", "paid", "ship"}, commit.Diff.Added)

	// Same layout again: nothing changed.
	w = do(t, h, "PUT", "/diagrams/checkout", `{"layout": `+checkoutLayout+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	commit = CommitResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &commit))
	assert.Nil(t, commit.Diff)
	assert.Equal(t, "Checkout", commit.Diagram.Name, "name kept when omitted")

	w = do(t, h, "GET", "/diagrams", "")
	assert.JSONEq(t, `{"diagrams": ["checkout"]}`, w.Body.String())

	w = do(t, h, "GET", "/diagrams/checkout", "")
	require.Equal(t, http.StatusOK, w.Code)
	var d domain.Diagram
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Contains(t, string(d.Layout), `"loc":"0 0"`, "layout stored verbatim")

	w = do(t, h, "GET", "/diagrams/checkout/config", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, checkoutConfig, w.Body.String())

	w = do(t, h, "GET", "/diagrams/checkout/config?format=yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "concrete: isPaid")

	w = do(t, h, "GET", "/diagrams/checkout/mermaid", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))
	assert.Contains(t, w.Body.String(), "cart((\"cart\"))")

	w = do(t, h, "DELETE", "/diagrams/checkout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, "GET", "/diagrams/checkout/config", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutDiagramConfig(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	h := newTestHandler(t, WithManager(mgr))

	w := do(t, h, "PUT", "/diagrams/flow/config", `{"states": [{"id": "a", "links": {}}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	_, err := mgr.Load(context.Background(), "flow")
	assert.ErrorIs(t, err, domain.ErrDiagramNotFound, "rejected document is not stored")

	w = do(t, h, "PUT", "/diagrams/flow/config", checkoutConfig)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	d, err := mgr.Load(context.Background(), "flow")
	require.NoError(t, err)
	require.NotNil(t, d.Config)
	assert.Equal(t, []string{"cart"}, d.Config.EntryPoints())
	assert.Contains(t, string(d.Layout), `"category": "Conditional"`)
}

func TestCORS(t *testing.T) {
	h := newTestHandler(t, WithAllowedOrigins("http://localhost:3000"))

	req := httptest.NewRequest("OPTIONS", "/project", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	conv := observability.NewConverter(statemap.Core{}, observability.WithMetrics(metrics))

	h := newTestHandler(t,
		WithConverter(conv),
		WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
	)

	do(t, h, "POST", "/project", checkoutLayout)

	w := do(t, h, "GET", "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "statemap_operations_total")
}

func TestSubscribeEvents(t *testing.T) {
	h := newTestHandler(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?diagram=checkout", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	// The subscription is registered before the ping is written.
	put, err := http.NewRequest("PUT", srv.URL+"/diagrams/checkout", strings.NewReader(`{"layout": `+checkoutLayout+`}`))
	require.NoError(t, err)
	put.Header.Set("Content-Type", "application/json")
	putResp, err := srv.Client().Do(put)
	require.NoError(t, err)
	putResp.Body.Close()
	require.Equal(t, http.StatusOK, putResp.StatusCode)

	var data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
			break
		}
	}

	var msg CommitMessage
	require.NoError(t, json.Unmarshal([]byte(data), &msg))
	assert.Equal(t, "checkout", msg.Diagram)
	require.NotNil(t, msg.Diff)
	assert.Contains(t, msg.Diff.Added, "cart")
}
