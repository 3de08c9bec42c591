package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/weft"
	weftHttp "github.com/aretw0/weft/pkg/adapters/http"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...weftHttp.Option) (http.Handler, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetrics()
	eng, err := weft.New(weft.WithMiddleware(metrics.Middleware()))
	require.NoError(t, err)

	eng.Registry().MustRegister(domain.Definition{ID: "boom", Category: "test"},
		domain.FunctionFunc(func(ctx context.Context, params map[string]any, ec *domain.ExecutionContext) domain.Result {
			panic("kaboom")
		}))

	opts = append([]weftHttp.Option{weftHttp.WithMetrics(metrics.Handler()), weftHttp.WithVersion("1.2.3")}, opts...)
	return weftHttp.NewHandler(eng, opts...), metrics
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

func TestHealthAndInfo(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.2.3", info["version"])
	assert.Greater(t, info["functions"], float64(10))
}

func TestListFunctions(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodGet, "/functions", "")
	require.Equal(t, http.StatusOK, w.Code)
	var defs []domain.Definition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &defs))

	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	assert.Contains(t, ids, "batch_foreach")
	assert.Contains(t, ids, "set_value")
	assert.IsIncreasing(t, ids)
}

func TestListFunctions_FilterByCategory(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodGet, "/functions?category=test", "")
	require.Equal(t, http.StatusOK, w.Code)
	var defs []domain.Definition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &defs))
	require.Len(t, defs, 1)
	assert.Equal(t, "boom", defs[0].ID)

	w = do(t, h, http.MethodGet, "/functions?category=nothing", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetFunction(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodGet, "/functions/condition", "")
	require.Equal(t, http.StatusOK, w.Code)
	var def domain.Definition
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &def))
	assert.Equal(t, domain.CategoryControl, def.Category)
	assert.Equal(t, []string{domain.ActionSuccess, domain.ActionError}, def.Actions)

	w = do(t, h, http.MethodGet, "/functions/missing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "missing")
}

func TestInvokeFunction(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodPost, "/functions/counter/invoke",
		`{"params":{"key":"n","step":2},"store":{"n":40}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp weftHttp.InvokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Result.Success)
	assert.Equal(t, float64(42), resp.Result.Output)
	assert.Equal(t, float64(42), resp.Store["n"])
}

func TestInvokeFunction_EmptyBody(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodPost, "/functions/counter/invoke", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp weftHttp.InvokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp.Store["counter"])
}

func TestInvokeFunction_FailureIsStillOK(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodPost, "/functions/batch/invoke",
		`{"params":{"items":"nope","processor":"log"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp weftHttp.InvokeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Result.Success)
	assert.Contains(t, resp.Result.Error, "not an array")
	assert.Empty(t, resp.Store)
}

func TestInvokeFunction_PanicBecomesFailedResult(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodPost, "/functions/boom/invoke", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kaboom")
}

func TestInvokeFunction_Errors(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodPost, "/functions/missing/invoke", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodPost, "/functions/counter/invoke", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newServer(t)

	do(t, h, http.MethodPost, "/functions/counter/invoke", "")
	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `weft_function_invocations_total{function="counter",outcome="success"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newServer(t)

	w := do(t, h, http.MethodOptions, "/functions", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
