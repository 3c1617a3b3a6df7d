package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/addonhook/internal/config"
	"github.com/smallbiznis/addonhook/internal/hooks"
	obsmetrics "github.com/smallbiznis/addonhook/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type dispatchResponse struct {
	Data hooks.Result `json:"data"`
}

func newTestEngine(t *testing.T, token string, handlers map[string]hooks.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := hooks.NewRegistry(zap.NewNop())
	for name, handler := range handlers {
		require.NoError(t, registry.Register(hooks.PointAddonCancelled, 1, name, handler))
	}
	httpMetrics, err := obsmetrics.NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	s := NewServer(Params{
		Cfg:     config.Config{HookToken: token, Environment: "test"},
		Log:     zap.NewNop(),
		Hooks:   registry,
		Metrics: httpMetrics,
	})
	return NewEngine(s)
}

func postHook(engine *gin.Engine, point, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hooks/"+point, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(HeaderHookToken, token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	engine := newTestEngine(t, "", nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestDispatchHook(t *testing.T) {
	var got hooks.Event
	engine := newTestEngine(t, "", map[string]hooks.Handler{
		"capture": func(ctx context.Context, evt hooks.Event) error {
			got = evt
			return nil
		},
	})

	rec := postHook(engine, hooks.PointAddonCancelled, "", `{"actor":{"username":"admin","admin_id":3},"vars":{"id":42}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dispatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, hooks.PointAddonCancelled, resp.Data.Point)
	assert.Equal(t, 1, resp.Data.Handlers)
	assert.Empty(t, resp.Data.Errors)
	assert.NotEmpty(t, resp.Data.EventID)

	assert.Equal(t, "admin", got.Actor.Username)
	assert.EqualValues(t, 3, got.Actor.AdminID)
	id, err := got.IDVar("id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
}

func TestDispatchHookReportsHandlerErrors(t *testing.T) {
	engine := newTestEngine(t, "", map[string]hooks.Handler{
		"failing": func(ctx context.Context, evt hooks.Event) error {
			return errors.New("boom")
		},
	})

	rec := postHook(engine, hooks.PointAddonCancelled, "", `{"vars":{"id":"42"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp dispatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"failing: boom"}, resp.Data.Errors)
}

func TestDispatchHookErrors(t *testing.T) {
	noop := map[string]hooks.Handler{
		"noop": func(ctx context.Context, evt hooks.Event) error { return nil },
	}

	t.Run("unknown point", func(t *testing.T) {
		rec := postHook(newTestEngine(t, "", noop), "InvoicePaid", "", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"type":"not_found"`)
	})

	t.Run("invalid json", func(t *testing.T) {
		rec := postHook(newTestEngine(t, "", noop), hooks.PointAddonCancelled, "", `{"vars":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"invalid_json"`)
	})

	t.Run("oversized body", func(t *testing.T) {
		called := false
		engine := newTestEngine(t, "", map[string]hooks.Handler{
			"capture": func(ctx context.Context, evt hooks.Event) error {
				called = true
				return nil
			},
		})
		body := `{"vars":{"id":42,"pad":"` + strings.Repeat("x", maxHookBodyBytes) + `"}}`
		rec := postHook(engine, hooks.PointAddonCancelled, "", body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), `"type":"request_too_large"`)
		assert.False(t, called)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := postHook(newTestEngine(t, "s3cret", noop), hooks.PointAddonCancelled, "", `{}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong token", func(t *testing.T) {
		rec := postHook(newTestEngine(t, "s3cret", noop), hooks.PointAddonCancelled, "nope", `{}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rec := postHook(newTestEngine(t, "s3cret", noop), hooks.PointAddonCancelled, "s3cret", ``)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
