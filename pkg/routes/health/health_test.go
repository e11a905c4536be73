package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }
func (p pinger) Ping(context.Context) error        { return p.err }

func serve(t *testing.T, c *Checker, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	c.RegisterRoutes(e)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthHealthy(t *testing.T) {
	rec, body := serve(t, NewChecker(pinger{}, pinger{}, "v1"), "/api/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "v1", body["version"])
	checks := body["checks"].(map[string]any)
	assert.Contains(t, checks, "database")
	assert.Contains(t, checks, "redis")
}

func TestHealthUnhealthyCache(t *testing.T) {
	rec, body := serve(t, NewChecker(pinger{}, pinger{err: errors.New("down")}, "v1"), "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestHealthWithoutDependencies(t *testing.T) {
	rec, body := serve(t, NewChecker(nil, nil, "v1"), "/api/v1/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["checks"])
}

func TestLiveAndReady(t *testing.T) {
	c := NewChecker(nil, nil, "v1")
	rec, _ := serve(t, c, "/api/v1/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := serve(t, c, "/api/v1/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body["status"])

	c.SetReady(true)
	rec, _ = serve(t, c, "/api/v1/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}
