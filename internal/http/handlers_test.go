package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/godilite/workforce-intel/internal/grpc/mocks"
	"github.com/godilite/workforce-intel/internal/http/middleware"
	"github.com/godilite/workforce-intel/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, r http.Handler, method, target string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthz(t *testing.T) {
	t.Run("with data", func(t *testing.T) {
		r := Router(RouterConfig{}, &mocks.MockDashboardService{}, zaptest.NewLogger(t))
		w := do(t, r, http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"run_id":"run-1"`)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	})

	t.Run("before the first build", func(t *testing.T) {
		svc := &mocks.MockDashboardService{
			CurrentRunIDFunc: func(context.Context) (string, error) { return "", service.ErrNoSnapshot },
		}
		w := do(t, Router(RouterConfig{}, svc, nil), http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("database down", func(t *testing.T) {
		svc := &mocks.MockDashboardService{
			CurrentRunIDFunc: func(context.Context) (string, error) {
				return "", fmt.Errorf("%w: %v", service.ErrStorageFailure, "locked")
			},
		}
		w := do(t, Router(RouterConfig{}, svc, nil), http.MethodGet, "/healthz", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestQueryRoutes(t *testing.T) {
	var gotName, gotEmail string
	var gotLimit, gotPeriod int
	svc := &mocks.MockDashboardService{
		DashboardStatsFunc: func(_ context.Context, period int) (*service.DashboardView, error) {
			gotPeriod = period
			return &service.DashboardView{RunID: "run-1", Period: period}, nil
		},
		PartnerFunc: func(_ context.Context, name string, period int) (*service.PartnerView, error) {
			gotName = name
			return &service.PartnerView{Name: name, Period: period}, nil
		},
		EngineerFunc: func(_ context.Context, email string, _ int) (*service.EngineerView, error) {
			gotEmail = email
			return &service.EngineerView{}, nil
		},
		ListTDLsFunc: func(context.Context) ([]string, error) { return []string{"Tina"}, nil },
		TopEngineersFunc: func(_ context.Context, limit, period int) ([]service.TopEngineer, error) {
			gotLimit, gotPeriod = limit, period
			return []service.TopEngineer{}, nil
		},
		ListPartnersFunc: func(context.Context) ([]service.PartnerSummary, error) {
			return []service.PartnerSummary{{Name: "Acme"}}, nil
		},
	}
	r := Router(RouterConfig{}, svc, zaptest.NewLogger(t))

	w := do(t, r, http.MethodGet, "/api/v1/dashboard?period=30", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 30, gotPeriod)

	w = do(t, r, http.MethodGet, "/api/v1/partners/Acme%20Corp?period=7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Acme Corp", gotName)

	w = do(t, r, http.MethodGet, "/api/v1/engineers/Ana@X.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ana@x.com", gotEmail)

	w = do(t, r, http.MethodGet, "/api/v1/tdls", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"tdls":["Tina"]}`, w.Body.String())

	w = do(t, r, http.MethodGet, "/api/v1/partners", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Acme"`)

	w = do(t, r, http.MethodGet, "/api/v1/top/engineers?limit=5&period=15", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotLimit)
	assert.Equal(t, 15, gotPeriod)
	assert.JSONEq(t, `{"engineers":[]}`, w.Body.String())
}

func TestQueryValidation(t *testing.T) {
	r := Router(RouterConfig{}, &mocks.MockDashboardService{}, nil)

	for _, target := range []string{
		"/api/v1/dashboard?period=abc",
		"/api/v1/dashboard?period=-1",
		"/api/v1/top/partners?limit=-3",
		"/api/v1/top/engineers?limit=100000",
	} {
		w := do(t, r, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, "BAD_REQUEST", errorCode(t, w), target)
	}
}

func TestServiceErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrNoSnapshot, http.StatusNotFound, "NO_DATA"},
		{fmt.Errorf("%w: tdl %q", service.ErrNotFound, "Zed"), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: 45", service.ErrInvalidPeriod), http.StatusBadRequest, "INVALID_PERIOD"},
		{fmt.Errorf("%w: %v", service.ErrStorageFailure, "disk"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			svc := &mocks.MockDashboardService{
				TDLStatsFunc: func(context.Context, string, int) (*service.TDLStats, error) { return nil, tc.err },
			}
			w := do(t, Router(RouterConfig{}, svc, nil), http.MethodGet, "/api/v1/tdls/Zed?period=45", nil)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, errorCode(t, w))
		})
	}
}

func TestRebuildRequiresAdminKey(t *testing.T) {
	var rebuilt int
	svc := &mocks.MockDashboardService{
		RebuildFunc: func(context.Context) (*service.RebuildResult, error) {
			rebuilt++
			return &service.RebuildResult{RunID: "run-2", DataAsOf: "2025-07-01"}, nil
		},
	}

	t.Run("disabled without a configured key", func(t *testing.T) {
		r := Router(RouterConfig{}, svc, nil)
		w := do(t, r, http.MethodPost, "/api/v1/admin/rebuild", map[string]string{middleware.AdminKeyHeader: ""})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	r := Router(RouterConfig{AdminKey: "s3cret"}, svc, nil)

	t.Run("wrong key", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/admin/rebuild", map[string]string{middleware.AdminKeyHeader: "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("right key", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/api/v1/admin/rebuild", map[string]string{middleware.AdminKeyHeader: "s3cret"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"run_id":"run-2","data_as_of":"2025-07-01"}`, w.Body.String())
	})
	assert.Equal(t, 1, rebuilt)

	t.Run("pipeline failure", func(t *testing.T) {
		failing := &mocks.MockDashboardService{
			RebuildFunc: func(context.Context) (*service.RebuildResult, error) {
				return nil, fmt.Errorf("%w: %w", service.ErrRebuildFailed, errors.New("sheet missing"))
			},
		}
		w := do(t, Router(RouterConfig{AdminKey: "k"}, failing, nil), http.MethodPost, "/api/v1/admin/rebuild", map[string]string{middleware.AdminKeyHeader: "k"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestCORS(t *testing.T) {
	r := Router(RouterConfig{CORSOrigins: []string{"https://dash.example.com"}}, &mocks.MockDashboardService{}, nil)
	w := do(t, r, http.MethodGet, "/healthz", map[string]string{"Origin": "https://dash.example.com"})
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
