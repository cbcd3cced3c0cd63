package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/godilite/workforce-intel/api/v1"
	"github.com/godilite/workforce-intel/internal/grpc/mocks"
	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/service"
)

func request(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

// memoryCache is a map-backed Cacher that stores values the way redis does,
// as JSON documents.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (m *memoryCache) Get(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return redis.Nil
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	m.sets++
	return nil
}

func (m *memoryCache) Invalidate(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *memoryCache) Close() error { return nil }

func TestNewDashboardHandlers(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		svc := &mocks.MockDashboardService{}
		cache := &mocks.MockCacher{}

		h := NewDashboardHandlers(svc, cache, zap.NewNop(), 5*time.Minute)

		assert.Equal(t, svc, h.dashboard)
		assert.Equal(t, cache, h.cache)
		assert.Equal(t, 5*time.Minute, h.cacheTTL)
		assert.NotNil(t, h.logger)
	})

	t.Run("nil service panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewDashboardHandlers(nil, &mocks.MockCacher{}, zap.NewNop(), time.Minute)
		})
	})

	t.Run("non-positive TTL uses default", func(t *testing.T) {
		h := NewDashboardHandlers(&mocks.MockDashboardService{}, nil, nil, -time.Minute)
		assert.Equal(t, defaultCacheDuration, h.cacheTTL)
	})
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "grpc:tdls:r1", cacheKey(cacheKeyTDLs, "r1"))
	assert.Equal(t, "grpc:partner:r1:30:Acme Corp", cacheKey(cacheKeyPartner, "r1", 30, "Acme Corp"))
	assert.NotEqual(t, cacheKey(cacheKeyDashboard, "r1", 7), cacheKey(cacheKeyDashboard, "r2", 7))
}

func TestRequestValidation(t *testing.T) {
	h := NewDashboardHandlers(&mocks.MockDashboardService{}, nil, zaptest.NewLogger(t), time.Minute)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() (*structpb.Struct, error)
	}{
		{"fractional period", func() (*structpb.Struct, error) {
			return h.GetDashboardStats(ctx, request(t, map[string]any{"period": 7.5}))
		}},
		{"negative period", func() (*structpb.Struct, error) {
			return h.GetDashboardStats(ctx, request(t, map[string]any{"period": -7}))
		}},
		{"missing partner name", func() (*structpb.Struct, error) {
			return h.GetPartner(ctx, request(t, map[string]any{"name": "  "}))
		}},
		{"missing email", func() (*structpb.Struct, error) {
			return h.GetEngineer(ctx, request(t, nil))
		}},
		{"missing tdl", func() (*structpb.Struct, error) {
			return h.GetTDLStats(ctx, request(t, map[string]any{"period": 30}))
		}},
		{"string limit", func() (*structpb.Struct, error) {
			return h.GetTopPartners(ctx, request(t, map[string]any{"limit": "ten"}))
		}},
		{"negative limit", func() (*structpb.Struct, error) {
			return h.GetTopEngineers(ctx, request(t, map[string]any{"limit": -1}))
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := tc.call()
			assert.Nil(t, resp)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestHandleError(t *testing.T) {
	h := NewDashboardHandlers(&mocks.MockDashboardService{}, nil, zap.NewNop(), time.Minute)

	t.Run("context canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := h.handleError(ctx, "op", errors.New("whatever"))
		assert.Equal(t, codes.Canceled, status.Code(err))
	})

	t.Run("context deadline exceeded", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()
		err := h.handleError(ctx, "op", errors.New("whatever"))
		assert.Equal(t, codes.DeadlineExceeded, status.Code(err))
	})

	cases := []struct {
		err  error
		code codes.Code
	}{
		{service.ErrNoSnapshot, codes.NotFound},
		{fmt.Errorf("%w: partner %q", service.ErrNotFound, "Acme"), codes.NotFound},
		{fmt.Errorf("%w: 45", service.ErrInvalidPeriod), codes.InvalidArgument},
		{fmt.Errorf("%w: %v", service.ErrStorageFailure, "disk"), codes.Internal},
		{fmt.Errorf("%w: %w", service.ErrRebuildFailed, errors.New("source unavailable")), codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.code, status.Code(h.handleError(context.Background(), "op", tc.err)))
		})
	}

	t.Run("storage details are not leaked", func(t *testing.T) {
		err := h.handleError(context.Background(), "op", fmt.Errorf("%w: %v", service.ErrStorageFailure, "password=hunter2"))
		assert.NotContains(t, err.Error(), "hunter2")
	})
}

func TestGetDashboardStats(t *testing.T) {
	var gotPeriod int
	svc := &mocks.MockDashboardService{
		DashboardStatsFunc: func(_ context.Context, period int) (*service.DashboardView, error) {
			gotPeriod = period
			return &service.DashboardView{
				RunID:  "run-1",
				Period: 30,
				Stats:  model.DashboardStats{TotalEngineers: 4, DataAsOf: "2025-06-30"},
			}, nil
		},
	}
	h := NewDashboardHandlers(svc, nil, zaptest.NewLogger(t), time.Minute)

	resp, err := h.GetDashboardStats(context.Background(), request(t, map[string]any{"period": 30}))
	require.NoError(t, err)
	assert.Equal(t, 30, gotPeriod)

	var view service.DashboardView
	require.NoError(t, pb.FromStruct(resp, &view))
	assert.Equal(t, "run-1", view.RunID)
	assert.Equal(t, 4, view.Stats.TotalEngineers)
	assert.Equal(t, "2025-06-30", view.Stats.DataAsOf)
}

func TestServiceErrorsMapToCodes(t *testing.T) {
	ctx := context.Background()

	t.Run("no snapshot", func(t *testing.T) {
		svc := &mocks.MockDashboardService{
			CurrentRunIDFunc: func(context.Context) (string, error) { return "", service.ErrNoSnapshot },
		}
		h := NewDashboardHandlers(svc, nil, zap.NewNop(), time.Minute)
		_, err := h.ListTDLs(ctx, request(t, nil))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("unknown engineer", func(t *testing.T) {
		svc := &mocks.MockDashboardService{
			EngineerFunc: func(_ context.Context, email string, _ int) (*service.EngineerView, error) {
				assert.Equal(t, "ana@x.com", email, "email is lowercased before lookup")
				return nil, fmt.Errorf("%w: engineer %q", service.ErrNotFound, email)
			},
		}
		h := NewDashboardHandlers(svc, nil, zap.NewNop(), time.Minute)
		_, err := h.GetEngineer(ctx, request(t, map[string]any{"email": "Ana@X.com"}))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("bad period from service", func(t *testing.T) {
		svc := &mocks.MockDashboardService{
			TDLStatsFunc: func(context.Context, string, int) (*service.TDLStats, error) {
				return nil, fmt.Errorf("%w: 45", service.ErrInvalidPeriod)
			},
		}
		h := NewDashboardHandlers(svc, nil, zap.NewNop(), time.Minute)
		_, err := h.GetTDLStats(ctx, request(t, map[string]any{"tdl": "Tina", "period": 45}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestListsAreWrappedInObjects(t *testing.T) {
	svc := &mocks.MockDashboardService{
		ListTDLsFunc: func(context.Context) ([]string, error) { return []string{"Omar", "Tina"}, nil },
		TopEngineersFunc: func(_ context.Context, limit, period int) ([]service.TopEngineer, error) {
			assert.Equal(t, 2, limit)
			assert.Equal(t, 7, period)
			return []service.TopEngineer{{Email: "a@x.com", PeriodUtilization: 91.5}}, nil
		},
		TopPartnersFunc: func(_ context.Context, limit int) ([]service.PartnerSummary, error) {
			return []service.PartnerSummary{{Name: "Acme", EngineerCount: 3}}, nil
		},
	}
	h := NewDashboardHandlers(svc, nil, zap.NewNop(), time.Minute)
	ctx := context.Background()

	tdls, err := h.ListTDLs(ctx, request(t, nil))
	require.NoError(t, err)
	values := tdls.GetFields()["tdls"].GetListValue().GetValues()
	require.Len(t, values, 2)
	assert.Equal(t, "Omar", values[0].GetStringValue())

	top, err := h.GetTopEngineers(ctx, request(t, map[string]any{"limit": 2, "period": 7}))
	require.NoError(t, err)
	var engineers engineerList
	require.NoError(t, pb.FromStruct(top, &engineers))
	assert.Equal(t, 91.5, engineers.Engineers[0].PeriodUtilization)

	partners, err := h.GetTopPartners(ctx, request(t, nil))
	require.NoError(t, err)
	var pl partnerList
	require.NoError(t, pb.FromStruct(partners, &pl))
	assert.Equal(t, "Acme", pl.Partners[0].Name)
}

func TestResultsAreCachedPerRun(t *testing.T) {
	runID := "run-1"
	var calls int
	svc := &mocks.MockDashboardService{
		CurrentRunIDFunc: func(context.Context) (string, error) { return runID, nil },
		PartnerFunc: func(_ context.Context, name string, period int) (*service.PartnerView, error) {
			calls++
			return &service.PartnerView{RunID: runID, Name: name, Period: period}, nil
		},
	}
	cache := newMemoryCache()
	h := NewDashboardHandlers(svc, cache, zaptest.NewLogger(t), time.Minute)
	ctx := context.Background()
	req := request(t, map[string]any{"name": "Acme", "period": 30})

	for range 3 {
		resp, err := h.GetPartner(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "Acme", pb.StringField(resp, "name"))
	}
	assert.Equal(t, 1, calls)
	assert.Contains(t, cache.data, "grpc:partner:run-1:30:Acme")

	runID = "run-2"
	resp, err := h.GetPartner(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "run-2", pb.StringField(resp, "run_id"))
	assert.Equal(t, 2, calls)
}

func TestCacheFailuresFallBackToService(t *testing.T) {
	svc := &mocks.MockDashboardService{
		ListTDLsFunc: func(context.Context) ([]string, error) { return []string{"Tina"}, nil },
	}
	cache := &mocks.MockCacher{
		GetFunc: func(context.Context, string, any) error { return errors.New("connection refused") },
		SetFunc: func(context.Context, string, any, time.Duration) error { return errors.New("connection refused") },
	}
	h := NewDashboardHandlers(svc, cache, zap.NewNop(), time.Minute)

	resp, err := h.ListTDLs(context.Background(), request(t, nil))
	require.NoError(t, err)
	assert.Len(t, resp.GetFields()["tdls"].GetListValue().GetValues(), 1)
}

func TestRebuild(t *testing.T) {
	ctx := context.Background()

	t.Run("success invalidates cached reads", func(t *testing.T) {
		var invalidated string
		svc := &mocks.MockDashboardService{
			RebuildFunc: func(context.Context) (*service.RebuildResult, error) {
				return &service.RebuildResult{RunID: "run-2", DataAsOf: "2025-07-01"}, nil
			},
		}
		cache := &mocks.MockCacher{
			InvalidateFunc: func(_ context.Context, prefix string) (int64, error) {
				invalidated = prefix
				return 3, nil
			},
		}
		h := NewDashboardHandlers(svc, cache, zap.NewNop(), time.Minute)

		resp, err := h.Rebuild(ctx, request(t, nil))
		require.NoError(t, err)
		assert.Equal(t, "run-2", pb.StringField(resp, "run_id"))
		assert.Equal(t, "grpc:", invalidated)
	})

	t.Run("failure is unavailable", func(t *testing.T) {
		svc := &mocks.MockDashboardService{
			RebuildFunc: func(context.Context) (*service.RebuildResult, error) {
				return nil, fmt.Errorf("%w: %w", service.ErrRebuildFailed, errors.New("sheet missing"))
			},
		}
		h := NewDashboardHandlers(svc, &mocks.MockCacher{}, zap.NewNop(), time.Minute)
		_, err := h.Rebuild(ctx, request(t, nil))
		assert.Equal(t, codes.Unavailable, status.Code(err))
	})
}

func TestServiceOverTheWire(t *testing.T) {
	svc := &mocks.MockDashboardService{
		ListTDLsFunc: func(context.Context) ([]string, error) { return []string{"Tina"}, nil },
	}
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	pb.RegisterDashboardServer(srv, NewDashboardHandlers(svc, nil, zap.NewNop(), time.Minute))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client := pb.NewDashboardClient(conn)
	resp, err := client.ListTDLs(context.Background(), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, "Tina", resp.GetFields()["tdls"].GetListValue().GetValues()[0].GetStringValue())

	_, err = client.GetPartner(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
