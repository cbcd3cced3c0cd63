package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	pb "github.com/godilite/workforce-intel/api/v1"
	"github.com/godilite/workforce-intel/internal/service"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
	rebuildTimeout       = 5 * time.Minute
)

type CacheKeyType string

const (
	cacheKeyRoot         CacheKeyType = "grpc:"
	cacheKeyDashboard    CacheKeyType = "grpc:dashboard_stats"
	cacheKeyPartner      CacheKeyType = "grpc:partner"
	cacheKeyEngineer     CacheKeyType = "grpc:engineer"
	cacheKeyTDLs         CacheKeyType = "grpc:tdls"
	cacheKeyTDLStats     CacheKeyType = "grpc:tdl_stats"
	cacheKeyTopEngineers CacheKeyType = "grpc:top_engineers"
	cacheKeyTopPartners  CacheKeyType = "grpc:top_partners"
)

type DashboardHandlers struct {
	pb.UnimplementedDashboardServer
	dashboard DashboardService
	cache     Cacher
	logger    *zap.Logger
	sfGroup   singleflight.Group
	cacheTTL  time.Duration
}

// NewDashboardHandlers initializes the gRPC handlers. cache may be nil, in
// which case every call goes to the service.
func NewDashboardHandlers(dashboard DashboardService, cache Cacher, logger *zap.Logger, ttl time.Duration) *DashboardHandlers {
	if dashboard == nil {
		panic("nil DashboardService provided to NewDashboardHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	return &DashboardHandlers{
		dashboard: dashboard,
		cache:     cache,
		logger:    logger.Named("grpc-handler"),
		cacheTTL:  ttl,
	}
}

func cacheKey(prefix CacheKeyType, runID string, parts ...any) string {
	var b strings.Builder
	b.WriteString(string(prefix))
	b.WriteString(":")
	b.WriteString(runID)
	for _, p := range parts {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}

func periodArg(req *structpb.Struct) (int, error) {
	period, err := pb.IntField(req, "period")
	if err != nil {
		return 0, status.Error(codes.InvalidArgument, err.Error())
	}
	if period < 0 {
		return 0, status.Error(codes.InvalidArgument, "period must not be negative")
	}
	return period, nil
}

func requiredArg(req *structpb.Struct, name string) (string, error) {
	v := strings.TrimSpace(pb.StringField(req, name))
	if v == "" {
		return "", status.Errorf(codes.InvalidArgument, "%s is required", name)
	}
	return v, nil
}

func limitArg(req *structpb.Struct) (int, error) {
	limit, err := pb.IntField(req, "limit")
	if err != nil {
		return 0, status.Error(codes.InvalidArgument, err.Error())
	}
	if limit < 0 {
		return 0, status.Error(codes.InvalidArgument, "limit must not be negative")
	}
	return limit, nil
}

func (s *DashboardHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	switch {
	case errors.Is(err, service.ErrNoSnapshot):
		s.logger.Info("no snapshot yet", zap.String("op", op))
		return status.Error(codes.NotFound, "no dataset has been built yet")
	case errors.Is(err, service.ErrNotFound):
		s.logger.Info("entity not found", zap.String("op", op), zap.Error(err))
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrInvalidPeriod):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrRebuildFailed):
		s.logger.Error("rebuild failed", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

// serve resolves the current run, looks the result up in the cache and
// converts it to a Struct.
func serve[T any](ctx context.Context, s *DashboardHandlers, op string, prefix CacheKeyType, parts []any, fetch FetchFunc[T]) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	runID, err := s.dashboard.CurrentRunID(ctx)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	v, err := FindAndCache(ctx, s.cache, &s.sfGroup, cacheKey(prefix, runID, parts...), s.cacheTTL, s.logger, fetch)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	out, err := pb.ToStruct(v)
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}
	return out, nil
}

func (s *DashboardHandlers) GetDashboardStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	period, err := periodArg(req)
	if err != nil {
		return nil, err
	}
	return serve(ctx, s, "GetDashboardStats", cacheKeyDashboard, []any{period}, func(ctx context.Context) (*service.DashboardView, error) {
		return s.dashboard.DashboardStats(ctx, period)
	})
}

func (s *DashboardHandlers) GetPartner(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := requiredArg(req, "name")
	if err != nil {
		return nil, err
	}
	period, err := periodArg(req)
	if err != nil {
		return nil, err
	}
	return serve(ctx, s, "GetPartner", cacheKeyPartner, []any{period, name}, func(ctx context.Context) (*service.PartnerView, error) {
		return s.dashboard.Partner(ctx, name, period)
	})
}

func (s *DashboardHandlers) GetEngineer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, err := requiredArg(req, "email")
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	period, err := periodArg(req)
	if err != nil {
		return nil, err
	}
	return serve(ctx, s, "GetEngineer", cacheKeyEngineer, []any{period, email}, func(ctx context.Context) (*service.EngineerView, error) {
		return s.dashboard.Engineer(ctx, email, period)
	})
}

type tdlList struct {
	TDLs []string `json:"tdls"`
}

func (s *DashboardHandlers) ListTDLs(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return serve(ctx, s, "ListTDLs", cacheKeyTDLs, nil, func(ctx context.Context) (tdlList, error) {
		tdls, err := s.dashboard.ListTDLs(ctx)
		return tdlList{TDLs: tdls}, err
	})
}

func (s *DashboardHandlers) GetTDLStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tdl, err := requiredArg(req, "tdl")
	if err != nil {
		return nil, err
	}
	period, err := periodArg(req)
	if err != nil {
		return nil, err
	}
	return serve(ctx, s, "GetTDLStats", cacheKeyTDLStats, []any{period, tdl}, func(ctx context.Context) (*service.TDLStats, error) {
		return s.dashboard.TDLStats(ctx, tdl, period)
	})
}

type engineerList struct {
	Engineers []service.TopEngineer `json:"engineers"`
}

func (s *DashboardHandlers) GetTopEngineers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, err := limitArg(req)
	if err != nil {
		return nil, err
	}
	period, err := periodArg(req)
	if err != nil {
		return nil, err
	}
	return serve(ctx, s, "GetTopEngineers", cacheKeyTopEngineers, []any{period, limit}, func(ctx context.Context) (engineerList, error) {
		top, err := s.dashboard.TopEngineers(ctx, limit, period)
		return engineerList{Engineers: top}, err
	})
}

type partnerList struct {
	Partners []service.PartnerSummary `json:"partners"`
}

func (s *DashboardHandlers) GetTopPartners(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, err := limitArg(req)
	if err != nil {
		return nil, err
	}
	return serve(ctx, s, "GetTopPartners", cacheKeyTopPartners, []any{limit}, func(ctx context.Context) (partnerList, error) {
		top, err := s.dashboard.TopPartners(ctx, limit)
		return partnerList{Partners: top}, err
	})
}

// Rebuild is never cached. Entries of older runs are dropped once the new run
// is live.
func (s *DashboardHandlers) Rebuild(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, rebuildTimeout)
	defer cancel()

	res, err := s.dashboard.Rebuild(ctx)
	if err != nil {
		return nil, s.handleError(ctx, "Rebuild", err)
	}

	if s.cache != nil {
		removed, err := s.cache.Invalidate(ctx, string(cacheKeyRoot))
		if err != nil {
			s.logger.Warn("cache invalidation failed", zap.Error(err))
		} else {
			s.logger.Info("cache invalidated", zap.Int64("removed", removed))
		}
	}

	out, err := pb.ToStruct(res)
	if err != nil {
		return nil, s.handleError(ctx, "Rebuild", err)
	}
	return out, nil
}
