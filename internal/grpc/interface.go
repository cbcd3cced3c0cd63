package grpc

import (
	"context"
	"time"

	"github.com/godilite/workforce-intel/internal/service"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, prefix string) (int64, error)
}

// DashboardService is the read side the handlers serve from.
type DashboardService interface {
	CurrentRunID(ctx context.Context) (string, error)
	DashboardStats(ctx context.Context, period int) (*service.DashboardView, error)
	Partner(ctx context.Context, name string, period int) (*service.PartnerView, error)
	Engineer(ctx context.Context, email string, period int) (*service.EngineerView, error)
	ListTDLs(ctx context.Context) ([]string, error)
	TDLStats(ctx context.Context, tdl string, period int) (*service.TDLStats, error)
	TopEngineers(ctx context.Context, limit, period int) ([]service.TopEngineer, error)
	TopPartners(ctx context.Context, limit int) ([]service.PartnerSummary, error)
	Rebuild(ctx context.Context) (*service.RebuildResult, error)
}
