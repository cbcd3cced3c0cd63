package mocks

import (
	"context"
	"errors"

	"github.com/godilite/workforce-intel/internal/service"
)

// MockDashboardService is a function-field implementation of the query
// surface the gRPC and HTTP handlers serve from. CurrentRunID defaults to
// "run-1".
type MockDashboardService struct {
	CurrentRunIDFunc   func(ctx context.Context) (string, error)
	DashboardStatsFunc func(ctx context.Context, period int) (*service.DashboardView, error)
	ListPartnersFunc   func(ctx context.Context) ([]service.PartnerSummary, error)
	PartnerFunc        func(ctx context.Context, name string, period int) (*service.PartnerView, error)
	EngineerFunc       func(ctx context.Context, email string, period int) (*service.EngineerView, error)
	ListTDLsFunc       func(ctx context.Context) ([]string, error)
	TDLStatsFunc       func(ctx context.Context, tdl string, period int) (*service.TDLStats, error)
	TopEngineersFunc   func(ctx context.Context, limit, period int) ([]service.TopEngineer, error)
	TopPartnersFunc    func(ctx context.Context, limit int) ([]service.PartnerSummary, error)
	RebuildFunc        func(ctx context.Context) (*service.RebuildResult, error)
}

func (m *MockDashboardService) CurrentRunID(ctx context.Context) (string, error) {
	if m.CurrentRunIDFunc != nil {
		return m.CurrentRunIDFunc(ctx)
	}
	return "run-1", nil
}

func (m *MockDashboardService) DashboardStats(ctx context.Context, period int) (*service.DashboardView, error) {
	if m.DashboardStatsFunc != nil {
		return m.DashboardStatsFunc(ctx, period)
	}
	return nil, errors.New("DashboardStatsFunc not implemented")
}

func (m *MockDashboardService) ListPartners(ctx context.Context) ([]service.PartnerSummary, error) {
	if m.ListPartnersFunc != nil {
		return m.ListPartnersFunc(ctx)
	}
	return nil, errors.New("ListPartnersFunc not implemented")
}

func (m *MockDashboardService) Partner(ctx context.Context, name string, period int) (*service.PartnerView, error) {
	if m.PartnerFunc != nil {
		return m.PartnerFunc(ctx, name, period)
	}
	return nil, errors.New("PartnerFunc not implemented")
}

func (m *MockDashboardService) Engineer(ctx context.Context, email string, period int) (*service.EngineerView, error) {
	if m.EngineerFunc != nil {
		return m.EngineerFunc(ctx, email, period)
	}
	return nil, errors.New("EngineerFunc not implemented")
}

func (m *MockDashboardService) ListTDLs(ctx context.Context) ([]string, error) {
	if m.ListTDLsFunc != nil {
		return m.ListTDLsFunc(ctx)
	}
	return nil, errors.New("ListTDLsFunc not implemented")
}

func (m *MockDashboardService) TDLStats(ctx context.Context, tdl string, period int) (*service.TDLStats, error) {
	if m.TDLStatsFunc != nil {
		return m.TDLStatsFunc(ctx, tdl, period)
	}
	return nil, errors.New("TDLStatsFunc not implemented")
}

func (m *MockDashboardService) TopEngineers(ctx context.Context, limit, period int) ([]service.TopEngineer, error) {
	if m.TopEngineersFunc != nil {
		return m.TopEngineersFunc(ctx, limit, period)
	}
	return nil, errors.New("TopEngineersFunc not implemented")
}

func (m *MockDashboardService) TopPartners(ctx context.Context, limit int) ([]service.PartnerSummary, error) {
	if m.TopPartnersFunc != nil {
		return m.TopPartnersFunc(ctx, limit)
	}
	return nil, errors.New("TopPartnersFunc not implemented")
}

func (m *MockDashboardService) Rebuild(ctx context.Context) (*service.RebuildResult, error) {
	if m.RebuildFunc != nil {
		return m.RebuildFunc(ctx)
	}
	return nil, errors.New("RebuildFunc not implemented")
}
