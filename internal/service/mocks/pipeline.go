package mocks

import (
	"context"
	"errors"

	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/source"
)

type MockSheetLoader struct {
	LoadFunc func(role, path, sheet string) (*source.Sheet, error)
}

func (m *MockSheetLoader) Load(role, path, sheet string) (*source.Sheet, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(role, path, sheet)
	}
	return nil, errors.New("LoadFunc not implemented")
}

type MockFetcher struct {
	FetchAllFunc func(ctx context.Context, targets []source.Target) error
}

func (m *MockFetcher) FetchAll(ctx context.Context, targets []source.Target) error {
	if m.FetchAllFunc != nil {
		return m.FetchAllFunc(ctx, targets)
	}
	return errors.New("FetchAllFunc not implemented")
}

type MockPublisher struct {
	PublishFunc func(ctx context.Context, runID string, rep *model.Report, assocs []model.Association) error
}

func (m *MockPublisher) Publish(ctx context.Context, runID string, rep *model.Report, assocs []model.Association) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, runID, rep, assocs)
	}
	return errors.New("PublishFunc not implemented")
}
