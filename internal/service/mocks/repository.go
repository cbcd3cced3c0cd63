package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/repository/models"
)

// MockSnapshotRepository is a mock implementation of the SnapshotRepository
// interface for testing the service layer.
type MockSnapshotRepository struct {
	SaveSnapshotFunc            func(ctx context.Context, rep *model.Report, assocs []model.Association, createdAt time.Time) (string, error)
	LatestRunIDFunc             func(ctx context.Context) (string, error)
	LatestSnapshotFunc          func(ctx context.Context) (*models.Snapshot, error)
	AssociationsForPartnerFunc  func(ctx context.Context, runID, partner string) ([]model.Association, error)
	AssociationsForEngineerFunc func(ctx context.Context, runID, email string) ([]model.Association, error)
}

func (m *MockSnapshotRepository) SaveSnapshot(ctx context.Context, rep *model.Report, assocs []model.Association, createdAt time.Time) (string, error) {
	if m.SaveSnapshotFunc != nil {
		return m.SaveSnapshotFunc(ctx, rep, assocs, createdAt)
	}
	return "", errors.New("SaveSnapshotFunc not implemented")
}

func (m *MockSnapshotRepository) LatestRunID(ctx context.Context) (string, error) {
	if m.LatestRunIDFunc != nil {
		return m.LatestRunIDFunc(ctx)
	}
	return "", errors.New("LatestRunIDFunc not implemented")
}

func (m *MockSnapshotRepository) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	if m.LatestSnapshotFunc != nil {
		return m.LatestSnapshotFunc(ctx)
	}
	return nil, errors.New("LatestSnapshotFunc not implemented")
}

func (m *MockSnapshotRepository) AssociationsForPartner(ctx context.Context, runID, partner string) ([]model.Association, error) {
	if m.AssociationsForPartnerFunc != nil {
		return m.AssociationsForPartnerFunc(ctx, runID, partner)
	}
	return nil, errors.New("AssociationsForPartnerFunc not implemented")
}

func (m *MockSnapshotRepository) AssociationsForEngineer(ctx context.Context, runID, email string) ([]model.Association, error) {
	if m.AssociationsForEngineerFunc != nil {
		return m.AssociationsForEngineerFunc(ctx, runID, email)
	}
	return nil, errors.New("AssociationsForEngineerFunc not implemented")
}
