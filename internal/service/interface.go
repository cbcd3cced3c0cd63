package service

import (
	"context"
	"time"

	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/repository/models"
	"github.com/godilite/workforce-intel/internal/source"
)

// SnapshotRepository defines the storage operations the services need.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, rep *model.Report, assocs []model.Association, createdAt time.Time) (string, error)
	LatestRunID(ctx context.Context) (string, error)
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
	AssociationsForPartner(ctx context.Context, runID, partner string) ([]model.Association, error)
	AssociationsForEngineer(ctx context.Context, runID, email string) ([]model.Association, error)
}

// SheetLoader reads one worksheet into raw rows.
type SheetLoader interface {
	Load(role, path, sheet string) (*source.Sheet, error)
}

// Fetcher refreshes local workbook copies from a remote store.
type Fetcher interface {
	FetchAll(ctx context.Context, targets []source.Target) error
}

// Publisher mirrors a persisted run into an external store.
type Publisher interface {
	Publish(ctx context.Context, runID string, rep *model.Report, assocs []model.Association) error
}

// Runner rebuilds the report from the sources.
type Runner interface {
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
}
