package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/workforce-intel/internal/aggregate"
	"github.com/godilite/workforce-intel/internal/config"
	"github.com/godilite/workforce-intel/internal/match"
	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/normalize"
	"github.com/godilite/workforce-intel/internal/report"
	"github.com/godilite/workforce-intel/internal/source"
)

const (
	roleUtilization = "utilization"
	roleCsat        = "csat"
)

var (
	ErrFetchNotConfigured   = errors.New("remote fetch is not configured")
	ErrPublishNotConfigured = errors.New("publication is not configured")
)

// RunOptions selects the optional stages of one run.
type RunOptions struct {
	Fetch   bool
	Publish bool
	// OutputDir overrides the configured output directory when set.
	OutputDir string
}

// RunResult is what a successful run produced.
type RunResult struct {
	RunID        string
	OutputDir    string
	Report       *model.Report
	Associations []model.Association
}

// PipelineService runs ingest, normalization, matching, aggregation and output.
type PipelineService struct {
	cfg       *config.Config
	cols      config.Columns
	loader    SheetLoader
	repo      SnapshotRepository
	fetcher   Fetcher
	publisher Publisher
	now       func() time.Time
	logger    *zap.Logger
}

type PipelineOption func(*PipelineService)

// WithRepository persists every run as a snapshot.
func WithRepository(repo SnapshotRepository) PipelineOption {
	return func(p *PipelineService) { p.repo = repo }
}

func WithFetcher(f Fetcher) PipelineOption {
	return func(p *PipelineService) { p.fetcher = f }
}

func WithPublisher(pub Publisher) PipelineOption {
	return func(p *PipelineService) { p.publisher = pub }
}

// WithClock sets the source of snapshot creation times.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *PipelineService) { p.now = now }
}

// NewPipelineService creates a new PipelineService instance.
func NewPipelineService(cfg *config.Config, cols config.Columns, loader SheetLoader, logger *zap.Logger, opts ...PipelineOption) *PipelineService {
	if cfg == nil {
		panic("config must not be nil")
	}
	if loader == nil {
		panic("loader must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &PipelineService{
		cfg:    cfg,
		cols:   cols,
		loader: loader,
		now:    time.Now,
		logger: logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PipelineService) aggregateOptions() aggregate.Options {
	return aggregate.Options{
		WorkdayHours: p.cfg.WorkdayHours,
		RecentDays:   p.cfg.RecentDays,
		Windows:      p.cfg.ReportingWindows,
		CommentCap:   p.cfg.CommentCap,
	}
}

// Run executes one full rebuild. A source that cannot be read aborts the run
// before anything is written.
func (p *PipelineService) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	started := time.Now()

	if opts.Fetch {
		if err := p.fetch(ctx); err != nil {
			return nil, err
		}
	}

	utilSheet, err := p.loader.Load(roleUtilization, p.cfg.UtilizationPath, p.cfg.UtilizationSheet)
	if err != nil {
		return nil, err
	}
	csatSheet, err := p.loader.Load(roleCsat, p.cfg.CsatPath, p.cfg.CsatSheet)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := normalize.New(p.cols, p.logger)
	util := n.UtilizationRows(utilSheet.Rows)
	csat := n.CsatRows(csatSheet.Rows)

	rep, matches := report.Build(util, csat, n.Stats(), match.New(p.logger), p.aggregateOptions())
	assocs := flatten(matches)

	outDir := p.cfg.OutputDir
	if opts.OutputDir != "" {
		outDir = opts.OutputDir
	}
	if err := report.WriteDir(outDir, rep); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}

	res := &RunResult{OutputDir: outDir, Report: rep, Associations: assocs}

	if p.repo != nil {
		dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
		defer cancel()
		res.RunID, err = p.repo.SaveSnapshot(dbCtx, rep, assocs, p.now())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}

	if opts.Publish {
		if p.publisher == nil {
			return nil, ErrPublishNotConfigured
		}
		if res.RunID == "" {
			return nil, fmt.Errorf("%w: publishing needs a persisted run", ErrPublishNotConfigured)
		}
		if err := p.publisher.Publish(ctx, res.RunID, rep, assocs); err != nil {
			return nil, err
		}
	}

	p.logger.Info("pipeline run complete",
		zap.String("run_id", res.RunID),
		zap.String("output_dir", outDir),
		zap.String("data_as_of", rep.Stats.DataAsOf),
		zap.Int("partners", rep.Stats.TotalPartners),
		zap.Int("engineers", rep.Stats.TotalEngineers),
		zap.Int("associations", len(assocs)),
		zap.Duration("elapsed", time.Since(started)))

	return res, nil
}

// Fetch downloads both workbooks without building.
func (p *PipelineService) Fetch(ctx context.Context) error {
	return p.fetch(ctx)
}

func (p *PipelineService) fetch(ctx context.Context) error {
	if p.fetcher == nil {
		return ErrFetchNotConfigured
	}
	targets := []source.Target{
		{Role: roleUtilization, RemotePath: p.cfg.SharePoint.UtilizationFile, Dest: p.cfg.UtilizationPath},
		{Role: roleCsat, RemotePath: p.cfg.SharePoint.CsatFile, Dest: p.cfg.CsatPath},
	}
	return p.fetcher.FetchAll(ctx, targets)
}

// flatten lists every association ordered by engineer, then partner.
func flatten(res *match.Result) []model.Association {
	emails := make([]string, 0, len(res.ByEngineer))
	for email := range res.ByEngineer {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	var out []model.Association
	for _, email := range emails {
		out = append(out, res.ByEngineer[email]...)
	}
	return out
}
