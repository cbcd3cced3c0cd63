package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/repository/models"
)

// ErrNotFound is returned when no run matches.
var ErrNotFound = errors.New("snapshot not found")

// createdAtLayout has a fixed width so created_at sorts lexically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// Schema creates the snapshot tables. It is safe to apply repeatedly.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id                TEXT PRIMARY KEY,
		data_as_of        TEXT NOT NULL,
		created_at        TEXT NOT NULL,
		partner_mapping   TEXT NOT NULL,
		engineer_profiles TEXT NOT NULL,
		dashboard_stats   TEXT NOT NULL,
		data_quality      TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS associations (
		run_id         TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		engineer_email TEXT NOT NULL,
		partner        TEXT NOT NULL,
		heuristic      TEXT NOT NULL,
		confidence     REAL NOT NULL,
		roster         INTEGER NOT NULL,
		PRIMARY KEY (run_id, engineer_email, partner)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_associations_partner ON associations(run_id, partner)`,
}

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SaveSnapshot stores the report and its associations in one transaction and
// returns the new run id.
func (s *SnapshotRepository) SaveSnapshot(ctx context.Context, rep *model.Report, assocs []model.Association, createdAt time.Time) (string, error) {
	row, err := encodeRun(rep)
	if err != nil {
		return "", err
	}
	row.ID = uuid.NewString()
	row.CreatedAt = createdAt.UTC().Format(createdAtLayout)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin SaveSnapshot: %w", err)
	}
	defer tx.Rollback()

	const insertRun = `
		INSERT INTO runs (id, data_as_of, created_at, partner_mapping, engineer_profiles, dashboard_stats, data_quality)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insertRun,
		row.ID, row.DataAsOf, row.CreatedAt,
		row.PartnerMapping, row.EngineerProfiles, row.DashboardStats, row.DataQuality,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	const insertAssoc = `
		INSERT INTO associations (run_id, engineer_email, partner, heuristic, confidence, roster)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, insertAssoc)
	if err != nil {
		return "", fmt.Errorf("prepare association insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range assocs {
		if _, err := stmt.ExecContext(ctx, row.ID, a.EngineerEmail, a.Partner, string(a.Heuristic), a.Confidence, a.Roster); err != nil {
			return "", fmt.Errorf("insert association %s/%s: %w", a.EngineerEmail, a.Partner, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit SaveSnapshot: %w", err)
	}
	return row.ID, nil
}

// LatestRunID returns the id of the most recent run.
func (s *SnapshotRepository) LatestRunID(ctx context.Context) (string, error) {
	const query = `SELECT id FROM runs ORDER BY created_at DESC, rowid DESC LIMIT 1`

	var id string
	if err := s.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("query LatestRunID: %w", err)
	}
	return id, nil
}

// LatestSnapshot loads and decodes the most recent run.
func (s *SnapshotRepository) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	const query = `
		SELECT id, data_as_of, created_at, partner_mapping, engineer_profiles, dashboard_stats, data_quality
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	`

	var r models.RunRow
	err := s.db.QueryRowContext(ctx, query).Scan(
		&r.ID, &r.DataAsOf, &r.CreatedAt,
		&r.PartnerMapping, &r.EngineerProfiles, &r.DashboardStats, &r.DataQuality,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query LatestSnapshot: %w", err)
	}
	return decodeRun(r)
}

// AssociationsForPartner returns the partner's associations in a run, ordered
// by engineer email.
func (s *SnapshotRepository) AssociationsForPartner(ctx context.Context, runID, partner string) ([]model.Association, error) {
	const query = `
		SELECT run_id, engineer_email, partner, heuristic, confidence, roster
		FROM associations
		WHERE run_id = ? AND partner = ?
		ORDER BY engineer_email
	`
	return s.queryAssociations(ctx, "AssociationsForPartner", query, runID, partner)
}

// AssociationsForEngineer returns the engineer's associations in a run, ordered
// by partner.
func (s *SnapshotRepository) AssociationsForEngineer(ctx context.Context, runID, email string) ([]model.Association, error) {
	const query = `
		SELECT run_id, engineer_email, partner, heuristic, confidence, roster
		FROM associations
		WHERE run_id = ? AND engineer_email = ?
		ORDER BY partner
	`
	return s.queryAssociations(ctx, "AssociationsForEngineer", query, runID, email)
}

func (s *SnapshotRepository) queryAssociations(ctx context.Context, op, query string, args ...any) ([]model.Association, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", op, err)
	}
	defer rows.Close()

	var results []model.Association
	for rows.Next() {
		var r models.AssociationRow
		if err := rows.Scan(&r.RunID, &r.EngineerEmail, &r.Partner, &r.Heuristic, &r.Confidence, &r.Roster); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", op, err)
		}
		results = append(results, model.Association{
			EngineerEmail: r.EngineerEmail,
			Partner:       r.Partner,
			Heuristic:     model.Heuristic(r.Heuristic),
			Confidence:    r.Confidence,
			Roster:        r.Roster,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", op, err)
	}
	return results, nil
}

type document struct {
	name string
	v    any
	dst  *string
}

func encodeRun(rep *model.Report) (models.RunRow, error) {
	row := models.RunRow{DataAsOf: rep.Stats.DataAsOf}
	docs := []document{
		{"partner_mapping", rep.Partners, &row.PartnerMapping},
		{"engineer_profiles", rep.Engineers, &row.EngineerProfiles},
		{"dashboard_stats", rep.Stats, &row.DashboardStats},
		{"data_quality", rep.Quality, &row.DataQuality},
	}
	for _, d := range docs {
		b, err := json.Marshal(d.v)
		if err != nil {
			return row, fmt.Errorf("encode %s: %w", d.name, err)
		}
		*d.dst = string(b)
	}
	return row, nil
}

func decodeRun(r models.RunRow) (*models.Snapshot, error) {
	snap := &models.Snapshot{RunID: r.ID, DataAsOf: r.DataAsOf}

	createdAt, err := time.Parse(createdAtLayout, r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of run %s: %w", r.ID, err)
	}
	snap.CreatedAt = createdAt

	if err := json.Unmarshal([]byte(r.PartnerMapping), &snap.Report.Partners); err != nil {
		return nil, fmt.Errorf("decode partner_mapping of run %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.EngineerProfiles), &snap.Report.Engineers); err != nil {
		return nil, fmt.Errorf("decode engineer_profiles of run %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.DashboardStats), &snap.Report.Stats); err != nil {
		return nil, fmt.Errorf("decode dashboard_stats of run %s: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(r.DataQuality), &snap.Report.Quality); err != nil {
		return nil, fmt.Errorf("decode data_quality of run %s: %w", r.ID, err)
	}
	return snap, nil
}
