// Package publish copies a finished run into Postgres for downstream BI tools.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/godilite/workforce-intel/internal/model"
)

var (
	ErrInvalidSchema = errors.New("invalid schema name")
	ErrPublishFailed = errors.New("publish failed")
)

var schemaPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// SanitizeSchema lowercases the name and rejects anything outside [a-z0-9_].
func SanitizeSchema(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", fmt.Errorf("%w: schema is required", ErrInvalidSchema)
	}
	if !schemaPattern.MatchString(value) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSchema, value)
	}
	return value, nil
}

type PostgresPublisher struct {
	pool   *pgxpool.Pool
	schema string
	logger *zap.Logger
}

// NewPostgresPublisher connects to url and prepares the schema.
func NewPostgresPublisher(ctx context.Context, url, schema string, logger *zap.Logger) (*PostgresPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := SanitizeSchema(schema)
	if err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	p := &PostgresPublisher{pool: pool, schema: schema, logger: logger.Named("publish")}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresPublisher) Close() {
	p.pool.Close()
}

// DDL returns the statements that create the publication tables in schema.
func DDL(schema string) []string {
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.runs (
			run_id         TEXT PRIMARY KEY,
			data_as_of     TEXT NOT NULL,
			published_at   TIMESTAMPTZ NOT NULL,
			dashboard_stats JSONB NOT NULL,
			data_quality   JSONB NOT NULL
		)`, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.partner_profiles (
			run_id               TEXT NOT NULL REFERENCES %s.runs(run_id) ON DELETE CASCADE,
			partner              TEXT NOT NULL,
			engineer_count       INTEGER NOT NULL,
			csat_score           DOUBLE PRECISION NOT NULL,
			total_csat_responses INTEGER NOT NULL,
			total_billable_hours DOUBLE PRECISION NOT NULL,
			total_tickets_worked INTEGER NOT NULL,
			profile              JSONB NOT NULL,
			PRIMARY KEY (run_id, partner)
		)`, schema, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.engineer_profiles (
			run_id               TEXT NOT NULL REFERENCES %s.runs(run_id) ON DELETE CASCADE,
			email                TEXT NOT NULL,
			name                 TEXT NOT NULL,
			tdl                  TEXT NOT NULL,
			partner_count        INTEGER NOT NULL,
			avg_utilization_pct  DOUBLE PRECISION NOT NULL,
			close_rate           DOUBLE PRECISION NOT NULL,
			profile              JSONB NOT NULL,
			PRIMARY KEY (run_id, email)
		)`, schema, schema),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.associations (
			run_id         TEXT NOT NULL REFERENCES %s.runs(run_id) ON DELETE CASCADE,
			engineer_email TEXT NOT NULL,
			partner        TEXT NOT NULL,
			heuristic      TEXT NOT NULL,
			confidence     DOUBLE PRECISION NOT NULL,
			roster         BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, engineer_email, partner)
		)`, schema, schema),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_associations_partner_idx ON %s.associations (run_id, partner)`, schema, schema),
	}
}

func (p *PostgresPublisher) ensureSchema(ctx context.Context) error {
	for _, stmt := range DDL(p.schema) {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: ensure schema %s: %v", ErrPublishFailed, p.schema, err)
		}
	}
	return nil
}

// Publish writes the run and all of its rows in one transaction.
func (p *PostgresPublisher) Publish(ctx context.Context, runID string, rep *model.Report, assocs []model.Association) error {
	stats, err := json.Marshal(rep.Stats)
	if err != nil {
		return fmt.Errorf("%w: encode stats: %v", ErrPublishFailed, err)
	}
	quality, err := json.Marshal(rep.Quality)
	if err != nil {
		return fmt.Errorf("%w: encode quality: %v", ErrPublishFailed, err)
	}

	partnerRows, err := partnerRows(runID, rep)
	if err != nil {
		return err
	}
	engineerRows, err := engineerRows(runID, rep)
	if err != nil {
		return err
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrPublishFailed, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s.runs (run_id, data_as_of, published_at, dashboard_stats, data_quality)
		VALUES ($1, $2, $3, $4, $5)
	`, p.schema), runID, rep.Stats.DataAsOf, time.Now().UTC(), stats, quality)
	if err != nil {
		return fmt.Errorf("%w: insert run: %v", ErrPublishFailed, err)
	}

	copies := []struct {
		table   string
		columns []string
		rows    [][]any
	}{
		{"partner_profiles", []string{"run_id", "partner", "engineer_count", "csat_score", "total_csat_responses", "total_billable_hours", "total_tickets_worked", "profile"}, partnerRows},
		{"engineer_profiles", []string{"run_id", "email", "name", "tdl", "partner_count", "avg_utilization_pct", "close_rate", "profile"}, engineerRows},
		{"associations", []string{"run_id", "engineer_email", "partner", "heuristic", "confidence", "roster"}, associationRows(runID, assocs)},
	}
	for _, c := range copies {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{p.schema, c.table}, c.columns, pgx.CopyFromRows(c.rows))
		if err != nil {
			return fmt.Errorf("%w: copy %s: %v", ErrPublishFailed, c.table, err)
		}
		p.logger.Debug("copied rows", zap.String("table", c.table), zap.Int64("rows", n))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPublishFailed, err)
	}

	p.logger.Info("run published",
		zap.String("run_id", runID),
		zap.String("schema", p.schema),
		zap.Int("partners", len(partnerRows)),
		zap.Int("engineers", len(engineerRows)),
		zap.Int("associations", len(assocs)))
	return nil
}

func partnerRows(runID string, rep *model.Report) ([][]any, error) {
	names := make([]string, 0, len(rep.Partners))
	for name := range rep.Partners {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]any, 0, len(names))
	for _, name := range names {
		pp := rep.Partners[name]
		doc, err := json.Marshal(pp)
		if err != nil {
			return nil, fmt.Errorf("%w: encode partner %s: %v", ErrPublishFailed, name, err)
		}
		rows = append(rows, []any{runID, name, pp.EngineerCount, pp.CsatScore, pp.TotalCsatResponses, pp.TotalBillableHours, pp.TotalTicketsWorked, doc})
	}
	return rows, nil
}

func engineerRows(runID string, rep *model.Report) ([][]any, error) {
	emails := make([]string, 0, len(rep.Engineers))
	for email := range rep.Engineers {
		emails = append(emails, email)
	}
	sort.Strings(emails)

	rows := make([][]any, 0, len(emails))
	for _, email := range emails {
		ep := rep.Engineers[email]
		doc, err := json.Marshal(ep)
		if err != nil {
			return nil, fmt.Errorf("%w: encode engineer %s: %v", ErrPublishFailed, email, err)
		}
		rows = append(rows, []any{runID, email, ep.Name, ep.TDL, ep.PartnerCount, ep.AvgUtilizationPct, ep.CloseRate, doc})
	}
	return rows, nil
}

func associationRows(runID string, assocs []model.Association) [][]any {
	rows := make([][]any, 0, len(assocs))
	for _, a := range assocs {
		rows = append(rows, []any{runID, a.EngineerEmail, a.Partner, string(a.Heuristic), a.Confidence, a.Roster})
	}
	return rows
}
