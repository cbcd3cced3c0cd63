package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/repository"
	"github.com/godilite/workforce-intel/pkg/database"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(database.WithMigrations(repository.Schema...))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testReport(asOf string) *model.Report {
	return &model.Report{
		Partners: map[string]model.PartnerProfile{
			"Acme": {EngineerCount: 1, TDLs: []string{"Tina"}, CsatScore: 50},
		},
		Engineers: map[string]model.EngineerProfile{
			"a@x.com": {Name: "Alice", Email: "a@x.com", TDL: "Tina", Partners: []string{"Acme"}, PartnerCount: 1},
		},
		Stats:   model.DashboardStats{TotalPartners: 1, TotalEngineers: 1, DataAsOf: asOf, ReportingPeriods: []int{7, 30}},
		Quality: model.DataQuality{UnmatchedPartners: []model.UnmatchedPartner{{Company: "Initech"}}},
	}
}

func TestSnapshotRepository_Integration(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewSnapshotRepository(setupTestDB(t))

	_, err := repo.LatestSnapshot(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.LatestRunID(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	assocs := []model.Association{
		{EngineerEmail: "a@x.com", Partner: "Acme", Heuristic: model.HeuristicFullNameMention, Confidence: 1, Roster: true},
		{EngineerEmail: "b@x.com", Partner: "Acme", Heuristic: model.HeuristicFirstName, Confidence: 0.5},
		{EngineerEmail: "a@x.com", Partner: "Globex", Confidence: 1, Roster: true},
	}

	firstID, err := repo.SaveSnapshot(ctx, testReport("2025-02-28"), assocs, base)
	require.NoError(t, err)
	secondID, err := repo.SaveSnapshot(ctx, testReport("2025-03-31"), assocs[:1], base.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	t.Run("latest run wins", func(t *testing.T) {
		id, err := repo.LatestRunID(ctx)
		require.NoError(t, err)
		assert.Equal(t, secondID, id)

		snap, err := repo.LatestSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, secondID, snap.RunID)
		assert.Equal(t, "2025-03-31", snap.DataAsOf)
		assert.True(t, snap.CreatedAt.Equal(base.Add(500*time.Millisecond)))
		assert.Equal(t, []string{"Tina"}, snap.Report.Partners["Acme"].TDLs)
		assert.Equal(t, "Alice", snap.Report.Engineers["a@x.com"].Name)
		assert.Equal(t, []int{7, 30}, snap.Report.Stats.ReportingPeriods)
		assert.Equal(t, "Initech", snap.Report.Quality.UnmatchedPartners[0].Company)
	})

	t.Run("associations by partner", func(t *testing.T) {
		got, err := repo.AssociationsForPartner(ctx, firstID, "Acme")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "a@x.com", got[0].EngineerEmail)
		assert.True(t, got[0].Roster)
		assert.Equal(t, model.HeuristicFirstName, got[1].Heuristic)
		assert.Equal(t, 0.5, got[1].Confidence)
	})

	t.Run("associations by engineer", func(t *testing.T) {
		got, err := repo.AssociationsForEngineer(ctx, firstID, "a@x.com")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Acme", got[0].Partner)
		assert.Equal(t, "Globex", got[1].Partner)
		assert.Empty(t, got[1].Heuristic)
	})

	t.Run("unknown run", func(t *testing.T) {
		got, err := repo.AssociationsForPartner(ctx, "missing", "Acme")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSaveSnapshotRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectPrepare("INSERT INTO associations").
		ExpectExec().WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	repo := repository.NewSnapshotRepository(db)
	_, err = repo.SaveSnapshot(context.Background(), testReport("2025-01-01"),
		[]model.Association{{EngineerEmail: "a@x.com", Partner: "Acme"}}, time.Now())

	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestSnapshotRejectsCorruptDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "data_as_of", "created_at", "partner_mapping", "engineer_profiles", "dashboard_stats", "data_quality"}).
		AddRow("r1", "2025-01-01", "2025-01-02T00:00:00.000000000Z", "{", "{}", "{}", "{}")
	mock.ExpectQuery("SELECT id, data_as_of").WillReturnRows(rows)

	_, err = repository.NewSnapshotRepository(db).LatestSnapshot(context.Background())
	assert.ErrorContains(t, err, "decode partner_mapping of run r1")
}
