package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

func writeWorkbook(t *testing.T, sheets map[string][][]interface{}, order []string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadWorkbook(t *testing.T) {
	path := writeWorkbook(t, map[string][][]interface{}{
		"Utilization": {
			{" Email ", "Name", "Billable Hours", "Email"},
			{"a@x.com", "Alice Smith", 2.5, "dup"},
			{},
			{"b@x.com", "Bob"},
		},
		"CSAT_Review": {
			{"Company", "Rating"},
			{"Acme", "Happy"},
		},
	}, []string{"Utilization", "CSAT_Review"})

	loader := NewLoader(zaptest.NewLogger(t))

	t.Run("first sheet by default", func(t *testing.T) {
		sheet, err := loader.Load("utilization", path, "")
		require.NoError(t, err)

		assert.Equal(t, "Utilization", sheet.Name)
		assert.Equal(t, []string{"Email", "Name", "Billable Hours"}, sheet.Headers)
		require.Len(t, sheet.Rows, 2)
		assert.Equal(t, "a@x.com", sheet.Rows[0]["Email"])
		assert.Equal(t, "2.5", sheet.Rows[0]["Billable Hours"])
		assert.Equal(t, "", sheet.Rows[1]["Billable Hours"])
	})

	t.Run("named sheet", func(t *testing.T) {
		sheet, err := loader.Load("csat", path, "CSAT_Review")
		require.NoError(t, err)
		assert.Equal(t, "CSAT_Review", sheet.Name)
		assert.Equal(t, "Acme", sheet.Rows[0]["Company"])
	})

	t.Run("missing sheet falls back to first", func(t *testing.T) {
		sheet, err := loader.Load("csat", path, "Nope")
		require.NoError(t, err)
		assert.Equal(t, "Utilization", sheet.Name)
	})
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "csat.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffCompany,Rating\n\nAcme,happy\n\"Beta, Inc\",sad\n"), 0o644))

	sheet, err := NewLoader(nil).Load("csat", path, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"Company", "Rating"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Beta, Inc", sheet.Rows[1]["Company"])
}

func TestLoadUnavailable(t *testing.T) {
	loader := NewLoader(nil)

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load("utilization", filepath.Join(t.TempDir(), "missing.xlsx"), "")
		require.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Contains(t, err.Error(), "utilization")
	})

	t.Run("not a workbook", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "junk.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))
		_, err := loader.Load("csat", path, "")
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})

	t.Run("empty csv", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))
		_, err := loader.Load("csat", path, "")
		assert.ErrorIs(t, err, ErrSourceUnavailable)
	})
}
