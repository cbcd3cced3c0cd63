// Package source reads the utilization and CSAT exports and downloads them from
// SharePoint.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ErrSourceUnavailable = errors.New("source unavailable")

// RawRow maps a trimmed header to the trimmed cell text of one data row.
type RawRow map[string]string

// Sheet is the tabular content of one worksheet.
type Sheet struct {
	Role    string
	Name    string
	Headers []string
	Rows    []RawRow
}

// Loader reads spreadsheets from disk.
type Loader struct {
	logger *zap.Logger
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger.Named("source")}
}

// Load reads the named sheet of the workbook at path. role names the source in
// errors ("utilization", "csat"). An empty sheet selects the first one; a sheet
// that does not exist falls back to the first one.
func (l *Loader) Load(role, path, sheet string) (*Sheet, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s file %q: %v", ErrSourceUnavailable, role, path, err)
	}

	var (
		grid [][]string
		name string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		grid, err = readCSV(path)
		name = filepath.Base(path)
	default:
		grid, name, err = l.readWorkbook(path, sheet)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s file %q: %v", ErrSourceUnavailable, role, path, err)
	}

	out, err := toSheet(grid)
	if err != nil {
		return nil, fmt.Errorf("%w: %s file %q: %v", ErrSourceUnavailable, role, path, err)
	}
	out.Role = role
	out.Name = name

	l.logger.Info("sheet loaded",
		zap.String("role", role),
		zap.String("sheet", name),
		zap.Int("columns", len(out.Headers)),
		zap.Int("rows", len(out.Rows)))

	return out, nil
}

func (l *Loader) readWorkbook(path, sheet string) ([][]string, string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, "", errors.New("workbook has no sheets")
	}

	name := sheets[0]
	if sheet != "" {
		found := false
		for _, s := range sheets {
			if s == sheet {
				name, found = s, true
				break
			}
		}
		if !found {
			l.logger.Warn("sheet not found, using first sheet",
				zap.String("requested", sheet),
				zap.String("using", name))
		}
	}

	// Raw values keep dates as excel serials so the normalizer decides how to read them.
	rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, "", err
	}
	return rows, name, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func toSheet(grid [][]string) (*Sheet, error) {
	start := -1
	for i, row := range grid {
		if !blank(row) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, errors.New("no header row")
	}

	headers := make([]string, len(grid[start]))
	seen := make(map[string]bool, len(headers))
	for i, h := range grid[start] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		headers[i] = h
	}

	out := &Sheet{}
	for _, h := range headers {
		if h != "" {
			out.Headers = append(out.Headers, h)
		}
	}

	for _, row := range grid[start+1:] {
		if blank(row) {
			continue
		}
		raw := make(RawRow, len(out.Headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				raw[h] = strings.TrimSpace(row[i])
			} else {
				raw[h] = ""
			}
		}
		out.Rows = append(out.Rows, raw)
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
