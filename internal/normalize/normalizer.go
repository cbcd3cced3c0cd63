// Package normalize turns raw spreadsheet rows into canonical records.
//
// Coercion never fails a row: unparseable numbers become zero and unparseable
// dates become unknown. Only a missing identity field (utilization email, CSAT
// company) rejects a row, with ErrMalformedRow.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/godilite/workforce-intel/internal/config"
	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/source"
	"go.uber.org/zap"
)

var ErrMalformedRow = errors.New("malformed row")

// Normalizer converts rows using a fixed set of column aliases and keeps running
// counters of what it had to repair or drop.
type Normalizer struct {
	cols   config.Columns
	logger *zap.Logger
	stats  model.NormalizeStats
}

func New(cols config.Columns, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{cols: cols, logger: logger.Named("normalize")}
}

// Stats returns the counters accumulated so far.
func (n *Normalizer) Stats() model.NormalizeStats {
	return n.stats
}

// Utilization normalizes one utilization row.
func (n *Normalizer) Utilization(row source.RawRow) (model.UtilizationRecord, error) {
	c := n.cols.Utilization

	email := strings.ToLower(lookup(row, c.Email))
	if email == "" {
		return model.UtilizationRecord{}, fmt.Errorf("%w: utilization row has no email", ErrMalformedRow)
	}

	rec := model.UtilizationRecord{
		EngineerEmail:    email,
		EngineerName:     collapseSpaces(lookup(row, c.Name)),
		PartnerName:      lookup(row, c.Partner),
		ReportingManager: lookup(row, c.Manager),
		NonBillableHours: n.number(lookup(row, c.NonBillableHours)),
		TicketsWorked:    n.count(lookup(row, c.TicketsWorked)),
		TicketsClosed:    n.count(lookup(row, c.TicketsClosed)),
		TicketsNew:       n.count(lookup(row, c.TicketsNew)),
	}
	if rec.ReportingManager == "" {
		rec.ReportingManager = model.UnassignedManager
	}

	start, startOK := parseTimestamp(lookup(row, c.StartTime))
	end, endOK := parseTimestamp(lookup(row, c.CompletionTime))

	rec.BillableHours = n.number(lookup(row, c.BillableHours))
	if rec.BillableHours <= 0 && startOK && endOK {
		rec.BillableHours = hoursBetween(start, end)
		if rec.BillableHours > 0 {
			n.stats.DerivedBillable++
		}
	}

	date, ok := parseDate(lookup(row, c.Date))
	switch {
	case ok:
		rec.Date = date
	case startOK && !start.clockOnly:
		rec.Date = civil.DateOf(start.t)
	case endOK && !end.clockOnly:
		rec.Date = civil.DateOf(end.t)
	default:
		n.stats.UnknownDates++
	}

	return rec, nil
}

// Csat normalizes one CSAT row.
func (n *Normalizer) Csat(row source.RawRow) (model.CsatRecord, error) {
	c := n.cols.Csat

	company := lookup(row, c.Company)
	if company == "" {
		return model.CsatRecord{}, fmt.Errorf("%w: csat row has no company", ErrMalformedRow)
	}

	rec := model.CsatRecord{
		Company:      company,
		ContactEmail: strings.ToLower(lookup(row, c.ContactEmail)),
		ContactName:  lookup(row, c.ContactName),
		Rating:       lookup(row, c.Rating),
		Comment:      lookup(row, c.Comments),
		TeamMember:   collapseSpaces(lookup(row, c.TeamMember)),
		TicketName:   lookup(row, c.TicketName),
	}
	if rec.Rating == "" {
		rec.Rating = model.NeutralRating
	}

	if date, ok := parseDate(lookup(row, c.Date)); ok {
		rec.Date = date
	} else {
		n.stats.UnknownDates++
	}
	return rec, nil
}

// UtilizationRows normalizes a sheet, dropping malformed rows.
func (n *Normalizer) UtilizationRows(rows []source.RawRow) []model.UtilizationRecord {
	out := make([]model.UtilizationRecord, 0, len(rows))
	for _, row := range rows {
		n.stats.UtilizationRows++
		rec, err := n.Utilization(row)
		if err != nil {
			n.stats.UtilizationDropped++
			continue
		}
		out = append(out, rec)
	}
	n.logger.Info("utilization rows normalized",
		zap.Int("kept", len(out)),
		zap.Int("dropped", len(rows)-len(out)))
	return out
}

// CsatRows normalizes a sheet, dropping malformed rows.
func (n *Normalizer) CsatRows(rows []source.RawRow) []model.CsatRecord {
	out := make([]model.CsatRecord, 0, len(rows))
	for _, row := range rows {
		n.stats.CsatRows++
		rec, err := n.Csat(row)
		if err != nil {
			n.stats.CsatDropped++
			continue
		}
		out = append(out, rec)
	}
	n.logger.Info("csat rows normalized",
		zap.Int("kept", len(out)),
		zap.Int("dropped", len(rows)-len(out)))
	return out
}

func (n *Normalizer) number(raw string) float64 {
	v, ok := parseNumber(raw)
	if !ok {
		n.stats.NumericFailures++
	}
	return v
}

func (n *Normalizer) count(raw string) int {
	v, ok := parseCount(raw)
	if !ok {
		n.stats.NumericFailures++
	}
	return v
}

// lookup returns the trimmed value of the first alias with a non-blank value
// in row. Aliases are tried in order, so a blank cell under the preferred
// header falls through to the next spelling.
func lookup(row source.RawRow, aliases []string) string {
	for _, a := range aliases {
		if v := strings.TrimSpace(row[a]); v != "" {
			return v
		}
	}
	return ""
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
