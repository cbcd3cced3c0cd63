// Package model holds the canonical records produced by normalization and the
// profile shapes emitted by the report assembler.
package model

import (
	"strings"

	"cloud.google.com/go/civil"
)

// UnassignedManager is used when no reporting manager is known for an engineer.
const UnassignedManager = "Unassigned"

// NeutralRating replaces an empty CSAT rating.
const NeutralRating = "neutral"

// UtilizationRecord is one engineer-day-ticket-batch row from the utilization export.
// Date is the zero civil.Date when the row carried no parseable date.
type UtilizationRecord struct {
	EngineerEmail    string
	EngineerName     string
	PartnerName      string
	ReportingManager string
	Date             civil.Date
	BillableHours    float64
	NonBillableHours float64
	TicketsWorked    int
	TicketsClosed    int
	TicketsNew       int
}

// HasDate reports whether the row carries a known calendar date.
func (r UtilizationRecord) HasDate() bool {
	return r.Date.IsValid()
}

// CsatRecord is one survey response from the CSAT export.
type CsatRecord struct {
	Company      string
	ContactEmail string
	ContactName  string
	Rating       string
	Comment      string
	TeamMember   string
	TicketName   string
	Date         civil.Date
}

// HasDate reports whether the response carries a known calendar date.
func (r CsatRecord) HasDate() bool {
	return r.Date.IsValid()
}

// IsHappy reports whether the rating is the "happy" category, case-insensitively.
func (r CsatRecord) IsHappy() bool {
	return strings.EqualFold(strings.TrimSpace(r.Rating), "happy")
}

// CompanyKey is the case-folded company used for partner lookups.
func (r CsatRecord) CompanyKey() string {
	return strings.ToLower(strings.TrimSpace(r.Company))
}

// FormatDate renders a civil date as YYYY-MM-DD, or "" when unknown.
func FormatDate(d civil.Date) string {
	if !d.IsValid() {
		return ""
	}
	return d.String()
}

// DateAfter orders known dates descending with unknown dates last.
func DateAfter(a, b civil.Date) bool {
	switch {
	case a.IsValid() && !b.IsValid():
		return true
	case !a.IsValid():
		return false
	default:
		return a.After(b)
	}
}
