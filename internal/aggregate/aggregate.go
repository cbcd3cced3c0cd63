// Package aggregate computes engineer and partner metrics from resolved records.
//
// Two divide-by-zero policies apply and both yield 0 rather than signalling "no
// data": lifetime engineer ratios divide by max(denominator, 1), while
// percentages built from sums (CSAT score, window and dashboard rates) return 0
// when the denominator is 0.
package aggregate

import (
	"math"

	"cloud.google.com/go/civil"
	"github.com/godilite/workforce-intel/internal/model"
)

// Options carries the tunable constants.
type Options struct {
	WorkdayHours float64
	RecentDays   int
	Windows      []int
	CommentCap   int
}

func DefaultOptions() Options {
	return Options{
		WorkdayHours: 8,
		RecentDays:   30,
		Windows:      []int{7, 15, 30, 60, 90},
		CommentCap:   20,
	}
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Pct returns 100*num/den rounded to two decimals, or 0 when den is 0.
func Pct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return Round2(num / den * 100)
}

// LatestDate returns the most recent known date in rows, or the zero date when
// none is known. Rolling windows end here rather than at wall-clock time.
func LatestDate(rows []model.UtilizationRecord) civil.Date {
	var latest civil.Date
	for _, r := range rows {
		if r.HasDate() && (!latest.IsValid() || r.Date.After(latest)) {
			latest = r.Date
		}
	}
	return latest
}

// InWindow reports whether d falls in the days-long window ending at asOf. The
// cutoff itself is included.
func InWindow(d, asOf civil.Date, days int) bool {
	if !d.IsValid() || !asOf.IsValid() {
		return false
	}
	return !d.Before(asOf.AddDays(-days))
}

func maxf(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}

// dateKey buckets undated rows together so they count as one worked day.
func dateKey(d civil.Date) string {
	return model.FormatDate(d)
}
