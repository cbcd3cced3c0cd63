package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/xuri/excelize/v2"
)

// Excel serials above this are past 9999-12-31.
const maxExcelSerial = 2958465

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"2-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
}

// parseNumber reads a numeric cell. Empty cells are 0 and not a failure; anything
// unparseable is 0 and reported as a failure. Negative values clamp to 0.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if v < 0 {
		return 0, true
	}
	return v, true
}

func parseCount(raw string) (int, bool) {
	v, ok := parseNumber(raw)
	return int(math.Trunc(v)), ok
}

// parseDate accepts the textual layouts above, datetimes (keeping the date part)
// and excel serial numbers.
func parseDate(raw string) (civil.Date, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return civil.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 && serial <= maxExcelSerial {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return civil.DateOf(t), true
		}
	}
	return civil.Date{}, false
}

// timestamp is a parsed start/completion cell. clockOnly is set when the cell
// carried a time of day without a date.
type timestamp struct {
	t         time.Time
	clockOnly bool
}

func parseTimestamp(raw string) (timestamp, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return timestamp{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return timestamp{t: t}, true
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
			return timestamp{t: t, clockOnly: true}, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 0 && serial <= maxExcelSerial {
		if serial < 1 {
			secs := math.Round(serial * 86400)
			return timestamp{t: time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second), clockOnly: true}, true
		}
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return timestamp{t: t}, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return timestamp{t: t}, true
		}
	}
	return timestamp{}, false
}

// hoursBetween returns the positive span from start to end in hours. When either
// side is a bare time of day the clocks are compared, and an end before the start
// is read as crossing midnight. Full datetimes in the wrong order yield 0.
func hoursBetween(start, end timestamp) float64 {
	if start.clockOnly || end.clockOnly {
		s := clockSeconds(start.t)
		e := clockSeconds(end.t)
		if e < s {
			e += 24 * 3600
		}
		return float64(e-s) / 3600
	}
	d := end.t.Sub(start.t)
	if d < 0 {
		return 0
	}
	return d.Hours()
}

func clockSeconds(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
