package aggregate

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/resolve"
)

// EngineerMetrics are lifetime and windowed figures for one engineer. Totals are
// unrounded so callers can sum them.
type EngineerMetrics struct {
	TotalBillableHours    float64
	TotalNonBillableHours float64
	TotalTicketsWorked    int
	TotalTicketsClosed    int
	TotalTicketsNew       int
	DaysWorked            int
	AvgTicketsPerDay      float64
	AvgUtilizationPct     float64
	CloseRate             float64
	Daily                 []model.DailyUtilization
	Recent                []model.DailyUtilization
	Windows               []model.WindowStats
}

type day struct {
	date civil.Date
	agg  model.DailyUtilization
}

// Engineer aggregates e's rows. Undated rows count toward totals and add a
// single worked day, but never enter the daily series or any window.
func Engineer(e *resolve.Engineer, asOf civil.Date, opts Options) EngineerMetrics {
	var m EngineerMetrics

	days := make(map[string]*day)
	for _, r := range e.Rows {
		m.TotalBillableHours += r.BillableHours
		m.TotalNonBillableHours += r.NonBillableHours
		m.TotalTicketsWorked += r.TicketsWorked
		m.TotalTicketsClosed += r.TicketsClosed
		m.TotalTicketsNew += r.TicketsNew

		key := dateKey(r.Date)
		d, ok := days[key]
		if !ok {
			d = &day{date: r.Date}
			days[key] = d
		}
		d.agg.BillableHours += r.BillableHours
		d.agg.NonBillableHours += r.NonBillableHours
		d.agg.TicketsWorked += r.TicketsWorked
		d.agg.TicketsClosed += r.TicketsClosed
	}

	m.DaysWorked = len(days)
	m.AvgTicketsPerDay = Round2(float64(m.TotalTicketsWorked) / maxf(float64(m.DaysWorked), 1))
	m.AvgUtilizationPct = Round2(100 * m.TotalBillableHours / maxf(float64(m.DaysWorked)*opts.WorkdayHours, 1))
	m.CloseRate = Round2(100 * float64(m.TotalTicketsClosed) / maxf(float64(m.TotalTicketsWorked), 1))

	dated := make([]*day, 0, len(days))
	for _, d := range days {
		if d.date.IsValid() {
			dated = append(dated, d)
		}
	}
	sort.Slice(dated, func(i, j int) bool { return dated[i].date.Before(dated[j].date) })

	m.Daily = make([]model.DailyUtilization, 0, len(dated))
	for _, d := range dated {
		agg := d.agg
		agg.Date = d.date.String()
		agg.BillableHours = Round2(agg.BillableHours)
		agg.NonBillableHours = Round2(agg.NonBillableHours)
		m.Daily = append(m.Daily, agg)
	}

	recent := opts.RecentDays
	if recent <= 0 || recent > len(m.Daily) {
		recent = len(m.Daily)
	}
	m.Recent = m.Daily[len(m.Daily)-recent:]

	m.Windows = make([]model.WindowStats, 0, len(opts.Windows))
	for _, n := range opts.Windows {
		m.Windows = append(m.Windows, window(dated, asOf, n, opts.WorkdayHours))
	}
	return m
}

func window(dated []*day, asOf civil.Date, n int, workday float64) model.WindowStats {
	w := model.WindowStats{Days: n}
	var billable float64
	for _, d := range dated {
		if !InWindow(d.date, asOf, n) {
			continue
		}
		w.DaysWorked++
		billable += d.agg.BillableHours
		w.TicketsWorked += d.agg.TicketsWorked
		w.TicketsClosed += d.agg.TicketsClosed
	}
	w.BillableHours = Round2(billable)
	w.UtilizationPct = Pct(billable, float64(w.DaysWorked)*workday)
	w.CloseRate = Pct(float64(w.TicketsClosed), float64(w.TicketsWorked))
	return w
}
