package aggregate

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/resolve"
)

// EngineerShare is one engineer's contribution to a partner.
type EngineerShare struct {
	TicketsWorked int
	BillableHours float64
}

type PartnerMetrics struct {
	CsatScore          float64
	TotalCsatResponses int
	HappyRatings       int
	Comments           []model.CsatComment
	ContactEmails      []string
	ContactNames       []string
	TotalBillableHours float64
	TotalTicketsWorked int
	PersonDays         int
	AvgUtilizationPct  float64
	ByEngineer         map[string]EngineerShare
	Daily              []model.PartnerDay
}

// Partner aggregates p's utilization and CSAT rows. Comments are the non-empty
// ones, most recent first, capped at opts.CommentCap.
func Partner(p *resolve.Partner, opts Options) PartnerMetrics {
	m := PartnerMetrics{
		TotalCsatResponses: len(p.Csat),
		ByEngineer:         make(map[string]EngineerShare),
	}

	personDays := make(map[[2]string]struct{})
	daily := make(map[civil.Date]*model.PartnerDay)
	for _, r := range p.Rows {
		if r.HasDate() {
			d, ok := daily[r.Date]
			if !ok {
				d = &model.PartnerDay{Date: r.Date.String()}
				daily[r.Date] = d
			}
			d.BillableHours += r.BillableHours
			d.TicketsWorked += r.TicketsWorked
		}

		m.TotalBillableHours += r.BillableHours
		m.TotalTicketsWorked += r.TicketsWorked
		personDays[[2]string{r.EngineerEmail, dateKey(r.Date)}] = struct{}{}

		share := m.ByEngineer[r.EngineerEmail]
		share.TicketsWorked += r.TicketsWorked
		share.BillableHours += r.BillableHours
		m.ByEngineer[r.EngineerEmail] = share
	}
	m.PersonDays = len(personDays)
	m.Daily = partnerDays(daily)
	m.AvgUtilizationPct = Round2(100 * m.TotalBillableHours / maxf(float64(m.PersonDays)*opts.WorkdayHours, 1))

	emails := make(map[string]struct{})
	names := make(map[string]struct{})
	var commented []model.CsatRecord
	for _, c := range p.Csat {
		if c.IsHappy() {
			m.HappyRatings++
		}
		if c.ContactEmail != "" {
			emails[c.ContactEmail] = struct{}{}
		}
		if c.ContactName != "" {
			names[c.ContactName] = struct{}{}
		}
		if c.Comment != "" {
			commented = append(commented, c)
		}
	}
	m.CsatScore = Pct(float64(m.HappyRatings), float64(m.TotalCsatResponses))
	m.ContactEmails = sortedKeys(emails)
	m.ContactNames = sortedKeys(names)

	sort.SliceStable(commented, func(i, j int) bool {
		return model.DateAfter(commented[i].Date, commented[j].Date)
	})
	if opts.CommentCap > 0 && len(commented) > opts.CommentCap {
		commented = commented[:opts.CommentCap]
	}
	m.Comments = make([]model.CsatComment, 0, len(commented))
	for _, c := range commented {
		m.Comments = append(m.Comments, model.CsatComment{
			Comment:  c.Comment,
			Rating:   c.Rating,
			Date:     model.FormatDate(c.Date),
			Engineer: c.TeamMember,
		})
	}
	return m
}

// partnerDays returns the daily roll-up oldest first.
func partnerDays(daily map[civil.Date]*model.PartnerDay) []model.PartnerDay {
	dates := make([]civil.Date, 0, len(daily))
	for d := range daily {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make([]model.PartnerDay, 0, len(dates))
	for _, d := range dates {
		pd := *daily[d]
		pd.BillableHours = Round2(pd.BillableHours)
		out = append(out, pd)
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
