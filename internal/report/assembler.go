// Package report merges resolver, matcher and aggregator output into the
// dashboard documents and writes them to disk.
package report

import (
	"sort"

	"cloud.google.com/go/civil"
	"github.com/godilite/workforce-intel/internal/aggregate"
	"github.com/godilite/workforce-intel/internal/match"
	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/resolve"
)

// Input is everything one run produced before assembly.
type Input struct {
	Partners        *resolve.PartnerSet
	Engineers       *resolve.EngineerSet
	Matches         *match.Result
	EngineerMetrics map[string]aggregate.EngineerMetrics
	PartnerMetrics  map[string]aggregate.PartnerMetrics
	NormalizeStats  model.NormalizeStats
	AsOf            civil.Date
	Options         aggregate.Options
}

// Assemble builds the report. It reads no clock, so identical input yields an
// identical report.
func Assemble(in Input) *model.Report {
	rep := &model.Report{
		Partners:  make(map[string]model.PartnerProfile, len(in.Partners.Names)),
		Engineers: make(map[string]model.EngineerProfile, len(in.Engineers.Emails)),
	}

	for _, email := range in.Engineers.Emails {
		rep.Engineers[email] = engineerProfile(in, in.Engineers.Get(email))
	}
	for _, name := range in.Partners.Names {
		rep.Partners[name] = partnerProfile(in, name)
	}

	rep.Stats = dashboardStats(in, rep)
	rep.Quality = model.DataQuality{
		Normalize:         in.NormalizeStats,
		Matching:          in.Matches.Stats,
		UnmatchedPartners: nonNil(in.Partners.Unmatched),
	}
	return rep
}

func engineerProfile(in Input, e *resolve.Engineer) model.EngineerProfile {
	m := in.EngineerMetrics[e.Email]
	assocs := nonNil(in.Matches.ByEngineer[e.Email])

	partners := make([]string, 0, len(assocs))
	for _, a := range assocs {
		partners = append(partners, a.Partner)
	}

	return model.EngineerProfile{
		Name:                  e.Name,
		Email:                 e.Email,
		TDL:                   e.Manager,
		Partners:              partners,
		PartnerCount:          len(partners),
		Associations:          assocs,
		TotalBillableHours:    aggregate.Round2(m.TotalBillableHours),
		TotalNonBillableHours: aggregate.Round2(m.TotalNonBillableHours),
		TotalTicketsWorked:    m.TotalTicketsWorked,
		TotalTicketsClosed:    m.TotalTicketsClosed,
		TotalTicketsNew:       m.TotalTicketsNew,
		DaysWorked:            m.DaysWorked,
		AvgTicketsPerDay:      m.AvgTicketsPerDay,
		AvgUtilizationPct:     m.AvgUtilizationPct,
		CloseRate:             m.CloseRate,
		RecentUtilization:     nonNil(m.Recent),
		UtilizationWindows:    nonNil(m.Windows),
		CsatFeedback:          nonNil(in.Matches.Feedback[e.Email]),
	}
}

func partnerProfile(in Input, name string) model.PartnerProfile {
	m := in.PartnerMetrics[name]
	emails := in.Matches.ByPartner[name]

	engineers := make([]model.EngineerSummary, 0, len(emails))
	tdls := make(map[string]struct{})
	for _, email := range emails {
		e := in.Engineers.Get(email)
		share := m.ByEngineer[email]
		engineers = append(engineers, model.EngineerSummary{
			Name:               e.Name,
			Email:              email,
			TDL:                e.Manager,
			TotalTickets:       share.TicketsWorked,
			TotalBillableHours: aggregate.Round2(share.BillableHours),
			CsatFeedbackCount:  in.Matches.FeedbackCount(email, name),
		})
		tdls[e.Manager] = struct{}{}
	}
	sort.SliceStable(engineers, func(i, j int) bool {
		if engineers[i].TotalTickets != engineers[j].TotalTickets {
			return engineers[i].TotalTickets > engineers[j].TotalTickets
		}
		return engineers[i].Email < engineers[j].Email
	})

	tdlList := make([]string, 0, len(tdls))
	for t := range tdls {
		tdlList = append(tdlList, t)
	}
	sort.Strings(tdlList)

	return model.PartnerProfile{
		Engineers:          engineers,
		TDLs:               tdlList,
		EngineerCount:      len(engineers),
		CsatScore:          m.CsatScore,
		TotalCsatResponses: m.TotalCsatResponses,
		HappyRatings:       m.HappyRatings,
		CsatComments:       nonNil(m.Comments),
		ContactEmails:      nonNil(m.ContactEmails),
		ContactNames:       nonNil(m.ContactNames),
		TotalBillableHours: aggregate.Round2(m.TotalBillableHours),
		TotalTicketsWorked: m.TotalTicketsWorked,
		AvgUtilizationPct:  m.AvgUtilizationPct,
		DailyActivity:      nonNil(m.Daily),
	}
}

func dashboardStats(in Input, rep *model.Report) model.DashboardStats {
	s := model.DashboardStats{
		TotalPartners:    len(rep.Partners),
		TotalEngineers:   len(rep.Engineers),
		DataAsOf:         model.FormatDate(in.AsOf),
		ReportingPeriods: append([]int{}, in.Options.Windows...),
	}

	for _, p := range rep.Partners {
		if p.EngineerCount > 0 {
			s.PartnersWithEngineers++
		}
	}

	// Case variants of one partner share CSAT rows, so count each row once.
	var happy int
	for _, c := range in.Partners.Matched {
		s.TotalCsatResponses++
		if c.IsHappy() {
			happy++
		}
	}
	for _, e := range rep.Engineers {
		if e.PartnerCount > 0 {
			s.EngineersWithPartners++
		}
	}

	var billable float64
	var days int
	for _, m := range in.EngineerMetrics {
		billable += m.TotalBillableHours
		days += m.DaysWorked
		s.TotalTicketsWorked += m.TotalTicketsWorked
		s.TotalTicketsClosed += m.TotalTicketsClosed
	}

	s.AvgCsatScore = aggregate.Pct(float64(happy), float64(s.TotalCsatResponses))
	s.AvgUtilizationPct = aggregate.Pct(billable, float64(days)*in.Options.WorkdayHours)
	s.TotalBillableHours = aggregate.Round2(billable)
	s.TicketCloseRate = aggregate.Pct(float64(s.TotalTicketsClosed), float64(s.TotalTicketsWorked))
	return s
}

// nonNil keeps empty lists as [] in JSON.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
