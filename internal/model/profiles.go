package model

// DailyUtilization is the per-date roll-up of one engineer's utilization rows.
type DailyUtilization struct {
	Date             string  `json:"date"`
	BillableHours    float64 `json:"billable_hours"`
	NonBillableHours float64 `json:"non_billable_hours"`
	TicketsWorked    int     `json:"tickets_worked"`
	TicketsClosed    int     `json:"tickets_closed"`
}

// WindowStats summarizes an engineer over the last Days days of the dataset.
type WindowStats struct {
	Days           int     `json:"days"`
	DaysWorked     int     `json:"days_worked"`
	BillableHours  float64 `json:"billable_hours"`
	TicketsWorked  int     `json:"tickets_worked"`
	TicketsClosed  int     `json:"tickets_closed"`
	UtilizationPct float64 `json:"utilization_pct"`
	CloseRate      float64 `json:"close_rate"`
}

type EngineerProfile struct {
	Name                  string             `json:"name"`
	Email                 string             `json:"email"`
	TDL                   string             `json:"tdl"`
	Partners              []string           `json:"partners"`
	PartnerCount          int                `json:"partner_count"`
	Associations          []Association      `json:"associations"`
	TotalBillableHours    float64            `json:"total_billable_hours"`
	TotalNonBillableHours float64            `json:"total_non_billable_hours"`
	TotalTicketsWorked    int                `json:"total_tickets_worked"`
	TotalTicketsClosed    int                `json:"total_tickets_closed"`
	TotalTicketsNew       int                `json:"total_tickets_new"`
	DaysWorked            int                `json:"days_worked"`
	AvgTicketsPerDay      float64            `json:"avg_tickets_per_day"`
	AvgUtilizationPct     float64            `json:"avg_utilization_pct"`
	CloseRate             float64            `json:"close_rate"`
	RecentUtilization     []DailyUtilization `json:"recent_utilization"`
	UtilizationWindows    []WindowStats      `json:"utilization_windows"`
	CsatFeedback          []Feedback         `json:"csat_feedback"`
}

// EngineerSummary is the compact engineer entry embedded in a partner profile.
type EngineerSummary struct {
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	TDL                string  `json:"tdl"`
	TotalTickets       int     `json:"total_tickets"`
	TotalBillableHours float64 `json:"total_billable_hours"`
	CsatFeedbackCount  int     `json:"csat_feedback_count"`
}

// PartnerDay is the per-date roll-up of one partner's own utilization rows.
type PartnerDay struct {
	Date          string  `json:"date"`
	BillableHours float64 `json:"billable_hours"`
	TicketsWorked int     `json:"tickets_worked"`
}

type CsatComment struct {
	Comment  string `json:"comment"`
	Rating   string `json:"rating"`
	Date     string `json:"date"`
	Engineer string `json:"engineer"`
}

type PartnerProfile struct {
	Engineers          []EngineerSummary `json:"engineers"`
	TDLs               []string          `json:"tdls"`
	EngineerCount      int               `json:"engineer_count"`
	CsatScore          float64           `json:"csat_score"`
	TotalCsatResponses int               `json:"total_csat_responses"`
	HappyRatings       int               `json:"happy_ratings"`
	CsatComments       []CsatComment     `json:"csat_comments"`
	ContactEmails      []string          `json:"contact_emails"`
	ContactNames       []string          `json:"contact_names"`
	TotalBillableHours float64           `json:"total_billable_hours"`
	TotalTicketsWorked int               `json:"total_tickets_worked"`
	AvgUtilizationPct  float64           `json:"avg_utilization_pct"`
	DailyActivity      []PartnerDay      `json:"daily_activity"`
}

type DashboardStats struct {
	TotalPartners         int     `json:"total_partners"`
	TotalEngineers        int     `json:"total_engineers"`
	PartnersWithEngineers int     `json:"partners_with_engineers"`
	EngineersWithPartners int     `json:"engineers_with_partners"`
	TotalCsatResponses    int     `json:"total_csat_responses"`
	AvgCsatScore          float64 `json:"avg_csat_score"`
	AvgUtilizationPct     float64 `json:"avg_utilization_pct"`
	TotalBillableHours    float64 `json:"total_billable_hours"`
	TotalTicketsWorked    int     `json:"total_tickets_worked"`
	TotalTicketsClosed    int     `json:"total_tickets_closed"`
	TicketCloseRate       float64 `json:"ticket_close_rate"`
	DataAsOf              string  `json:"data_as_of"`
	ReportingPeriods      []int   `json:"reporting_periods"`
}

// UnmatchedPartner is a CSAT company with no utilization rows.
type UnmatchedPartner struct {
	Company            string   `json:"company"`
	TotalCsatResponses int      `json:"total_csat_responses"`
	HappyRatings       int      `json:"happy_ratings"`
	ContactDomains     []string `json:"contact_domains"`
}

type NormalizeStats struct {
	UtilizationRows    int `json:"utilization_rows"`
	UtilizationDropped int `json:"utilization_dropped"`
	CsatRows           int `json:"csat_rows"`
	CsatDropped        int `json:"csat_dropped"`
	NumericFailures    int `json:"numeric_coercion_failures"`
	UnknownDates       int `json:"unknown_dates"`
	DerivedBillable    int `json:"derived_billable_hours"`
}

type MatchStats struct {
	DirectEmail     int `json:"direct_email"`
	FullNameMention int `json:"full_name_mention"`
	FirstName       int `json:"first_name"`
	NoMatch         int `json:"no_match"`
}

// Record increments the counter for h.
func (s *MatchStats) Record(h Heuristic) {
	switch h {
	case HeuristicDirectEmail:
		s.DirectEmail++
	case HeuristicFullNameMention:
		s.FullNameMention++
	case HeuristicFirstName:
		s.FirstName++
	default:
		s.NoMatch++
	}
}

type DataQuality struct {
	Normalize         NormalizeStats     `json:"normalize"`
	Matching          MatchStats         `json:"matching"`
	UnmatchedPartners []UnmatchedPartner `json:"unmatched_partners"`
}

// Report is the full output of one pipeline run.
type Report struct {
	Partners  map[string]PartnerProfile  `json:"partner_mapping"`
	Engineers map[string]EngineerProfile `json:"engineer_profiles"`
	Stats     DashboardStats             `json:"dashboard_stats"`
	Quality   DataQuality                `json:"data_quality"`
}
