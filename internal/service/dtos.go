package service

import (
	"github.com/godilite/workforce-intel/internal/insights"
	"github.com/godilite/workforce-intel/internal/model"
)

type DashboardView struct {
	RunID    string               `json:"run_id"`
	Period   int                  `json:"period"`
	Stats    model.DashboardStats `json:"stats"`
	Insights []insights.Insight   `json:"insights"`
}

type PartnerSummary struct {
	Name               string  `json:"name"`
	EngineerCount      int     `json:"engineer_count"`
	CsatScore          float64 `json:"csat_score"`
	TotalCsatResponses int     `json:"total_csat_responses"`
}

type NamedValue struct {
	Name        string  `json:"name"`
	Utilization float64 `json:"utilization"`
}

type MonthlyTickets struct {
	Month   string `json:"month"`
	Tickets int    `json:"tickets"`
}

// Provenance explains why an engineer is attached to a partner.
type Provenance struct {
	EngineerEmail string          `json:"engineer_email"`
	Partner       string          `json:"partner"`
	Heuristic     model.Heuristic `json:"heuristic,omitempty"`
	Confidence    float64         `json:"confidence"`
	Roster        bool            `json:"roster"`
}

type PartnerView struct {
	RunID               string                  `json:"run_id"`
	Period              int                     `json:"period"`
	Name                string                  `json:"name"`
	Partner             model.PartnerProfile    `json:"partner"`
	EngineerProfiles    []model.EngineerProfile `json:"engineer_profiles"`
	EngineerUtilization []NamedValue            `json:"engineer_utilization"`
	MonthlyTickets      []MonthlyTickets        `json:"monthly_tickets"`
	Provenance          []Provenance            `json:"provenance"`
	Insights            []insights.Insight      `json:"insights"`
}

type TrendPoint struct {
	Date        string  `json:"date"`
	Utilization float64 `json:"utilization"`
	Tickets     int     `json:"tickets"`
}

type EngineerView struct {
	RunID            string                `json:"run_id"`
	Period           int                   `json:"period"`
	Profile          model.EngineerProfile `json:"profile"`
	PeriodStats      model.WindowStats     `json:"period_stats"`
	UtilizationTrend []TrendPoint          `json:"utilization_trend"`
	CsatTrend        []model.Feedback      `json:"csat_trend"`
	Provenance       []Provenance          `json:"provenance"`
	Insights         []insights.Insight    `json:"insights"`
}

type TDLStats struct {
	RunID              string             `json:"run_id"`
	Period             int                `json:"period"`
	TDL                string             `json:"tdl"`
	TotalEngineers     int                `json:"total_engineers"`
	TotalTickets       int                `json:"total_tickets"`
	TicketsClosed      int                `json:"tickets_closed"`
	TotalBillableHours float64            `json:"total_billable_hours"`
	AvgUtilization     float64            `json:"avg_utilization"`
	AvgCsatScore       float64            `json:"avg_csat_score"`
	CloseRate          float64            `json:"close_rate"`
	PartnersSupported  []string           `json:"partners_supported"`
	Engineers          []TopEngineer      `json:"engineers"`
	Insights           []insights.Insight `json:"insights"`
}

type TopEngineer struct {
	Email             string  `json:"email"`
	Name              string  `json:"name"`
	TDL               string  `json:"tdl"`
	PeriodUtilization float64 `json:"period_utilization"`
}

type RebuildResult struct {
	RunID    string `json:"run_id"`
	DataAsOf string `json:"data_as_of"`
}
