// Package insights turns dashboard metrics into short rule-based observations.
package insights

import (
	"fmt"
	"math"
	"strconv"

	"github.com/godilite/workforce-intel/internal/model"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindAlert   Kind = "alert"
)

type Insight struct {
	Type        Kind   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Team describes one TDL's engineers over a reporting period.
type Team struct {
	Size              int
	AvgUtilization    float64
	PartnerCount      int
	MemberUtilization []float64
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Global covers the organization-wide dashboard.
func Global(s model.DashboardStats) []Insight {
	var out []Insight
	u := num(s.AvgUtilizationPct)

	switch {
	case s.AvgUtilizationPct >= 80:
		out = append(out, Insight{KindSuccess, "Strong Organizational Performance",
			fmt.Sprintf("Current utilization of %s%% indicates healthy resource allocation.", u)})
	case s.AvgUtilizationPct >= 70:
		out = append(out, Insight{KindInfo, "Moderate Utilization Detected",
			fmt.Sprintf("At %s%%, there is room for optimization. Review workload distribution for underutilized resources.", u)})
	default:
		out = append(out, Insight{KindWarning, "Utilization Below Target",
			fmt.Sprintf("Current %s%% utilization suggests capacity issues. Review ticket assignment and availability.", u)})
	}

	if s.TotalPartners > 15 {
		out = append(out, Insight{KindInfo, "Diverse Partner Portfolio",
			fmt.Sprintf("Managing %d partners requires balanced resource allocation.", s.TotalPartners)})
	}

	if s.TotalEngineers > 0 {
		perEngineer := float64(s.TotalTicketsClosed) / float64(s.TotalEngineers)
		if perEngineer > 100 {
			out = append(out, Insight{KindSuccess, "High Ticket Resolution Rate",
				fmt.Sprintf("Average of %d closed tickets per engineer.", int(math.Round(perEngineer)))})
		}
	}

	c := num(s.AvgCsatScore)
	switch {
	case s.AvgCsatScore >= 90:
		out = append(out, Insight{KindSuccess, "Excellent Customer Satisfaction",
			fmt.Sprintf("CSAT score of %s%% reflects high service quality.", c)})
	case s.AvgCsatScore >= 75:
		out = append(out, Insight{KindInfo, "Solid Customer Feedback",
			fmt.Sprintf("CSAT at %s%% is acceptable but has improvement potential.", c)})
	}
	return out
}

// ForTeam covers a TDL's team.
func ForTeam(t Team) []Insight {
	var out []Insight
	u := num(t.AvgUtilization)

	switch {
	case t.AvgUtilization >= 80:
		out = append(out, Insight{KindSuccess, "Team Exceeding Performance Targets",
			fmt.Sprintf("Your %d-person team is operating at %s%% utilization, above the 80%% benchmark.", t.Size, u)})
	case t.AvgUtilization >= 70:
		out = append(out, Insight{KindInfo, "Performance Within Range",
			fmt.Sprintf("Team utilization at %s%% is approaching target.", u)})
	default:
		out = append(out, Insight{KindWarning, "Team Utilization Needs Attention",
			fmt.Sprintf("Current %s%% utilization is below expectations.", u)})
	}

	var high, low int
	for _, mu := range t.MemberUtilization {
		if mu >= 80 {
			high++
		}
		if mu < 60 {
			low++
		}
	}
	if float64(high) > float64(t.Size)*0.6 {
		out = append(out, Insight{KindSuccess, "Strong Individual Performance",
			fmt.Sprintf("%d out of %d engineers are meeting or exceeding targets.", high, t.Size)})
	}
	if float64(low) > float64(t.Size)*0.3 {
		out = append(out, Insight{KindAlert, "Performance Variance Detected",
			fmt.Sprintf("%d team members are underutilized.", low)})
	}

	if t.PartnerCount > 5 {
		out = append(out, Insight{KindInfo, "Multi-Partner Coordination",
			fmt.Sprintf("Supporting %d partners requires cross-functional awareness.", t.PartnerCount)})
	}
	return out
}

// ForPartner covers one partner. engineerUtil holds the lifetime utilization of
// each associated engineer.
func ForPartner(p model.PartnerProfile, engineerUtil []float64) []Insight {
	var out []Insight
	u := num(p.AvgUtilizationPct)

	switch {
	case p.AvgUtilizationPct >= 80:
		out = append(out, Insight{KindSuccess, "Optimal Resource Utilization",
			fmt.Sprintf("Partner team is operating at %s%% utilization with %d engineers.", u, p.EngineerCount)})
	case p.AvgUtilizationPct >= 65:
		out = append(out, Insight{KindInfo, "Utilization Analysis",
			fmt.Sprintf("Current %s%% utilization suggests room for optimization.", u)})
	default:
		out = append(out, Insight{KindWarning, "Resource Utilization Gap",
			fmt.Sprintf("At %s%%, resources may be underutilized.", u)})
	}

	switch {
	case p.EngineerCount == 1:
		out = append(out, Insight{KindAlert, "Single Point of Coverage",
			"Partner is supported by one engineer. Consider cross-training or a backup assignment."})
	case p.EngineerCount >= 5:
		out = append(out, Insight{KindInfo, "Large Support Team",
			fmt.Sprintf("%d engineers support this partner. Keep ownership clear.", p.EngineerCount)})
	}

	if len(engineerUtil) > 0 {
		lo, hi := engineerUtil[0], engineerUtil[0]
		for _, v := range engineerUtil[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi-lo > 30 {
			out = append(out, Insight{KindWarning, "Uneven Workload Distribution",
				fmt.Sprintf("Utilization ranges from %s%% to %s%%.", num(lo), num(hi))})
		}
	}

	c := num(p.CsatScore)
	switch {
	case p.CsatScore >= 90:
		out = append(out, Insight{KindSuccess, "Exceptional Service Quality",
			fmt.Sprintf("Partner CSAT of %s%% reflects strong customer satisfaction.", c)})
	case p.CsatScore > 0 && p.CsatScore < 75:
		out = append(out, Insight{KindAlert, "Customer Satisfaction Concern",
			fmt.Sprintf("CSAT at %s%% requires attention. Review recent feedback comments.", c)})
	}
	return out
}

// ForEngineer covers one engineer. trend is the daily utilization series in
// date order.
func ForEngineer(e model.EngineerProfile, trend []float64) []Insight {
	var out []Insight
	u, cr := num(e.AvgUtilizationPct), num(e.CloseRate)

	switch {
	case e.AvgUtilizationPct >= 80 && e.CloseRate >= 80:
		out = append(out, Insight{KindSuccess, "Excellent Individual Performance",
			fmt.Sprintf("Maintaining %s%% utilization with a %s%% close rate.", u, cr)})
	case e.AvgUtilizationPct >= 80:
		out = append(out, Insight{KindInfo, "High Utilization, Close Rate Opportunity",
			fmt.Sprintf("Utilization of %s%% is strong, but the %s%% close rate suggests tickets need more time.", u, cr)})
	case e.CloseRate >= 80:
		out = append(out, Insight{KindInfo, "Efficient Ticket Resolution",
			fmt.Sprintf("A %s%% close rate with %s%% utilization leaves capacity for more work.", cr, u)})
	default:
		out = append(out, Insight{KindWarning, "Performance Below Targets",
			fmt.Sprintf("Both utilization (%s%%) and close rate (%s%%) are below benchmarks.", u, cr)})
	}

	if len(trend) >= 5 {
		switch last := trend[len(trend)-5:]; {
		case monotone(last, func(a, b float64) bool { return b >= a }):
			out = append(out, Insight{KindSuccess, "Positive Performance Trajectory",
				"Utilization has been steadily increasing over the recent period."})
		case monotone(last, func(a, b float64) bool { return b <= a }):
			out = append(out, Insight{KindWarning, "Declining Utilization Pattern",
				"Recent trend shows decreasing utilization."})
		}
	}

	switch {
	case e.TotalTicketsWorked > 400:
		out = append(out, Insight{KindInfo, "High Ticket Volume",
			fmt.Sprintf("Processing %d tickets. Watch for signs of burnout.", e.TotalTicketsWorked)})
	case e.TotalTicketsWorked < 200:
		out = append(out, Insight{KindInfo, "Lower Ticket Volume",
			fmt.Sprintf("%d tickets may indicate focus on complex issues or project work.", e.TotalTicketsWorked)})
	}

	if e.PartnerCount > 3 {
		out = append(out, Insight{KindInfo, "Multi-Partner Context Switching",
			fmt.Sprintf("Supporting %d partners requires frequent context switching.", e.PartnerCount)})
	}
	return out
}

func monotone(vals []float64, ok func(prev, cur float64) bool) bool {
	for i := 1; i < len(vals); i++ {
		if !ok(vals[i-1], vals[i]) {
			return false
		}
	}
	return true
}
