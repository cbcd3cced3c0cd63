package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UtilizationColumns lists the accepted header spellings for each utilization field.
// The first alias present in a sheet wins.
type UtilizationColumns struct {
	Partner          []string `yaml:"partner"`
	Name             []string `yaml:"name"`
	Email            []string `yaml:"email"`
	Manager          []string `yaml:"manager"`
	Date             []string `yaml:"date"`
	StartTime        []string `yaml:"start_time"`
	CompletionTime   []string `yaml:"completion_time"`
	BillableHours    []string `yaml:"billable_hours"`
	NonBillableHours []string `yaml:"non_billable_hours"`
	TicketsWorked    []string `yaml:"tickets_worked"`
	TicketsClosed    []string `yaml:"tickets_closed"`
	TicketsNew       []string `yaml:"tickets_new"`
}

// CsatColumns lists the accepted header spellings for each CSAT field.
type CsatColumns struct {
	Company      []string `yaml:"company"`
	ContactEmail []string `yaml:"contact_email"`
	ContactName  []string `yaml:"contact_name"`
	Rating       []string `yaml:"rating"`
	Comments     []string `yaml:"comments"`
	TeamMember   []string `yaml:"team_member"`
	Date         []string `yaml:"date"`
	TicketName   []string `yaml:"ticket_name"`
}

// Columns is the column-alias configuration handed to the normalizer.
type Columns struct {
	Utilization UtilizationColumns `yaml:"utilization"`
	Csat        CsatColumns        `yaml:"csat"`
}

// DefaultColumns returns the header spellings seen in the workforce exports.
func DefaultColumns() Columns {
	return Columns{
		Utilization: UtilizationColumns{
			Partner:          []string{"Partner Name1", "Partner Name", "Partner"},
			Name:             []string{"Name", "Engineer Name"},
			Email:            []string{"Email", "Email Address"},
			Manager:          []string{"Reporting Manager", "TDL", "Manager"},
			Date:             []string{"Date"},
			StartTime:        []string{"Start time", "Start Time"},
			CompletionTime:   []string{"Completion time", "Completion Time"},
			BillableHours:    []string{"Billable Hours"},
			NonBillableHours: []string{"Non Billable Hours (Excluding Admin & Break)", "Non Billable Hours"},
			TicketsWorked:    []string{"No. Tickets Worked"},
			TicketsClosed:    []string{"No. Tickets Closed"},
			TicketsNew:       []string{"No. New/Dispatched Tickets"},
		},
		Csat: CsatColumns{
			Company:      []string{"Company", "Company Name"},
			ContactEmail: []string{"Contact Email"},
			ContactName:  []string{"Contact Name"},
			Rating:       []string{"Rating"},
			Comments:     []string{"Comments", "Comment"},
			TeamMember:   []string{"Team Member"},
			Date:         []string{"Date", "Created Date"},
			TicketName:   []string{"Ticket Name", "Ticket Title"},
		},
	}
}

// LoadColumns overlays the YAML file at path onto the defaults. Fields absent from
// the file keep their default aliases. An empty path returns the defaults.
func LoadColumns(path string) (Columns, error) {
	cols := DefaultColumns()
	if path == "" {
		return cols, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cols, fmt.Errorf("read columns file: %w", err)
	}

	var override Columns
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cols, fmt.Errorf("parse columns file %s: %w", path, err)
	}

	mergeAliases(&cols.Utilization.Partner, override.Utilization.Partner)
	mergeAliases(&cols.Utilization.Name, override.Utilization.Name)
	mergeAliases(&cols.Utilization.Email, override.Utilization.Email)
	mergeAliases(&cols.Utilization.Manager, override.Utilization.Manager)
	mergeAliases(&cols.Utilization.Date, override.Utilization.Date)
	mergeAliases(&cols.Utilization.StartTime, override.Utilization.StartTime)
	mergeAliases(&cols.Utilization.CompletionTime, override.Utilization.CompletionTime)
	mergeAliases(&cols.Utilization.BillableHours, override.Utilization.BillableHours)
	mergeAliases(&cols.Utilization.NonBillableHours, override.Utilization.NonBillableHours)
	mergeAliases(&cols.Utilization.TicketsWorked, override.Utilization.TicketsWorked)
	mergeAliases(&cols.Utilization.TicketsClosed, override.Utilization.TicketsClosed)
	mergeAliases(&cols.Utilization.TicketsNew, override.Utilization.TicketsNew)

	mergeAliases(&cols.Csat.Company, override.Csat.Company)
	mergeAliases(&cols.Csat.ContactEmail, override.Csat.ContactEmail)
	mergeAliases(&cols.Csat.ContactName, override.Csat.ContactName)
	mergeAliases(&cols.Csat.Rating, override.Csat.Rating)
	mergeAliases(&cols.Csat.Comments, override.Csat.Comments)
	mergeAliases(&cols.Csat.TeamMember, override.Csat.TeamMember)
	mergeAliases(&cols.Csat.Date, override.Csat.Date)
	mergeAliases(&cols.Csat.TicketName, override.Csat.TicketName)

	return cols, nil
}

func mergeAliases(dst *[]string, override []string) {
	if len(override) > 0 {
		*dst = override
	}
}
