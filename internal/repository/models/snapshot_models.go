package models

import (
	"time"

	"github.com/godilite/workforce-intel/internal/model"
)

// Snapshot is one persisted pipeline run.
type Snapshot struct {
	RunID     string
	DataAsOf  string
	CreatedAt time.Time
	Report    model.Report
}

// RunRow mirrors the runs table. Documents are stored as JSON text.
type RunRow struct {
	ID               string
	DataAsOf         string
	CreatedAt        string
	PartnerMapping   string
	EngineerProfiles string
	DashboardStats   string
	DataQuality      string
}

// AssociationRow mirrors the associations table.
type AssociationRow struct {
	RunID         string
	EngineerEmail string
	Partner       string
	Heuristic     string
	Confidence    float64
	Roster        bool
}
