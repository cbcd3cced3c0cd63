package model

// Heuristic names the cross-reference strategy that linked an engineer to a partner.
type Heuristic string

const (
	HeuristicDirectEmail     Heuristic = "direct_email"
	HeuristicFullNameMention Heuristic = "full_name_mention"
	HeuristicFirstName       Heuristic = "first_name"
	HeuristicNoMatch         Heuristic = "no_match"
)

// Association is a derived engineer-partner link. Roster is true when the engineer
// logged utilization rows for the partner; Heuristic is empty when only the roster
// links them.
type Association struct {
	EngineerEmail string    `json:"-"`
	Partner       string    `json:"partner"`
	Heuristic     Heuristic `json:"heuristic,omitempty"`
	Confidence    float64   `json:"confidence"`
	Roster        bool      `json:"roster"`
}

// Feedback is one CSAT response attributed to an engineer.
type Feedback struct {
	Partner string `json:"partner"`
	Rating  string `json:"rating"`
	Comment string `json:"comment"`
	Date    string `json:"date"`
}
