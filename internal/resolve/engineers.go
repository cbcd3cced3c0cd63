package resolve

import (
	"sort"

	"github.com/godilite/workforce-intel/internal/model"
)

// Engineer folds every utilization row that shares a lower-cased email.
type Engineer struct {
	Email   string
	Name    string
	Manager string
	Rows    []model.UtilizationRecord
}

type EngineerSet struct {
	ByEmail map[string]*Engineer
	Emails  []string
}

func (s *EngineerSet) Get(email string) *Engineer {
	return s.ByEmail[email]
}

// ResolveEngineers groups rows by email. The first non-empty name and the first
// assigned manager seen for an email become canonical; later spellings only
// contribute sums.
func ResolveEngineers(util []model.UtilizationRecord) *EngineerSet {
	set := &EngineerSet{ByEmail: make(map[string]*Engineer)}

	for _, r := range util {
		e, ok := set.ByEmail[r.EngineerEmail]
		if !ok {
			e = &Engineer{Email: r.EngineerEmail}
			set.ByEmail[r.EngineerEmail] = e
			set.Emails = append(set.Emails, r.EngineerEmail)
		}
		if e.Name == "" {
			e.Name = r.EngineerName
		}
		if e.Manager == "" && r.ReportingManager != "" && r.ReportingManager != model.UnassignedManager {
			e.Manager = r.ReportingManager
		}
		e.Rows = append(e.Rows, r)
	}

	for _, e := range set.ByEmail {
		if e.Manager == "" {
			e.Manager = model.UnassignedManager
		}
	}
	sort.Strings(set.Emails)
	return set
}
