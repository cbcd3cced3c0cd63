// Package resolve builds canonical partner and engineer identities from
// normalized records.
package resolve

import (
	"sort"
	"strings"

	"github.com/godilite/workforce-intel/internal/model"
)

// Partner is one utilization partner with the CSAT rows whose company matches
// its name case-insensitively.
type Partner struct {
	Name string
	Rows []model.UtilizationRecord
	Csat []model.CsatRecord
}

// PartnerSet is the resolved partners plus the CSAT companies that matched none.
// Matched holds each CSAT row attached to at least one partner, once.
type PartnerSet struct {
	ByName    map[string]*Partner
	Names     []string
	Matched   []model.CsatRecord
	Unmatched []model.UnmatchedPartner
}

// Get returns the partner with the exact name, or nil.
func (s *PartnerSet) Get(name string) *Partner {
	return s.ByName[name]
}

// ResolvePartners groups utilization rows by their trimmed partner name and
// attaches CSAT rows by case-insensitive company. Every CSAT spelling that folds
// to a partner's name is merged into it. Rows with no partner name are skipped.
func ResolvePartners(util []model.UtilizationRecord, csat []model.CsatRecord) *PartnerSet {
	set := &PartnerSet{ByName: make(map[string]*Partner)}

	for _, r := range util {
		if r.PartnerName == "" {
			continue
		}
		p, ok := set.ByName[r.PartnerName]
		if !ok {
			p = &Partner{Name: r.PartnerName}
			set.ByName[r.PartnerName] = p
			set.Names = append(set.Names, r.PartnerName)
		}
		p.Rows = append(p.Rows, r)
	}
	sort.Strings(set.Names)

	byKey := make(map[string][]*Partner, len(set.ByName))
	for _, name := range set.Names {
		key := strings.ToLower(name)
		byKey[key] = append(byKey[key], set.ByName[name])
	}

	type orphan struct {
		company string
		rows    []model.CsatRecord
	}
	orphans := make(map[string]*orphan)
	var orphanKeys []string

	for _, c := range csat {
		key := c.CompanyKey()
		if partners, ok := byKey[key]; ok {
			set.Matched = append(set.Matched, c)
			for _, p := range partners {
				p.Csat = append(p.Csat, c)
			}
			continue
		}
		o, ok := orphans[key]
		if !ok {
			o = &orphan{company: c.Company}
			orphans[key] = o
			orphanKeys = append(orphanKeys, key)
		}
		o.rows = append(o.rows, c)
	}

	sort.Strings(orphanKeys)
	for _, key := range orphanKeys {
		o := orphans[key]
		u := model.UnmatchedPartner{
			Company:            o.company,
			TotalCsatResponses: len(o.rows),
			ContactDomains:     []string{},
		}
		domains := make(map[string]struct{})
		for _, r := range o.rows {
			if r.IsHappy() {
				u.HappyRatings++
			}
			if d := extractDomain(r.ContactEmail); d != "" {
				domains[d] = struct{}{}
			}
		}
		for d := range domains {
			u.ContactDomains = append(u.ContactDomains, d)
		}
		sort.Strings(u.ContactDomains)
		set.Unmatched = append(set.Unmatched, u)
	}

	return set
}

func extractDomain(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
