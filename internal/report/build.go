package report

import (
	"github.com/godilite/workforce-intel/internal/aggregate"
	"github.com/godilite/workforce-intel/internal/match"
	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/resolve"
)

// Build runs resolution, matching and aggregation over normalized records and
// assembles the result. The matcher's association set is returned alongside
// the report so callers can persist it.
func Build(util []model.UtilizationRecord, csat []model.CsatRecord, stats model.NormalizeStats, m *match.Matcher, opts aggregate.Options) (*model.Report, *match.Result) {
	partners := resolve.ResolvePartners(util, csat)
	engineers := resolve.ResolveEngineers(util)
	matches := m.Match(partners, engineers)
	asOf := aggregate.LatestDate(util)

	em := make(map[string]aggregate.EngineerMetrics, len(engineers.Emails))
	for _, email := range engineers.Emails {
		em[email] = aggregate.Engineer(engineers.Get(email), asOf, opts)
	}
	pm := make(map[string]aggregate.PartnerMetrics, len(partners.Names))
	for _, name := range partners.Names {
		pm[name] = aggregate.Partner(partners.Get(name), opts)
	}

	rep := Assemble(Input{
		Partners:        partners,
		Engineers:       engineers,
		Matches:         matches,
		EngineerMetrics: em,
		PartnerMetrics:  pm,
		NormalizeStats:  stats,
		AsOf:            asOf,
		Options:         opts,
	})
	return rep, matches
}
