// Package match links engineers to partners across the utilization and CSAT
// exports, which share no key.
//
// For every (engineer, partner) pair the strategies run in priority order against
// the partner's CSAT corpus and the first one that fires decides the pair. An
// engineer who logged utilization rows for a partner is associated regardless of
// the heuristic outcome; that roster link is recorded on the association but is
// not a heuristic and is not counted.
package match

import (
	"sort"

	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/resolve"
	"go.uber.org/zap"
)

// Result is the association set with the feedback it attributes.
type Result struct {
	// ByEngineer holds each engineer's associations sorted by partner.
	ByEngineer map[string][]model.Association
	// ByPartner holds each partner's associated engineer emails, sorted.
	ByPartner map[string][]string
	// Feedback holds the CSAT rows attributed to each engineer, most recent first.
	Feedback map[string][]model.Feedback
	Stats    model.MatchStats
}

// FeedbackCount returns how many of email's feedback entries came from partner.
func (r *Result) FeedbackCount(email, partner string) int {
	n := 0
	for _, f := range r.Feedback[email] {
		if f.Partner == partner {
			n++
		}
	}
	return n
}

type Matcher struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New returns a matcher using strategies in order, or DefaultStrategies when none
// are given.
func New(logger *zap.Logger, strategies ...Strategy) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Matcher{strategies: strategies, logger: logger.Named("match")}
}

// Evaluate returns the first strategy that matches the pair.
func (m *Matcher) Evaluate(c Candidate, corpus *Corpus) (Strategy, bool) {
	for _, s := range m.strategies {
		if s.Match(c, corpus) {
			return s, true
		}
	}
	return Strategy{}, false
}

// Match computes the association set from scratch. Output ordering depends only
// on the inputs.
func (m *Matcher) Match(partners *resolve.PartnerSet, engineers *resolve.EngineerSet) *Result {
	res := &Result{
		ByEngineer: make(map[string][]model.Association, len(engineers.Emails)),
		ByPartner:  make(map[string][]string, len(partners.Names)),
		Feedback:   make(map[string][]model.Feedback, len(engineers.Emails)),
	}

	corpora := make([]*Corpus, len(partners.Names))
	roster := make(map[string]map[string]bool, len(partners.Names))
	for i, name := range partners.Names {
		p := partners.Get(name)
		corpora[i] = NewCorpus(p)
		roster[name] = make(map[string]bool)
		for _, r := range p.Rows {
			roster[name][r.EngineerEmail] = true
		}
	}

	for _, email := range engineers.Emails {
		cand := NewCandidate(engineers.Get(email))

		for _, corpus := range corpora {
			assoc := model.Association{
				EngineerEmail: email,
				Partner:       corpus.Partner,
				Roster:        roster[corpus.Partner][email],
			}

			s, ok := m.Evaluate(cand, corpus)
			if ok {
				assoc.Heuristic = s.Heuristic
				assoc.Confidence = s.Confidence
				res.Stats.Record(s.Heuristic)
			} else {
				res.Stats.Record(model.HeuristicNoMatch)
			}
			if !ok && !assoc.Roster {
				continue
			}
			if assoc.Roster {
				assoc.Confidence = 1.0
			}

			res.ByEngineer[email] = append(res.ByEngineer[email], assoc)
			res.ByPartner[corpus.Partner] = append(res.ByPartner[corpus.Partner], email)

			if ok {
				res.Feedback[email] = append(res.Feedback[email], m.attribute(cand, corpus)...)
			}
		}

		sortFeedback(res.Feedback[email])
	}

	m.logger.Info("cross-reference complete",
		zap.Int("engineers", len(engineers.Emails)),
		zap.Int("partners", len(partners.Names)),
		zap.Int("direct_email", res.Stats.DirectEmail),
		zap.Int("full_name_mention", res.Stats.FullNameMention),
		zap.Int("first_name", res.Stats.FirstName),
		zap.Int("no_match", res.Stats.NoMatch))

	return res
}

// attribute returns the corpus rows that any strategy ties to the candidate.
func (m *Matcher) attribute(c Candidate, corpus *Corpus) []model.Feedback {
	var out []model.Feedback
	for i := range corpus.Mentions {
		mention := &corpus.Mentions[i]
		for _, s := range m.strategies {
			if s.MatchRow(c, mention) {
				out = append(out, model.Feedback{
					Partner: corpus.Partner,
					Rating:  mention.Row.Rating,
					Comment: mention.Row.Comment,
					Date:    model.FormatDate(mention.Row.Date),
				})
				break
			}
		}
	}
	return out
}

// sortFeedback orders most recent first with undated entries last. Dates are
// YYYY-MM-DD so they compare as strings.
func sortFeedback(fb []model.Feedback) {
	sort.SliceStable(fb, func(i, j int) bool {
		a, b := fb[i], fb[j]
		if a.Date != b.Date {
			if a.Date == "" || b.Date == "" {
				return b.Date == ""
			}
			return a.Date > b.Date
		}
		if a.Partner != b.Partner {
			return a.Partner < b.Partner
		}
		return a.Comment < b.Comment
	})
}
