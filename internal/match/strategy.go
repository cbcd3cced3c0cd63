package match

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/resolve"
)

// ticketForName captures the name in ticket titles like "Laptop setup for Alice".
var ticketForName = regexp.MustCompile(`(?i)\bfor\s+(\w+)`)

// Candidate is the engineer side of a match attempt. All fields are lower-case.
type Candidate struct {
	Email     string
	FullName  string
	FirstName string
}

func NewCandidate(e *resolve.Engineer) Candidate {
	full := strings.ToLower(strings.Join(strings.Fields(e.Name), " "))
	c := Candidate{Email: e.Email, FullName: full}
	if tokens := nameTokens(full); len(tokens) > 0 {
		c.FirstName = tokens[0]
	}
	return c
}

// Mention is the searchable form of one CSAT row.
type Mention struct {
	Row          model.CsatRecord
	contactEmail string
	texts        []string
	names        map[string]struct{}
}

func NewMention(r model.CsatRecord) Mention {
	m := Mention{
		Row:          r,
		contactEmail: strings.ToLower(strings.TrimSpace(r.ContactEmail)),
		names:        make(map[string]struct{}),
	}
	for _, s := range []string{r.TeamMember, r.Comment, r.TicketName} {
		if s = strings.ToLower(strings.Join(strings.Fields(s), " ")); s != "" {
			m.texts = append(m.texts, s)
		}
	}
	for _, tok := range nameTokens(r.TeamMember) {
		m.names[tok] = struct{}{}
	}
	for _, sub := range ticketForName.FindAllStringSubmatch(r.TicketName, -1) {
		m.names[strings.ToLower(sub[1])] = struct{}{}
	}
	return m
}

// Corpus is a partner's CSAT rows in searchable form.
type Corpus struct {
	Partner  string
	Mentions []Mention
}

func NewCorpus(p *resolve.Partner) *Corpus {
	c := &Corpus{Partner: p.Name, Mentions: make([]Mention, 0, len(p.Csat))}
	for _, r := range p.Csat {
		c.Mentions = append(c.Mentions, NewMention(r))
	}
	return c
}

// Strategy is one heuristic in the cascade. MatchRow reports whether a single
// CSAT row is evidence linking the candidate to the row's partner.
type Strategy struct {
	Heuristic  model.Heuristic
	Confidence float64
	MatchRow   func(c Candidate, m *Mention) bool
}

// Match reports whether any row in the corpus satisfies the strategy.
func (s Strategy) Match(c Candidate, corpus *Corpus) bool {
	for i := range corpus.Mentions {
		if s.MatchRow(c, &corpus.Mentions[i]) {
			return true
		}
	}
	return false
}

// DefaultStrategies returns the cascade in priority order: contact email, full
// name mention, first name.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Heuristic: model.HeuristicDirectEmail, Confidence: 1.0, MatchRow: directEmail},
		{Heuristic: model.HeuristicFullNameMention, Confidence: 0.8, MatchRow: fullNameMention},
		{Heuristic: model.HeuristicFirstName, Confidence: 0.5, MatchRow: firstName},
	}
}

func directEmail(c Candidate, m *Mention) bool {
	return m.contactEmail != "" && m.contactEmail == c.Email
}

func fullNameMention(c Candidate, m *Mention) bool {
	if c.FullName == "" {
		return false
	}
	for _, t := range m.texts {
		if strings.Contains(t, c.FullName) {
			return true
		}
	}
	return false
}

func firstName(c Candidate, m *Mention) bool {
	if c.FirstName == "" {
		return false
	}
	_, ok := m.names[c.FirstName]
	return ok
}

func nameTokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
}
