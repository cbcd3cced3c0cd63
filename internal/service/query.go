package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/godilite/workforce-intel/internal/aggregate"
	"github.com/godilite/workforce-intel/internal/insights"
	"github.com/godilite/workforce-intel/internal/model"
	"github.com/godilite/workforce-intel/internal/repository"
	"github.com/godilite/workforce-intel/internal/repository/models"
)

const (
	dbTimeout          = 5 * time.Second
	defaultTopLimit    = 10
	monthlyTicketsKept = 6
)

var (
	ErrNoSnapshot     = errors.New("no snapshot available")
	ErrNotFound       = errors.New("not found")
	ErrInvalidPeriod  = errors.New("invalid reporting period")
	ErrStorageFailure = errors.New("storage failure")
	ErrRebuildFailed  = errors.New("rebuild failed")
)

// QueryService answers dashboard questions from the latest persisted run.
type QueryService struct {
	storage SnapshotRepository
	runner  Runner
	workday float64
	logger  *zap.Logger

	mu      sync.RWMutex
	current *models.Snapshot
}

// NewQueryService creates a new QueryService instance. runner may be nil, in
// which case Rebuild is unavailable.
func NewQueryService(storage SnapshotRepository, runner Runner, workdayHours float64, logger *zap.Logger) *QueryService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if workdayHours <= 0 {
		workdayHours = aggregate.DefaultOptions().WorkdayHours
	}
	return &QueryService{
		storage: storage,
		runner:  runner,
		workday: workdayHours,
		logger:  logger.Named("query"),
	}
}

// CurrentRunID returns the id of the newest run.
func (s *QueryService) CurrentRunID(ctx context.Context) (string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	id, err := s.storage.LatestRunID(dbCtx)
	if err != nil {
		return "", s.storageError(err)
	}
	return id, nil
}

// snapshot returns the newest run, reusing the decoded copy while the run id
// is unchanged.
func (s *QueryService) snapshot(ctx context.Context) (*models.Snapshot, error) {
	id, err := s.CurrentRunID(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur != nil && cur.RunID == id {
		return cur, nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	snap, err := s.storage.LatestSnapshot(dbCtx)
	if err != nil {
		return nil, s.storageError(err)
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	s.logger.Info("loaded snapshot",
		zap.String("run_id", snap.RunID),
		zap.String("data_as_of", snap.DataAsOf),
		zap.Int("partners", len(snap.Report.Partners)),
		zap.Int("engineers", len(snap.Report.Engineers)))
	return snap, nil
}

func (s *QueryService) storageError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNoSnapshot
	}
	return fmt.Errorf("%w: %v", ErrStorageFailure, err)
}

// resolvePeriod validates period against the run's reporting periods. Zero
// selects the longest one.
func resolvePeriod(snap *models.Snapshot, period int) (int, error) {
	periods := snap.Report.Stats.ReportingPeriods
	if len(periods) == 0 {
		return 0, fmt.Errorf("%w: run %s has no reporting periods", ErrInvalidPeriod, snap.RunID)
	}
	longest := periods[0]
	for _, p := range periods {
		if p == period {
			return p, nil
		}
		if p > longest {
			longest = p
		}
	}
	if period == 0 {
		return longest, nil
	}
	return 0, fmt.Errorf("%w: %d (allowed %v)", ErrInvalidPeriod, period, periods)
}

func isLongest(snap *models.Snapshot, period int) bool {
	for _, p := range snap.Report.Stats.ReportingPeriods {
		if p > period {
			return false
		}
	}
	return true
}

func asOf(snap *models.Snapshot) civil.Date {
	d, err := civil.ParseDate(snap.DataAsOf)
	if err != nil {
		return civil.Date{}
	}
	return d
}

func inPeriod(date string, as civil.Date, period int) bool {
	d, err := civil.ParseDate(date)
	if err != nil {
		return false
	}
	return aggregate.InWindow(d, as, period)
}

// windowFor returns the engineer's stats for the period.
func windowFor(e model.EngineerProfile, period int) model.WindowStats {
	for _, w := range e.UtilizationWindows {
		if w.Days == period {
			return w
		}
	}
	return model.WindowStats{Days: period}
}

// DashboardStats returns organization totals. The longest period is the stored
// lifetime figure; shorter ones are recomputed from each engineer's window.
func (s *QueryService) DashboardStats(ctx context.Context, period int) (*DashboardView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	period, err = resolvePeriod(snap, period)
	if err != nil {
		return nil, err
	}

	stats := snap.Report.Stats
	if !isLongest(snap, period) {
		var billable float64
		var days, worked, closed int
		for _, e := range snap.Report.Engineers {
			w := windowFor(e, period)
			billable += w.BillableHours
			days += w.DaysWorked
			worked += w.TicketsWorked
			closed += w.TicketsClosed
		}
		stats.TotalBillableHours = aggregate.Round2(billable)
		stats.TotalTicketsWorked = worked
		stats.TotalTicketsClosed = closed
		stats.AvgUtilizationPct = aggregate.Pct(billable, float64(days)*s.workday)
		stats.TicketCloseRate = aggregate.Pct(float64(closed), float64(worked))
	}

	return &DashboardView{
		RunID:    snap.RunID,
		Period:   period,
		Stats:    stats,
		Insights: nonNilInsights(insights.Global(stats)),
	}, nil
}

// ListPartners returns every partner ordered by name.
func (s *QueryService) ListPartners(ctx context.Context) ([]PartnerSummary, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := partnerSummaries(snap)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Partner returns one partner with its engineers, trends and provenance. The
// monthly ticket trend counts only rows logged against this partner.
func (s *QueryService) Partner(ctx context.Context, name string, period int) (*PartnerView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	period, err = resolvePeriod(snap, period)
	if err != nil {
		return nil, err
	}
	p, ok := snap.Report.Partners[name]
	if !ok {
		return nil, fmt.Errorf("%w: partner %q", ErrNotFound, name)
	}

	view := &PartnerView{
		RunID:               snap.RunID,
		Period:              period,
		Name:                name,
		Partner:             p,
		EngineerProfiles:    make([]model.EngineerProfile, 0, len(p.Engineers)),
		EngineerUtilization: make([]NamedValue, 0, len(p.Engineers)),
	}

	as := asOf(snap)
	months := make(map[string]int)
	lifetime := make([]float64, 0, len(p.Engineers))
	for _, summary := range p.Engineers {
		e, ok := snap.Report.Engineers[summary.Email]
		if !ok {
			continue
		}
		view.EngineerProfiles = append(view.EngineerProfiles, e)
		view.EngineerUtilization = append(view.EngineerUtilization, NamedValue{
			Name:        e.Name,
			Utilization: windowFor(e, period).UtilizationPct,
		})
		lifetime = append(lifetime, e.AvgUtilizationPct)
	}
	for _, d := range p.DailyActivity {
		if inPeriod(d.Date, as, period) {
			months[d.Date[:7]] += d.TicketsWorked
		}
	}
	view.MonthlyTickets = lastMonths(months, monthlyTicketsKept)

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	assocs, err := s.storage.AssociationsForPartner(dbCtx, snap.RunID, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	view.Provenance = provenance(assocs)
	view.Insights = nonNilInsights(insights.ForPartner(p, lifetime))
	return view, nil
}

// Engineer returns one engineer's profile with period trends and provenance.
func (s *QueryService) Engineer(ctx context.Context, email string, period int) (*EngineerView, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	period, err = resolvePeriod(snap, period)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	e, ok := snap.Report.Engineers[email]
	if !ok {
		return nil, fmt.Errorf("%w: engineer %q", ErrNotFound, email)
	}

	as := asOf(snap)
	view := &EngineerView{
		RunID:            snap.RunID,
		Period:           period,
		Profile:          e,
		PeriodStats:      windowFor(e, period),
		UtilizationTrend: []TrendPoint{},
		CsatTrend:        []model.Feedback{},
	}

	trend := make([]float64, 0, len(e.RecentUtilization))
	for _, d := range e.RecentUtilization {
		if !inPeriod(d.Date, as, period) {
			continue
		}
		u := aggregate.Pct(d.BillableHours, s.workday)
		trend = append(trend, u)
		view.UtilizationTrend = append(view.UtilizationTrend, TrendPoint{Date: d.Date, Utilization: u, Tickets: d.TicketsWorked})
	}
	for _, f := range e.CsatFeedback {
		if inPeriod(f.Date, as, period) {
			view.CsatTrend = append(view.CsatTrend, f)
		}
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	assocs, err := s.storage.AssociationsForEngineer(dbCtx, snap.RunID, email)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	view.Provenance = provenance(assocs)
	view.Insights = nonNilInsights(insights.ForEngineer(e, trend))
	return view, nil
}

// ListTDLs returns every reporting manager except the unassigned placeholder.
func (s *QueryService) ListTDLs(ctx context.Context) ([]string, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, e := range snap.Report.Engineers {
		if e.TDL != "" && e.TDL != model.UnassignedManager {
			seen[e.TDL] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// TDLStats summarizes one manager's team over the period. Feedback counts 100
// when happy and 50 otherwise.
func (s *QueryService) TDLStats(ctx context.Context, tdl string, period int) (*TDLStats, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	period, err = resolvePeriod(snap, period)
	if err != nil {
		return nil, err
	}

	as := asOf(snap)
	out := &TDLStats{RunID: snap.RunID, Period: period, TDL: tdl, Engineers: []TopEngineer{}}
	partners := make(map[string]struct{})
	var billable float64
	var days, csatTotal, csatCount int
	var memberUtil []float64

	for _, email := range sortedEngineerEmails(snap) {
		e := snap.Report.Engineers[email]
		if e.TDL != tdl {
			continue
		}
		w := windowFor(e, period)
		out.TotalEngineers++
		out.TotalTickets += w.TicketsWorked
		out.TicketsClosed += w.TicketsClosed
		billable += w.BillableHours
		days += w.DaysWorked
		memberUtil = append(memberUtil, w.UtilizationPct)
		out.Engineers = append(out.Engineers, TopEngineer{Email: email, Name: e.Name, TDL: e.TDL, PeriodUtilization: w.UtilizationPct})

		for _, p := range e.Partners {
			partners[p] = struct{}{}
		}
		for _, f := range e.CsatFeedback {
			if !inPeriod(f.Date, as, period) {
				continue
			}
			csatCount++
			if strings.EqualFold(f.Rating, "happy") {
				csatTotal += 100
			} else {
				csatTotal += 50
			}
		}
	}
	if out.TotalEngineers == 0 {
		return nil, fmt.Errorf("%w: tdl %q", ErrNotFound, tdl)
	}

	out.TotalBillableHours = aggregate.Round2(billable)
	out.AvgUtilization = aggregate.Pct(billable, float64(days)*s.workday)
	out.CloseRate = aggregate.Pct(float64(out.TicketsClosed), float64(out.TotalTickets))
	if csatCount > 0 {
		out.AvgCsatScore = aggregate.Round2(float64(csatTotal) / float64(csatCount))
	}
	out.PartnersSupported = make([]string, 0, len(partners))
	for p := range partners {
		out.PartnersSupported = append(out.PartnersSupported, p)
	}
	sort.Strings(out.PartnersSupported)

	out.Insights = nonNilInsights(insights.ForTeam(insights.Team{
		Size:              out.TotalEngineers,
		AvgUtilization:    out.AvgUtilization,
		PartnerCount:      len(out.PartnersSupported),
		MemberUtilization: memberUtil,
	}))
	return out, nil
}

// TopEngineers ranks engineers by period utilization, ties broken by email.
func (s *QueryService) TopEngineers(ctx context.Context, limit, period int) ([]TopEngineer, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	period, err = resolvePeriod(snap, period)
	if err != nil {
		return nil, err
	}

	out := make([]TopEngineer, 0, len(snap.Report.Engineers))
	for email, e := range snap.Report.Engineers {
		out = append(out, TopEngineer{Email: email, Name: e.Name, TDL: e.TDL, PeriodUtilization: windowFor(e, period).UtilizationPct})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PeriodUtilization != out[j].PeriodUtilization {
			return out[i].PeriodUtilization > out[j].PeriodUtilization
		}
		return out[i].Email < out[j].Email
	})
	return truncate(out, limit), nil
}

// TopPartners ranks partners by engineer count, ties broken by name.
func (s *QueryService) TopPartners(ctx context.Context, limit int) ([]PartnerSummary, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := partnerSummaries(snap)
	sort.Slice(out, func(i, j int) bool {
		if out[i].EngineerCount != out[j].EngineerCount {
			return out[i].EngineerCount > out[j].EngineerCount
		}
		return out[i].Name < out[j].Name
	})
	return truncate(out, limit), nil
}

// Rebuild reruns the pipeline and switches reads to the new run.
func (s *QueryService) Rebuild(ctx context.Context) (*RebuildResult, error) {
	if s.runner == nil {
		return nil, fmt.Errorf("%w: no pipeline configured", ErrRebuildFailed)
	}
	res, err := s.runner.Run(ctx, RunOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRebuildFailed, err)
	}

	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.logger.Info("rebuild complete", zap.String("run_id", res.RunID))
	return &RebuildResult{RunID: res.RunID, DataAsOf: res.Report.Stats.DataAsOf}, nil
}

func partnerSummaries(snap *models.Snapshot) []PartnerSummary {
	out := make([]PartnerSummary, 0, len(snap.Report.Partners))
	for name, p := range snap.Report.Partners {
		out = append(out, PartnerSummary{
			Name:               name,
			EngineerCount:      p.EngineerCount,
			CsatScore:          p.CsatScore,
			TotalCsatResponses: p.TotalCsatResponses,
		})
	}
	return out
}

func sortedEngineerEmails(snap *models.Snapshot) []string {
	out := make([]string, 0, len(snap.Report.Engineers))
	for email := range snap.Report.Engineers {
		out = append(out, email)
	}
	sort.Strings(out)
	return out
}

func lastMonths(months map[string]int, keep int) []MonthlyTickets {
	out := make([]MonthlyTickets, 0, len(months))
	for m, n := range months {
		out = append(out, MonthlyTickets{Month: m, Tickets: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > keep {
		out = out[len(out)-keep:]
	}
	return out
}

func provenance(assocs []model.Association) []Provenance {
	out := make([]Provenance, 0, len(assocs))
	for _, a := range assocs {
		out = append(out, Provenance{
			EngineerEmail: a.EngineerEmail,
			Partner:       a.Partner,
			Heuristic:     a.Heuristic,
			Confidence:    a.Confidence,
			Roster:        a.Roster,
		})
	}
	return out
}

func truncate[T any](s []T, limit int) []T {
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func nonNilInsights(in []insights.Insight) []insights.Insight {
	if in == nil {
		return []insights.Insight{}
	}
	return in
}
