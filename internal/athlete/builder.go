package athlete

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Sentinel errors for context building.
var (
	// ErrNotFound indicates the athlete has no profile row.
	ErrNotFound = errors.New("athlete not found")

	// ErrFetchFailed indicates the profile lookup itself failed.
	ErrFetchFailed = errors.New("fetching athlete context failed")
)

// dateLayout is the wire format for calendar dates.
const dateLayout = "2006-01-02"

// Reader is the store surface the builder needs. Defined here, by the
// consumer, so tests can substitute fakes.
type Reader interface {
	Profile(ctx context.Context, athleteID string) (*ProfileRow, error)
	Goals(ctx context.Context, athleteID string) ([]GoalRow, error)
	Constraints(ctx context.Context, athleteID string) ([]ConstraintRow, error)
	Checkin(ctx context.Context, athleteID string, day time.Time) (*CheckinRow, error)
}

// Options tunes a single Build call.
type Options struct {
	// IncludeCheckin controls whether today's check-in is looked up.
	// Skipping it saves a query when the caller doesn't need readiness data.
	IncludeCheckin bool
}

// Builder assembles a Context from the four store lookups.
//
// Goal, constraint, and check-in lookups are enrichment: on error the
// corresponding section degrades to empty and a diagnostic is logged.
// Only the profile lookup is fatal.
type Builder struct {
	store  Reader
	logger *slog.Logger

	// now is swappable for tests; defaults to time.Now.
	now func() time.Time
}

// NewBuilder creates a Builder over store.
func NewBuilder(store Reader, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{store: store, logger: logger, now: time.Now}
}

// Build gathers profile, goals, constraints, and today's check-in for
// athleteID. The four lookups run concurrently and Build returns only
// after all of them settle. "Today" is computed once in UTC and shared
// across the goal, constraint, and check-in filters.
func (b *Builder) Build(ctx context.Context, athleteID string, opts Options) (*Context, error) {
	today := b.today()

	type profileResult struct {
		row *ProfileRow
		err error
	}
	type goalsResult struct {
		rows []GoalRow
		err  error
	}
	type constraintsResult struct {
		rows []ConstraintRow
		err  error
	}
	type checkinResult struct {
		row *CheckinRow
		err error
	}

	// Buffered channels so goroutines never block if the caller bails out
	// early on context cancellation.
	profileCh := make(chan profileResult, 1)
	goalsCh := make(chan goalsResult, 1)
	constraintsCh := make(chan constraintsResult, 1)
	checkinCh := make(chan checkinResult, 1)

	go func() {
		row, err := b.store.Profile(ctx, athleteID)
		profileCh <- profileResult{row, err}
	}()
	go func() {
		rows, err := b.store.Goals(ctx, athleteID)
		goalsCh <- goalsResult{rows, err}
	}()
	go func() {
		rows, err := b.store.Constraints(ctx, athleteID)
		constraintsCh <- constraintsResult{rows, err}
	}()
	go func() {
		if !opts.IncludeCheckin {
			checkinCh <- checkinResult{}
			return
		}
		row, err := b.store.Checkin(ctx, athleteID, today)
		checkinCh <- checkinResult{row, err}
	}()

	pr := <-profileCh
	gr := <-goalsCh
	cr := <-constraintsCh
	kr := <-checkinCh

	if pr.err != nil {
		if errors.Is(pr.err, ErrProfileNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, athleteID)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, pr.err)
	}

	actx := profileContext(pr.row)

	if gr.err != nil {
		b.logger.Warn("goal lookup failed, continuing without goals",
			"athlete_id", athleteID, "error", gr.err)
	} else {
		actx.ActiveGoals = buildGoals(gr.rows)
	}

	if cr.err != nil {
		b.logger.Warn("constraint lookup failed, continuing without constraints",
			"athlete_id", athleteID, "error", cr.err)
	} else {
		actx.ActiveConstraints = buildConstraints(cr.rows, today)
	}

	if kr.err != nil {
		b.logger.Warn("checkin lookup failed, continuing without checkin",
			"athlete_id", athleteID, "error", kr.err)
	} else if kr.row != nil {
		actx.RecentCheckin = buildCheckin(kr.row)
	}

	return actx, nil
}

// today returns midnight UTC of the current day.
func (b *Builder) today() time.Time {
	y, m, d := b.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func profileContext(row *ProfileRow) *Context {
	return &Context{
		AthleteID:          row.ID,
		DisplayName:        row.DisplayName,
		FTPWatts:           row.FTPWatts,
		WeightKG:           row.WeightKG,
		RunThresholdPace:   row.RunThresholdPace,
		SwimCriticalPace:   row.SwimCriticalPace,
		MaxHeartRate:       row.MaxHeartRate,
		LactateThresholdHR: row.LactateThresholdHR,
		ActiveGoals:        []Goal{},
		ActiveConstraints:  []Constraint{},
	}
}

func buildGoals(rows []GoalRow) []Goal {
	goals := make([]Goal, 0, len(rows))
	for _, r := range rows {
		g := Goal{
			ID:       r.ID,
			Title:    r.Title,
			GoalType: deref(r.GoalType),
		}
		if r.TargetDate != nil {
			g.TargetDate = r.TargetDate.Format(dateLayout)
		}
		// Unknown priority values become absent, never guessed.
		if r.Priority != nil {
			if p, ok := ParsePriority(*r.Priority); ok {
				g.Priority = p
			}
		}
		g.RaceEventName = deref(r.RaceEventName)
		g.RaceDistance = deref(r.RaceDistance)
		if r.RaceTargetTimeSeconds != nil {
			g.RaceTargetTimeSeconds = *r.RaceTargetTimeSeconds
		}
		goals = append(goals, g)
	}
	return goals
}

// buildConstraints keeps rows whose window still covers today: an active
// constraint with no end date is ongoing, one with end_date >= today is
// still in force.
func buildConstraints(rows []ConstraintRow, today time.Time) []Constraint {
	constraints := make([]Constraint, 0, len(rows))
	for _, r := range rows {
		if r.EndDate != nil && r.EndDate.Before(today) {
			continue
		}
		c := Constraint{
			ID:                 r.ID,
			Type:               r.Type,
			Description:        r.Description,
			InjuryBodyPart:     deref(r.InjuryBodyPart),
			InjuryRestrictions: r.InjuryRestrictions,
		}
		if r.StartDate != nil {
			c.StartDate = r.StartDate.Format(dateLayout)
		}
		if r.EndDate != nil {
			c.EndDate = r.EndDate.Format(dateLayout)
		}
		if r.InjurySeverity != nil {
			if sev, ok := ParseSeverity(*r.InjurySeverity); ok {
				c.InjurySeverity = sev
			}
		}
		constraints = append(constraints, c)
	}
	return constraints
}

func buildCheckin(row *CheckinRow) *Checkin {
	return &Checkin{
		Date:           row.Date.Format(dateLayout),
		EnergyLevel:    row.EnergyLevel,
		SleepQuality:   row.SleepQuality,
		StressLevel:    row.StressLevel,
		MuscleSoreness: row.MuscleSoreness,
		RestingHR:      row.RestingHR,
		HRVMs:          row.HRVMs,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
