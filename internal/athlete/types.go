// Package athlete assembles the per-request coaching context: profile,
// active goals, active constraints, and today's readiness check-in.
package athlete

// Priority is a race/goal priority letter.
type Priority string

// Goal priorities. A is the season's key race.
const (
	PriorityA Priority = "A"
	PriorityB Priority = "B"
	PriorityC Priority = "C"
)

// ParsePriority validates a raw priority value against the closed set.
// Unknown values report false; callers treat them as absent, never guessed.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(s) {
	case PriorityA, PriorityB, PriorityC:
		return Priority(s), true
	}
	return "", false
}

// Severity grades an injury constraint.
type Severity string

// Injury severities.
const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// ParseSeverity validates a raw severity value against the closed set.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(s) {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return Severity(s), true
	}
	return "", false
}

// Goal is an active training goal, optionally tied to a race.
type Goal struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	GoalType              string   `json:"goal_type,omitempty"`
	TargetDate            string   `json:"target_date,omitempty"` // YYYY-MM-DD
	Priority              Priority `json:"priority,omitempty"`
	RaceEventName         string   `json:"race_event_name,omitempty"`
	RaceDistance          string   `json:"race_distance,omitempty"`
	RaceTargetTimeSeconds int      `json:"race_target_time_seconds,omitempty"`
}

// Constraint is a training limitation such as an injury or an
// availability window.
type Constraint struct {
	ID                 string   `json:"id"`
	Type               string   `json:"type"`
	Description        string   `json:"description"`
	StartDate          string   `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate            string   `json:"end_date,omitempty"`   // YYYY-MM-DD
	InjuryBodyPart     string   `json:"injury_body_part,omitempty"`
	InjurySeverity     Severity `json:"injury_severity,omitempty"`
	InjuryRestrictions []string `json:"injury_restrictions,omitempty"`
}

// Checkin is one day's subjective and physiological readiness snapshot.
// At most one exists per athlete per calendar day.
type Checkin struct {
	Date           string   `json:"date"` // YYYY-MM-DD
	EnergyLevel    *int     `json:"energy_level,omitempty"`
	SleepQuality   *int     `json:"sleep_quality,omitempty"`
	StressLevel    *int     `json:"stress_level,omitempty"`
	MuscleSoreness *int     `json:"muscle_soreness,omitempty"`
	RestingHR      *int     `json:"resting_hr,omitempty"`
	HRVMs          *float64 `json:"hrv_ms,omitempty"`
}

// Context is the full personalization bundle handed to the prompt composer.
// It is built fresh per request and never persisted by the orchestrator.
type Context struct {
	AthleteID   string `json:"athlete_id"`
	DisplayName string `json:"display_name"`

	// Fitness thresholds; nil means unknown.
	FTPWatts           *int     `json:"ftp_watts,omitempty"`
	WeightKG           *float64 `json:"weight_kg,omitempty"`
	RunThresholdPace   *float64 `json:"run_threshold_pace,omitempty"` // sec/km
	SwimCriticalPace   *float64 `json:"swim_critical_pace,omitempty"` // sec/100m
	MaxHeartRate       *int     `json:"max_heart_rate,omitempty"`
	LactateThresholdHR *int     `json:"lactate_threshold_hr,omitempty"`

	ActiveGoals       []Goal       `json:"active_goals"`
	ActiveConstraints []Constraint `json:"active_constraints"`
	RecentCheckin     *Checkin     `json:"recent_checkin,omitempty"`
}

// HasThresholds reports whether any of the four threshold fields
// (run pace, swim pace, max HR, LTHR) is present. FTP and weight render
// with the identity metrics instead.
func (c *Context) HasThresholds() bool {
	return c.RunThresholdPace != nil || c.SwimCriticalPace != nil ||
		c.MaxHeartRate != nil || c.LactateThresholdHR != nil
}

// Sanitized returns a copy of the context with enumerated fields
// validated against their closed sets, matching what the builder
// produces from the store: unknown values become absent, never coerced.
// The receiver is not modified.
func (c *Context) Sanitized() *Context {
	out := *c
	if len(c.ActiveGoals) > 0 {
		out.ActiveGoals = make([]Goal, len(c.ActiveGoals))
		copy(out.ActiveGoals, c.ActiveGoals)
		for i := range out.ActiveGoals {
			if _, ok := ParsePriority(string(out.ActiveGoals[i].Priority)); !ok {
				out.ActiveGoals[i].Priority = ""
			}
		}
	}
	if len(c.ActiveConstraints) > 0 {
		out.ActiveConstraints = make([]Constraint, len(c.ActiveConstraints))
		copy(out.ActiveConstraints, c.ActiveConstraints)
		for i := range out.ActiveConstraints {
			if _, ok := ParseSeverity(string(out.ActiveConstraints[i].InjurySeverity)); !ok {
				out.ActiveConstraints[i].InjurySeverity = ""
			}
		}
	}
	return &out
}
