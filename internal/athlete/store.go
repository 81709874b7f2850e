package athlete

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProfileNotFound indicates no profile row exists for the athlete.
var ErrProfileNotFound = errors.New("athlete profile not found")

// ProfileRow is the raw profile record as stored.
type ProfileRow struct {
	ID                 string
	DisplayName        string
	FTPWatts           *int
	WeightKG           *float64
	RunThresholdPace   *float64
	SwimCriticalPace   *float64
	MaxHeartRate       *int
	LactateThresholdHR *int
}

// GoalRow is the raw goal record as stored. Priority is unvalidated here;
// the builder applies the closed-set check.
type GoalRow struct {
	ID                    string
	Title                 string
	GoalType              *string
	TargetDate            *time.Time
	Priority              *string
	RaceEventName         *string
	RaceDistance          *string
	RaceTargetTimeSeconds *int
}

// ConstraintRow is the raw constraint record as stored, with status
// already filtered to active in SQL. Date-window filtering and severity
// validation happen in the builder.
type ConstraintRow struct {
	ID                 string
	Type               string
	Description        string
	StartDate          *time.Time
	EndDate            *time.Time
	InjuryBodyPart     *string
	InjurySeverity     *string
	InjuryRestrictions []string
}

// CheckinRow is the raw check-in record as stored.
type CheckinRow struct {
	Date           time.Time
	EnergyLevel    *int
	SleepQuality   *int
	StressLevel    *int
	MuscleSoreness *int
	RestingHR      *int
	HRVMs          *float64
}

// Store provides read-only lookups over the athlete tables.
// It is safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore creates a Store backed by pool.
func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// Profile returns the athlete's profile row, or ErrProfileNotFound.
func (s *Store) Profile(ctx context.Context, athleteID string) (*ProfileRow, error) {
	const q = `
		SELECT id, display_name, ftp_watts, weight_kg, run_threshold_pace,
		       swim_critical_pace, max_heart_rate, lactate_threshold_hr
		FROM athletes WHERE id = $1`

	var row ProfileRow
	err := s.pool.QueryRow(ctx, q, athleteID).Scan(
		&row.ID, &row.DisplayName, &row.FTPWatts, &row.WeightKG,
		&row.RunThresholdPace, &row.SwimCriticalPace,
		&row.MaxHeartRate, &row.LactateThresholdHR,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, athleteID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return &row, nil
}

// Goals returns the athlete's goals with status "active".
func (s *Store) Goals(ctx context.Context, athleteID string) ([]GoalRow, error) {
	const q = `
		SELECT id, title, goal_type, target_date, priority,
		       race_event_name, race_distance, race_target_time_seconds
		FROM goals
		WHERE athlete_id = $1 AND status = 'active'
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()

	var out []GoalRow
	for rows.Next() {
		var g GoalRow
		if err := rows.Scan(&g.ID, &g.Title, &g.GoalType, &g.TargetDate,
			&g.Priority, &g.RaceEventName, &g.RaceDistance,
			&g.RaceTargetTimeSeconds); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading goals: %w", err)
	}
	return out, nil
}

// Constraints returns the athlete's constraints with status "active".
// The end-date window is evaluated by the builder so the cutoff date is
// shared with the other per-request filters.
func (s *Store) Constraints(ctx context.Context, athleteID string) ([]ConstraintRow, error) {
	const q = `
		SELECT id, constraint_type, description, start_date, end_date,
		       injury_body_part, injury_severity, injury_restrictions
		FROM constraints
		WHERE athlete_id = $1 AND status = 'active'
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, q, athleteID)
	if err != nil {
		return nil, fmt.Errorf("querying constraints: %w", err)
	}
	defer rows.Close()

	var out []ConstraintRow
	for rows.Next() {
		var c ConstraintRow
		if err := rows.Scan(&c.ID, &c.Type, &c.Description, &c.StartDate,
			&c.EndDate, &c.InjuryBodyPart, &c.InjurySeverity,
			&c.InjuryRestrictions); err != nil {
			return nil, fmt.Errorf("scanning constraint: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading constraints: %w", err)
	}
	return out, nil
}

// Checkin returns the athlete's check-in for day, or nil when none exists.
func (s *Store) Checkin(ctx context.Context, athleteID string, day time.Time) (*CheckinRow, error) {
	const q = `
		SELECT checkin_date, energy_level, sleep_quality, stress_level,
		       muscle_soreness, resting_hr, hrv_ms
		FROM checkins
		WHERE athlete_id = $1 AND checkin_date = $2`

	var row CheckinRow
	err := s.pool.QueryRow(ctx, q, athleteID, day).Scan(
		&row.Date, &row.EnergyLevel, &row.SleepQuality, &row.StressLevel,
		&row.MuscleSoreness, &row.RestingHR, &row.HRVMs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying checkin: %w", err)
	}
	return &row, nil
}
