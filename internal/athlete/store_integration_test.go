package athlete_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelabs/stride/internal/athlete"
	"github.com/stridelabs/stride/internal/log"
	"github.com/stridelabs/stride/internal/testutil"
)

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO athletes (id, display_name, ftp_watts, weight_kg, max_heart_rate)
		VALUES ('a1', 'Maria', 240, 62.5, 188)
	`)
	require.NoError(t, err)

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO goals (athlete_id, title, goal_type, status, target_date, priority,
			race_event_name, race_distance, race_target_time_seconds)
		VALUES
			('a1', 'Sub-3 marathon', 'race', 'active', '2026-10-18', 'A',
				'Berlin Marathon', 'marathon', 10770),
			('a1', 'Old goal', 'race', 'completed', NULL, 'B', NULL, NULL, NULL)
	`)
	require.NoError(t, err)

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO constraints (athlete_id, constraint_type, description, status,
			start_date, end_date, injury_body_part, injury_severity, injury_restrictions)
		VALUES
			('a1', 'injury', 'Knee pain', 'active',
				'2026-08-10', '2026-12-31', 'left knee', 'moderate', ARRAY['running','jumping']),
			('a1', 'availability', 'Resolved conflict', 'resolved',
				NULL, NULL, NULL, NULL, NULL)
	`)
	require.NoError(t, err)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO checkins (athlete_id, checkin_date, energy_level, hrv_ms)
		VALUES ('a1', $1, 4, 82.4)
	`, today)
	require.NoError(t, err)

	store := athlete.NewStore(db.Pool, log.NewNop())

	t.Run("profile", func(t *testing.T) {
		row, err := store.Profile(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, "Maria", row.DisplayName)
		require.NotNil(t, row.FTPWatts)
		assert.Equal(t, 240, *row.FTPWatts)
		require.NotNil(t, row.MaxHeartRate)
		assert.Equal(t, 188, *row.MaxHeartRate)
		assert.Nil(t, row.RunThresholdPace)
	})

	t.Run("profile missing", func(t *testing.T) {
		_, err := store.Profile(ctx, "ghost")
		assert.ErrorIs(t, err, athlete.ErrProfileNotFound)
	})

	t.Run("goals filter status", func(t *testing.T) {
		rows, err := store.Goals(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Sub-3 marathon", rows[0].Title)
		require.NotNil(t, rows[0].RaceTargetTimeSeconds)
		assert.Equal(t, 10770, *rows[0].RaceTargetTimeSeconds)
	})

	t.Run("constraints filter status", func(t *testing.T) {
		rows, err := store.Constraints(ctx, "a1")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "injury", rows[0].Type)
		assert.Equal(t, []string{"running", "jumping"}, rows[0].InjuryRestrictions)
	})

	t.Run("checkin by day", func(t *testing.T) {
		row, err := store.Checkin(ctx, "a1", today)
		require.NoError(t, err)
		require.NotNil(t, row)
		require.NotNil(t, row.EnergyLevel)
		assert.Equal(t, 4, *row.EnergyLevel)

		none, err := store.Checkin(ctx, "a1", today.AddDate(0, 0, -1))
		require.NoError(t, err)
		assert.Nil(t, none)
	})

	t.Run("build end to end", func(t *testing.T) {
		builder := athlete.NewBuilder(store, log.NewNop())
		actx, err := builder.Build(ctx, "a1", athlete.Options{IncludeCheckin: true})
		require.NoError(t, err)

		assert.Equal(t, "Maria", actx.DisplayName)
		assert.Len(t, actx.ActiveGoals, 1)
		assert.Len(t, actx.ActiveConstraints, 1)
		require.NotNil(t, actx.RecentCheckin)
	})
}
