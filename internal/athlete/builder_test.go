package athlete

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelabs/stride/internal/log"
)

type fakeReader struct {
	profile    *ProfileRow
	profileErr error

	goals    []GoalRow
	goalsErr error

	constraints    []ConstraintRow
	constraintsErr error

	checkin       *CheckinRow
	checkinErr    error
	checkinCalled bool
	checkinDay    time.Time
}

func (f *fakeReader) Profile(context.Context, string) (*ProfileRow, error) {
	return f.profile, f.profileErr
}

func (f *fakeReader) Goals(context.Context, string) ([]GoalRow, error) {
	return f.goals, f.goalsErr
}

func (f *fakeReader) Constraints(context.Context, string) ([]ConstraintRow, error) {
	return f.constraints, f.constraintsErr
}

func (f *fakeReader) Checkin(_ context.Context, _ string, day time.Time) (*CheckinRow, error) {
	f.checkinCalled = true
	f.checkinDay = day
	return f.checkin, f.checkinErr
}

func strp(s string) *string { return &s }

func datep(s string) *time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &d
}

func newTestBuilder(r Reader) *Builder {
	b := NewBuilder(r, log.NewNop())
	b.now = func() time.Time {
		return time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)
	}
	return b
}

func baseProfile() *ProfileRow {
	ftp := 240
	weight := 70.0
	return &ProfileRow{
		ID:          "a1",
		DisplayName: "Maria",
		FTPWatts:    &ftp,
		WeightKG:    &weight,
	}
}

func TestBuildProfileOnly(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(&fakeReader{profile: baseProfile()})

	ctx, err := b.Build(context.Background(), "a1", Options{})
	require.NoError(t, err)

	assert.Equal(t, "a1", ctx.AthleteID)
	assert.Equal(t, "Maria", ctx.DisplayName)
	require.NotNil(t, ctx.FTPWatts)
	assert.Equal(t, 240, *ctx.FTPWatts)
	assert.Empty(t, ctx.ActiveGoals)
	assert.Empty(t, ctx.ActiveConstraints)
	assert.Nil(t, ctx.RecentCheckin)
}

func TestBuildProfileMissing(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(&fakeReader{profileErr: ErrProfileNotFound})

	_, err := b.Build(context.Background(), "ghost", Options{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildProfileFetchFailure(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(&fakeReader{profileErr: errors.New("connection refused")})

	_, err := b.Build(context.Background(), "a1", Options{})
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestBuildDegradesOnEnrichmentFailures(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(&fakeReader{
		profile:        baseProfile(),
		goalsErr:       errors.New("goals query failed"),
		constraintsErr: errors.New("constraints query failed"),
		checkinErr:     errors.New("checkin query failed"),
	})

	ctx, err := b.Build(context.Background(), "a1", Options{IncludeCheckin: true})
	require.NoError(t, err)

	assert.Equal(t, "Maria", ctx.DisplayName)
	assert.Empty(t, ctx.ActiveGoals)
	assert.Empty(t, ctx.ActiveConstraints)
	assert.Nil(t, ctx.RecentCheckin)
}

func TestBuildGoalPriorityClosedSet(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(&fakeReader{
		profile: baseProfile(),
		goals: []GoalRow{
			{ID: "g1", Title: "Key race", Priority: strp("A")},
			{ID: "g2", Title: "Odd priority", Priority: strp("S")},
			{ID: "g3", Title: "No priority"},
		},
	})

	ctx, err := b.Build(context.Background(), "a1", Options{})
	require.NoError(t, err)
	require.Len(t, ctx.ActiveGoals, 3)

	assert.Equal(t, PriorityA, ctx.ActiveGoals[0].Priority)
	// An out-of-set priority is dropped, not passed through.
	assert.Empty(t, ctx.ActiveGoals[1].Priority)
	assert.Empty(t, ctx.ActiveGoals[2].Priority)
}

func TestBuildConstraintDateWindow(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(&fakeReader{
		profile: baseProfile(),
		constraints: []ConstraintRow{
			{ID: "c1", Type: "injury", Description: "expired", EndDate: datep("2026-08-25")},
			{ID: "c2", Type: "injury", Description: "ends today", EndDate: datep("2026-08-26")},
			{ID: "c3", Type: "injury", Description: "ends later", EndDate: datep("2026-09-30")},
			{ID: "c4", Type: "availability", Description: "open-ended"},
		},
	})

	ctx, err := b.Build(context.Background(), "a1", Options{})
	require.NoError(t, err)
	require.Len(t, ctx.ActiveConstraints, 3)

	ids := []string{ctx.ActiveConstraints[0].ID, ctx.ActiveConstraints[1].ID, ctx.ActiveConstraints[2].ID}
	assert.Equal(t, []string{"c2", "c3", "c4"}, ids)
}

func TestBuildConstraintSeverityClosedSet(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(&fakeReader{
		profile: baseProfile(),
		constraints: []ConstraintRow{
			{ID: "c1", Type: "injury", Description: "knee", InjurySeverity: strp("moderate")},
			{ID: "c2", Type: "injury", Description: "ankle", InjurySeverity: strp("catastrophic")},
		},
	})

	ctx, err := b.Build(context.Background(), "a1", Options{})
	require.NoError(t, err)
	require.Len(t, ctx.ActiveConstraints, 2)

	assert.Equal(t, SeverityModerate, ctx.ActiveConstraints[0].InjurySeverity)
	assert.Empty(t, ctx.ActiveConstraints[1].InjurySeverity)
}

func TestBuildCheckinOption(t *testing.T) {
	t.Parallel()

	energy := 4
	reader := &fakeReader{
		profile: baseProfile(),
		checkin: &CheckinRow{
			Date:        time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC),
			EnergyLevel: &energy,
		},
	}
	b := newTestBuilder(reader)

	ctx, err := b.Build(context.Background(), "a1", Options{})
	require.NoError(t, err)
	assert.False(t, reader.checkinCalled)
	assert.Nil(t, ctx.RecentCheckin)

	ctx, err = b.Build(context.Background(), "a1", Options{IncludeCheckin: true})
	require.NoError(t, err)
	assert.True(t, reader.checkinCalled)
	assert.Equal(t, time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), reader.checkinDay)
	require.NotNil(t, ctx.RecentCheckin)
	assert.Equal(t, "2026-08-26", ctx.RecentCheckin.Date)
	require.NotNil(t, ctx.RecentCheckin.EnergyLevel)
	assert.Equal(t, 4, *ctx.RecentCheckin.EnergyLevel)
}

func TestBuildNoCheckinRow(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(&fakeReader{profile: baseProfile()})

	ctx, err := b.Build(context.Background(), "a1", Options{IncludeCheckin: true})
	require.NoError(t, err)
	assert.Nil(t, ctx.RecentCheckin)
}

func TestParsePriority(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"A", "B", "C"} {
		p, ok := ParsePriority(valid)
		assert.True(t, ok)
		assert.Equal(t, Priority(valid), p)
	}
	for _, invalid := range []string{"", "a", "D", "AA"} {
		_, ok := ParsePriority(invalid)
		assert.False(t, ok, "expected %q to be rejected", invalid)
	}
}

func TestParseSeverity(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"mild", "moderate", "severe"} {
		s, ok := ParseSeverity(valid)
		assert.True(t, ok)
		assert.Equal(t, Severity(valid), s)
	}
	for _, invalid := range []string{"", "Mild", "critical"} {
		_, ok := ParseSeverity(invalid)
		assert.False(t, ok, "expected %q to be rejected", invalid)
	}
}

func TestContextSanitized(t *testing.T) {
	t.Parallel()

	in := &Context{
		DisplayName: "Rae",
		ActiveGoals: []Goal{
			{ID: "g1", Priority: PriorityA},
			{ID: "g2", Priority: "S"},
		},
		ActiveConstraints: []Constraint{
			{ID: "c1", Type: "injury", InjurySeverity: SeverityMild},
			{ID: "c2", Type: "injury", InjurySeverity: "catastrophic"},
		},
	}

	out := in.Sanitized()

	assert.Equal(t, PriorityA, out.ActiveGoals[0].Priority)
	assert.Empty(t, out.ActiveGoals[1].Priority)
	assert.Equal(t, SeverityMild, out.ActiveConstraints[0].InjurySeverity)
	assert.Empty(t, out.ActiveConstraints[1].InjurySeverity)

	// The input is untouched.
	assert.Equal(t, Priority("S"), in.ActiveGoals[1].Priority)
	assert.Equal(t, Severity("catastrophic"), in.ActiveConstraints[1].InjurySeverity)
}

func TestHasThresholds(t *testing.T) {
	t.Parallel()

	hr := 185
	pace := 255.0

	assert.False(t, (&Context{}).HasThresholds())
	// FTP and weight alone do not count as thresholds.
	ftp := 250
	weight := 70.0
	assert.False(t, (&Context{FTPWatts: &ftp, WeightKG: &weight}).HasThresholds())

	assert.True(t, (&Context{MaxHeartRate: &hr}).HasThresholds())
	assert.True(t, (&Context{RunThresholdPace: &pace}).HasThresholds())
	assert.True(t, (&Context{SwimCriticalPace: &pace}).HasThresholds())
	assert.True(t, (&Context{LactateThresholdHR: &hr}).HasThresholds())
}
