package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelabs/stride/internal/athlete"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func TestComposeNilContext(t *testing.T) {
	t.Parallel()

	got := Compose(nil)
	assert.Equal(t, basePrompt, got)
	assert.Contains(t, got, "You are Stride")
	assert.Contains(t, got, "get_recent_activities")
	assert.Contains(t, got, "not a doctor")
}

func TestComposeIdentity(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{
		DisplayName: "Maria",
		FTPWatts:    intp(250),
		WeightKG:    floatp(62.5),
	})

	assert.Contains(t, got, "## Athlete\nName: Maria\n")
	assert.Contains(t, got, "FTP: 250 W\n")
	assert.Contains(t, got, "Weight: 62.5 kg\n")
	assert.Contains(t, got, "Power-to-weight: 4.00 W/kg\n")
	// No threshold data, so no thresholds section.
	assert.NotContains(t, got, "## Fitness Thresholds")
}

func TestComposeNoPowerToWeightWithoutBoth(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{DisplayName: "Tom", FTPWatts: intp(250)})
	assert.Contains(t, got, "FTP: 250 W\n")
	assert.NotContains(t, got, "Power-to-weight")

	got = Compose(&athlete.Context{DisplayName: "Tom", WeightKG: floatp(70)})
	assert.NotContains(t, got, "Power-to-weight")
}

func TestComposeThresholds(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{
		DisplayName:        "Elena",
		RunThresholdPace:   floatp(255),
		SwimCriticalPace:   floatp(90),
		MaxHeartRate:       intp(188),
		LactateThresholdHR: intp(172),
	})

	assert.Contains(t, got, "## Fitness Thresholds\n")
	assert.Contains(t, got, "Run threshold pace: 4:15/km\n")
	assert.Contains(t, got, "Swim critical pace: 1:30/100m\n")
	assert.Contains(t, got, "Max heart rate: 188 bpm\n")
	assert.Contains(t, got, "Lactate threshold HR: 172 bpm\n")
}

func TestComposeGoals(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{
		DisplayName: "Jonas",
		ActiveGoals: []athlete.Goal{
			{
				Title:                 "Sub-3 marathon",
				GoalType:              "race",
				Priority:              athlete.PriorityA,
				TargetDate:            "2026-10-18",
				RaceEventName:         "Berlin Marathon",
				RaceDistance:          "marathon",
				RaceTargetTimeSeconds: 10770,
			},
			{Title: "Stay consistent", GoalType: "habit"},
		},
	})

	assert.Contains(t, got, "## Active Goals\n")
	assert.Contains(t, got, "- Sub-3 marathon (priority A), target date 2026-10-18, event: Berlin Marathon, distance: marathon, target time: 2:59:30\n")
	// Non-race goals carry no race detail even if fields were set.
	assert.Contains(t, got, "- Stay consistent\n")
}

func TestComposeRaceDetailOnlyForRaceGoals(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{
		DisplayName: "Jonas",
		ActiveGoals: []athlete.Goal{{
			Title:                 "General fitness",
			GoalType:              "fitness",
			RaceEventName:         "Leftover Event",
			RaceTargetTimeSeconds: 3600,
		}},
	})

	assert.NotContains(t, got, "Leftover Event")
	assert.NotContains(t, got, "target time")
}

func TestComposeConstraints(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{
		DisplayName: "Priya",
		ActiveConstraints: []athlete.Constraint{
			{
				Type:        "availability",
				Description: "Only 6 hours per week",
				StartDate:   "2026-08-01",
			},
			{
				Type:               "injury",
				Description:        "Left knee pain on impact",
				StartDate:          "2026-08-10",
				EndDate:            "2026-09-10",
				InjuryBodyPart:     "left knee",
				InjurySeverity:     athlete.SeverityModerate,
				InjuryRestrictions: []string{"running", "jumping"},
			},
			{
				Type:           "injury",
				Description:    "Mild shoulder niggle",
				InjuryBodyPart: "shoulder",
				InjurySeverity: athlete.SeverityMild,
			},
		},
	})

	assert.Contains(t, got, "## Active Constraints\n")
	assert.Contains(t, got, "- [availability] Only 6 hours per week (2026-08-01 to ongoing)\n")
	assert.Contains(t, got,
		"- [injury] Left knee pain on impact (2026-08-10 to 2026-09-10), body part: left knee, severity: moderate, restrictions: no running, no jumping\n")
	assert.Contains(t, got,
		"- [injury] Mild shoulder niggle (ongoing), body part: shoulder, severity: mild, no specific restrictions listed\n")
}

func TestComposeCheckin(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{
		DisplayName: "Ana",
		RecentCheckin: &athlete.Checkin{
			Date:         "2026-08-26",
			EnergyLevel:  intp(4),
			SleepQuality: intp(2),
			RestingHR:    intp(48),
			HRVMs:        floatp(82.4),
		},
	})

	assert.Contains(t, got, "## Today's Check-in\n")
	assert.Contains(t, got, "Date: 2026-08-26\n")
	assert.Contains(t, got, "Energy level: 4/5\n")
	assert.Contains(t, got, "Sleep quality: 2/5\n")
	assert.Contains(t, got, "Resting HR: 48 bpm\n")
	assert.Contains(t, got, "HRV: 82 ms\n")
	// Absent metrics produce no lines.
	assert.NotContains(t, got, "Stress level")
	assert.NotContains(t, got, "Muscle soreness")
}

func TestComposeSectionOrder(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{
		DisplayName:       "Full",
		MaxHeartRate:      intp(185),
		ActiveGoals:       []athlete.Goal{{Title: "Race well"}},
		ActiveConstraints: []athlete.Constraint{{Type: "travel", Description: "Away this week"}},
		RecentCheckin:     &athlete.Checkin{Date: "2026-08-26"},
	})

	sections := []string{
		"## Athlete",
		"## Fitness Thresholds",
		"## Active Goals",
		"## Active Constraints",
		"## Today's Check-in",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(got, s)
		require.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}
}

func TestComposeDeterministic(t *testing.T) {
	t.Parallel()

	ctx := &athlete.Context{
		DisplayName: "Same",
		FTPWatts:    intp(210),
		ActiveGoals: []athlete.Goal{{Title: "Hold form"}},
	}
	assert.Equal(t, Compose(ctx), Compose(ctx))
}

func TestComposeOmitsEmptySections(t *testing.T) {
	t.Parallel()

	got := Compose(&athlete.Context{DisplayName: "Bare"})

	assert.Contains(t, got, "## Athlete")
	assert.NotContains(t, got, "## Fitness Thresholds")
	assert.NotContains(t, got, "## Active Goals")
	assert.NotContains(t, got, "## Active Constraints")
	assert.NotContains(t, got, "## Today's Check-in")
}
