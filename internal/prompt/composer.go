// Package prompt composes the system instructions sent to the coaching model.
//
// Compose is a pure function over the athlete context: the same input
// always yields the same instruction text, which keeps the agentic loop's
// transition function testable.
package prompt

import (
	"fmt"
	"strings"

	"github.com/stridelabs/stride/internal/athlete"
)

// basePrompt is the fixed instruction block sent on every request,
// personalized or not.
const basePrompt = `You are Stride, an endurance-sports coaching assistant for cyclists, runners, and triathletes.

You help athletes plan training, interpret workouts and wellness data, and prepare for races.

Available tools:
- get_recent_activities: fetch the athlete's recent completed activities
- get_wellness_data: fetch daily wellness and readiness metrics
- get_calendar_events: fetch planned workouts and races from the training calendar
- create_calendar_event: add a planned workout, race, or note to the calendar
- update_calendar_event: modify an existing calendar event

Safety guidelines:
- Never prescribe training that conflicts with an active injury constraint.
- If the athlete reports pain, chest discomfort, or dizziness, advise stopping and consulting a medical professional. You are not a doctor.
- Respect stated time and equipment limitations.
- Prefer gradual load progression; flag sudden spikes in training load.

Injury handling:
- When an injury constraint is active, only suggest activities outside its restriction list.
- For moderate or severe injuries, recommend professional assessment before returning to full training.`

// Compose renders the system prompt. A nil context yields the base
// instruction block; otherwise athlete sections follow in fixed order.
// Sections with no data are omitted entirely.
func Compose(ctx *athlete.Context) string {
	if ctx == nil {
		return basePrompt
	}

	var b strings.Builder
	b.WriteString(basePrompt)

	writeIdentity(&b, ctx)
	writeThresholds(&b, ctx)
	writeGoals(&b, ctx.ActiveGoals)
	writeConstraints(&b, ctx.ActiveConstraints)
	writeCheckin(&b, ctx.RecentCheckin)

	return b.String()
}

func writeIdentity(b *strings.Builder, ctx *athlete.Context) {
	b.WriteString("\n\n## Athlete\n")
	fmt.Fprintf(b, "Name: %s\n", ctx.DisplayName)
	if ctx.FTPWatts != nil {
		fmt.Fprintf(b, "FTP: %d W\n", *ctx.FTPWatts)
	}
	if ctx.WeightKG != nil {
		fmt.Fprintf(b, "Weight: %.1f kg\n", *ctx.WeightKG)
	}
	if ctx.FTPWatts != nil && ctx.WeightKG != nil && *ctx.WeightKG > 0 {
		fmt.Fprintf(b, "Power-to-weight: %.2f W/kg\n", float64(*ctx.FTPWatts) / *ctx.WeightKG)
	}
}

func writeThresholds(b *strings.Builder, ctx *athlete.Context) {
	if !ctx.HasThresholds() {
		return
	}
	b.WriteString("\n## Fitness Thresholds\n")
	if ctx.RunThresholdPace != nil {
		fmt.Fprintf(b, "Run threshold pace: %s\n", Pace(*ctx.RunThresholdPace))
	}
	if ctx.SwimCriticalPace != nil {
		fmt.Fprintf(b, "Swim critical pace: %s\n", SwimPace(*ctx.SwimCriticalPace))
	}
	if ctx.MaxHeartRate != nil {
		fmt.Fprintf(b, "Max heart rate: %d bpm\n", *ctx.MaxHeartRate)
	}
	if ctx.LactateThresholdHR != nil {
		fmt.Fprintf(b, "Lactate threshold HR: %d bpm\n", *ctx.LactateThresholdHR)
	}
}

func writeGoals(b *strings.Builder, goals []athlete.Goal) {
	if len(goals) == 0 {
		return
	}
	b.WriteString("\n## Active Goals\n")
	for _, g := range goals {
		fmt.Fprintf(b, "- %s", g.Title)
		if g.Priority != "" {
			fmt.Fprintf(b, " (priority %s)", g.Priority)
		}
		if g.TargetDate != "" {
			fmt.Fprintf(b, ", target date %s", g.TargetDate)
		}
		// Race detail only applies to race goals.
		if g.GoalType == "race" {
			if g.RaceEventName != "" {
				fmt.Fprintf(b, ", event: %s", g.RaceEventName)
			}
			if g.RaceDistance != "" {
				fmt.Fprintf(b, ", distance: %s", g.RaceDistance)
			}
			if g.RaceTargetTimeSeconds > 0 {
				fmt.Fprintf(b, ", target time: %s", RaceTime(g.RaceTargetTimeSeconds))
			}
		}
		b.WriteString("\n")
	}
}

func writeConstraints(b *strings.Builder, constraints []athlete.Constraint) {
	if len(constraints) == 0 {
		return
	}
	b.WriteString("\n## Active Constraints\n")
	for _, c := range constraints {
		fmt.Fprintf(b, "- %s\n", formatConstraint(c))
	}
}

// formatConstraint renders one constraint line. Non-injury constraints
// render as "[type] description (window)"; injury constraints add body
// part, severity, and the restriction list.
func formatConstraint(c athlete.Constraint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s (%s)", c.Type, c.Description, constraintWindow(c))

	if c.Type != "injury" {
		return sb.String()
	}

	if c.InjuryBodyPart != "" {
		fmt.Fprintf(&sb, ", body part: %s", c.InjuryBodyPart)
	}
	if c.InjurySeverity != "" {
		fmt.Fprintf(&sb, ", severity: %s", c.InjurySeverity)
	}
	if len(c.InjuryRestrictions) == 0 {
		sb.WriteString(", no specific restrictions listed")
	} else {
		restrictions := make([]string, len(c.InjuryRestrictions))
		for i, r := range c.InjuryRestrictions {
			restrictions[i] = "no " + r
		}
		fmt.Fprintf(&sb, ", restrictions: %s", strings.Join(restrictions, ", "))
	}
	return sb.String()
}

func constraintWindow(c athlete.Constraint) string {
	end := c.EndDate
	if end == "" {
		end = "ongoing"
	}
	if c.StartDate == "" {
		return end
	}
	return c.StartDate + " to " + end
}

func writeCheckin(b *strings.Builder, checkin *athlete.Checkin) {
	if checkin == nil {
		return
	}
	b.WriteString("\n## Today's Check-in\n")
	fmt.Fprintf(b, "Date: %s\n", checkin.Date)
	if checkin.EnergyLevel != nil {
		fmt.Fprintf(b, "Energy level: %d/5\n", *checkin.EnergyLevel)
	}
	if checkin.SleepQuality != nil {
		fmt.Fprintf(b, "Sleep quality: %d/5\n", *checkin.SleepQuality)
	}
	if checkin.StressLevel != nil {
		fmt.Fprintf(b, "Stress level: %d/5\n", *checkin.StressLevel)
	}
	if checkin.MuscleSoreness != nil {
		fmt.Fprintf(b, "Muscle soreness: %d/5\n", *checkin.MuscleSoreness)
	}
	if checkin.RestingHR != nil {
		fmt.Fprintf(b, "Resting HR: %d bpm\n", *checkin.RestingHR)
	}
	if checkin.HRVMs != nil {
		fmt.Fprintf(b, "HRV: %.0f ms\n", *checkin.HRVMs)
	}
}
