package tools

import (
	"encoding/json"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

// Register defines the coaching tool catalog on the Genkit instance and
// returns the tool handles in catalog order. Handlers never return an
// error: failures are encoded in the CallResult so the model can see
// them and adjust.
func Register(g *genkit.Genkit, exec *Executor) []ai.Tool {
	activities := genkit.DefineTool(g, ToolRecentActivities,
		"Fetch the athlete's completed activities from the last N days, including "+
			"sport, duration, distance, training load and intensity metrics. "+
			"Use this to understand what training the athlete has actually done recently.",
		func(tctx *ai.ToolContext, in RecentActivitiesInput) (CallResult, error) {
			return exec.Execute(tctx.Context, AthleteIDFromContext(tctx.Context), ToolRecentActivities, inputMap(in)), nil
		})

	wellness := genkit.DefineTool(g, ToolWellness,
		"Fetch daily wellness records over a date range: sleep, resting heart rate, "+
			"HRV, fatigue, soreness and subjective scores. "+
			"Use this to judge recovery state before prescribing intensity.",
		func(tctx *ai.ToolContext, in WellnessInput) (CallResult, error) {
			return exec.Execute(tctx.Context, AthleteIDFromContext(tctx.Context), ToolWellness, inputMap(in)), nil
		})

	calendar := genkit.DefineTool(g, ToolCalendarEvents,
		"Fetch planned calendar entries over a date range: scheduled workouts, races, "+
			"rest days and notes. Use this before creating or moving sessions so the "+
			"plan stays consistent.",
		func(tctx *ai.ToolContext, in CalendarEventsInput) (CallResult, error) {
			return exec.Execute(tctx.Context, AthleteIDFromContext(tctx.Context), ToolCalendarEvents, inputMap(in)), nil
		})

	create := genkit.DefineTool(g, ToolCreateEvent,
		"Create a new entry on the athlete's training calendar: a planned workout, "+
			"race, rest day or note. Date, type and title are required.",
		func(tctx *ai.ToolContext, in CreateEventInput) (CallResult, error) {
			return exec.Execute(tctx.Context, AthleteIDFromContext(tctx.Context), ToolCreateEvent, inputMap(in)), nil
		})

	update := genkit.DefineTool(g, ToolUpdateEvent,
		"Update an existing calendar entry by its event_id. Supply only the fields "+
			"to change, plus the event_id.",
		func(tctx *ai.ToolContext, in UpdateEventInput) (CallResult, error) {
			return exec.Execute(tctx.Context, AthleteIDFromContext(tctx.Context), ToolUpdateEvent, inputMap(in)), nil
		})

	return []ai.Tool{activities, wellness, calendar, create, update}
}

// inputMap converts a typed tool input into the untyped map the
// executor validates. omitempty tags drop absent fields on the way.
func inputMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}
