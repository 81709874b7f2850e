package tools

// Input schemas for the coaching tools. The json tags and descriptions
// become the parameter schema the model sees, so descriptions spell out
// formats and defaults. Event fields accept both the coaching names
// (date, title, duration_seconds, distance_meters, training_load) and
// the calendar API names they map onto.

// RecentActivitiesInput selects how far back to fetch completed workouts.
type RecentActivitiesInput struct {
	Days int `json:"days,omitempty" jsonschema_description:"Number of days to look back, 1 to 90. Defaults to 7."`
}

// WellnessInput selects a date range of daily wellness records.
type WellnessInput struct {
	StartDate string `json:"start_date,omitempty" jsonschema_description:"Range start in YYYY-MM-DD. Defaults to 7 days ago."`
	EndDate   string `json:"end_date,omitempty" jsonschema_description:"Range end in YYYY-MM-DD. Defaults to today."`
}

// CalendarEventsInput selects a date range of planned calendar entries.
type CalendarEventsInput struct {
	StartDate string `json:"start_date" jsonschema_description:"Range start in YYYY-MM-DD. Required."`
	EndDate   string `json:"end_date" jsonschema_description:"Range end in YYYY-MM-DD. Required."`
}

// CreateEventInput describes a new calendar entry. Date, type and title
// are required; the rest refine the planned workout.
type CreateEventInput struct {
	Date            string   `json:"date,omitempty" jsonschema_description:"Event date in YYYY-MM-DD. Required."`
	Type            string   `json:"type,omitempty" jsonschema_description:"Event type. One of: Ride, Run, Swim, Workout, WeightTraining, Race, Rest, Note. Required."`
	Title           string   `json:"title,omitempty" jsonschema_description:"Short event title. Required."`
	Description     string   `json:"description,omitempty" jsonschema_description:"Longer workout description or instructions."`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" jsonschema_description:"Planned duration in seconds."`
	DistanceMeters  *float64 `json:"distance_meters,omitempty" jsonschema_description:"Planned distance in meters."`
	TrainingLoad    *float64 `json:"training_load,omitempty" jsonschema_description:"Planned training load."`
	Priority        string   `json:"priority,omitempty" jsonschema_description:"Race priority: A, B or C. Only meaningful for Race events."`
}

// UpdateEventInput changes fields on an existing calendar entry. At
// least one field besides event_id must be supplied.
type UpdateEventInput struct {
	EventID         string   `json:"event_id,omitempty" jsonschema_description:"Identifier of the event to update. Required."`
	Date            string   `json:"date,omitempty" jsonschema_description:"New event date in YYYY-MM-DD."`
	Type            string   `json:"type,omitempty" jsonschema_description:"New event type. One of: Ride, Run, Swim, Workout, WeightTraining, Race, Rest, Note."`
	Title           string   `json:"title,omitempty" jsonschema_description:"New event title."`
	Description     string   `json:"description,omitempty" jsonschema_description:"New description."`
	DurationSeconds *float64 `json:"duration_seconds,omitempty" jsonschema_description:"New planned duration in seconds."`
	DistanceMeters  *float64 `json:"distance_meters,omitempty" jsonschema_description:"New planned distance in meters."`
	TrainingLoad    *float64 `json:"training_load,omitempty" jsonschema_description:"New planned training load."`
	Priority        string   `json:"priority,omitempty" jsonschema_description:"New race priority: A, B or C."`
}
