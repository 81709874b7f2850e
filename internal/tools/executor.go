package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/stridelabs/stride/internal/credentials"
	"github.com/stridelabs/stride/internal/gateway"
)

const (
	defaultActivityDays = 7
	maxActivityDays     = 90
	wellnessDefaultSpan = 7 * 24 * time.Hour
)

// eventTypes is the closed set of calendar entry types the upstream
// calendar accepts.
var eventTypes = map[string]struct{}{
	"Ride": {}, "Run": {}, "Swim": {}, "Workout": {},
	"WeightTraining": {}, "Race": {}, "Rest": {}, "Note": {},
}

// mutableEventFields are the calendar fields update_calendar_event may
// change, in API naming.
var mutableEventFields = []string{
	"start_date_local", "type", "name", "description",
	"moving_time", "distance", "icu_training_load", "priority",
}

// nonNegativeFields carry planned quantities and must be finite and >= 0.
var nonNegativeFields = []string{"moving_time", "distance", "icu_training_load"}

// Gateway is the slice of the gateway client the executor uses.
type Gateway interface {
	RecentActivities(ctx context.Context, creds gateway.Credentials, days int) (json.RawMessage, error)
	Wellness(ctx context.Context, creds gateway.Credentials, startDate, endDate string) (json.RawMessage, error)
	CalendarEvents(ctx context.Context, creds gateway.Credentials, startDate, endDate string) (json.RawMessage, error)
	CreateEvent(ctx context.Context, creds gateway.Credentials, event map[string]any) (json.RawMessage, error)
	UpdateEvent(ctx context.Context, creds gateway.Credentials, eventID string, event map[string]any) (json.RawMessage, error)
}

// CredentialSource resolves an athlete's upstream credentials.
type CredentialSource interface {
	Lookup(ctx context.Context, athleteID string) (*gateway.Credentials, error)
}

// Executor validates tool inputs and dispatches them to the gateway.
// Failures never surface as errors: every outcome is a CallResult the
// model can read and react to.
type Executor struct {
	gw     Gateway
	creds  CredentialSource
	logger *slog.Logger
	now    func() time.Time
}

func NewExecutor(gw Gateway, creds CredentialSource, logger *slog.Logger) *Executor {
	return &Executor{gw: gw, creds: creds, logger: logger, now: time.Now}
}

// Execute runs the named tool for the given athlete. Input maps come
// straight from the model, so every field is treated as untrusted.
func (e *Executor) Execute(ctx context.Context, athleteID, tool string, input map[string]any) CallResult {
	if input == nil {
		input = map[string]any{}
	}

	var res CallResult
	switch tool {
	case ToolRecentActivities:
		res = e.recentActivities(ctx, athleteID, input)
	case ToolWellness:
		res = e.wellness(ctx, athleteID, input)
	case ToolCalendarEvents:
		res = e.calendarEvents(ctx, athleteID, input)
	case ToolCreateEvent:
		res = e.createEvent(ctx, athleteID, input)
	case ToolUpdateEvent:
		res = e.updateEvent(ctx, athleteID, input)
	default:
		res = failure(tool, CodeToolError, fmt.Sprintf("unknown tool %q", tool))
	}

	if res.Success {
		e.logger.Debug("tool call succeeded", "tool", tool, "athlete_id", athleteID)
	} else {
		e.logger.Warn("tool call failed",
			"tool", tool, "athlete_id", athleteID, "code", res.Code, "error", res.Error)
	}
	return res
}

func (e *Executor) recentActivities(ctx context.Context, athleteID string, input map[string]any) CallResult {
	days := defaultActivityDays
	if v, present, err := numberField(input, "days"); err != nil {
		return failure(ToolRecentActivities, CodeInvalidInput, err.Error())
	} else if present {
		if v != math.Trunc(v) || v < 1 || v > maxActivityDays {
			return failure(ToolRecentActivities, CodeInvalidInput,
				fmt.Sprintf("days must be a whole number between 1 and %d", maxActivityDays))
		}
		days = int(v)
	}

	creds, fail := e.resolveCredentials(ctx, athleteID, ToolRecentActivities)
	if fail != nil {
		return *fail
	}
	raw, err := e.gw.RecentActivities(ctx, *creds, days)
	if err != nil {
		return gatewayFailure(ToolRecentActivities, err)
	}
	return success(ToolRecentActivities, raw)
}

func (e *Executor) wellness(ctx context.Context, athleteID string, input map[string]any) CallResult {
	today := e.now().UTC().Format("2006-01-02")
	weekAgo := e.now().UTC().Add(-wellnessDefaultSpan).Format("2006-01-02")

	start, fail := e.optionalDate(ToolWellness, input, "start_date", weekAgo)
	if fail != nil {
		return *fail
	}
	end, fail := e.optionalDate(ToolWellness, input, "end_date", today)
	if fail != nil {
		return *fail
	}
	if start > end {
		return failure(ToolWellness, CodeInvalidDate, "start_date must not be after end_date")
	}

	creds, cfail := e.resolveCredentials(ctx, athleteID, ToolWellness)
	if cfail != nil {
		return *cfail
	}
	raw, err := e.gw.Wellness(ctx, *creds, start, end)
	if err != nil {
		return gatewayFailure(ToolWellness, err)
	}
	return success(ToolWellness, raw)
}

func (e *Executor) calendarEvents(ctx context.Context, athleteID string, input map[string]any) CallResult {
	start, fail := e.requiredDate(ToolCalendarEvents, input, "start_date")
	if fail != nil {
		return *fail
	}
	end, fail := e.requiredDate(ToolCalendarEvents, input, "end_date")
	if fail != nil {
		return *fail
	}
	if start > end {
		return failure(ToolCalendarEvents, CodeInvalidDate, "start_date must not be after end_date")
	}

	creds, cfail := e.resolveCredentials(ctx, athleteID, ToolCalendarEvents)
	if cfail != nil {
		return *cfail
	}
	raw, err := e.gw.CalendarEvents(ctx, *creds, start, end)
	if err != nil {
		return gatewayFailure(ToolCalendarEvents, err)
	}
	return success(ToolCalendarEvents, raw)
}

func (e *Executor) createEvent(ctx context.Context, athleteID string, input map[string]any) CallResult {
	event := normalizeEventFields(input)

	for _, req := range []string{"start_date_local", "type", "name"} {
		if v, _ := stringField(event, req); v == "" {
			return failure(ToolCreateEvent, CodeInvalidInput,
				fmt.Sprintf("missing required field %s", displayName(req)))
		}
	}
	if fail := e.validateEventFields(ToolCreateEvent, event); fail != nil {
		return *fail
	}

	creds, cfail := e.resolveCredentials(ctx, athleteID, ToolCreateEvent)
	if cfail != nil {
		return *cfail
	}
	raw, err := e.gw.CreateEvent(ctx, *creds, event)
	if err != nil {
		return gatewayFailure(ToolCreateEvent, err)
	}
	return success(ToolCreateEvent, raw)
}

func (e *Executor) updateEvent(ctx context.Context, athleteID string, input map[string]any) CallResult {
	event := normalizeEventFields(input)

	eventID, _ := stringField(event, "event_id")
	if eventID == "" {
		return failure(ToolUpdateEvent, CodeInvalidInput, "missing required field event_id")
	}
	delete(event, "event_id")

	changed := false
	for _, f := range mutableEventFields {
		if _, ok := event[f]; ok {
			changed = true
			break
		}
	}
	if !changed {
		return failure(ToolUpdateEvent, CodeInvalidInput, "update requires at least one field to change")
	}
	if fail := e.validateEventFields(ToolUpdateEvent, event); fail != nil {
		return *fail
	}

	creds, cfail := e.resolveCredentials(ctx, athleteID, ToolUpdateEvent)
	if cfail != nil {
		return *cfail
	}
	raw, err := e.gw.UpdateEvent(ctx, *creds, eventID, event)
	if err != nil {
		return gatewayFailure(ToolUpdateEvent, err)
	}
	return success(ToolUpdateEvent, raw)
}

// validateEventFields checks the fields shared by create and update.
// Fields absent from the map are skipped: update sends partial events.
func (e *Executor) validateEventFields(tool string, event map[string]any) *CallResult {
	if typ, present := stringField(event, "type"); present {
		if _, ok := eventTypes[typ]; !ok {
			f := failure(tool, CodeInvalidEventType, fmt.Sprintf("unknown event type %q", typ))
			return &f
		}
	}
	if date, present := stringField(event, "start_date_local"); present {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			f := failure(tool, CodeInvalidDate, fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", date))
			return &f
		}
	}
	if prio, present := stringField(event, "priority"); present {
		if prio != "A" && prio != "B" && prio != "C" {
			f := failure(tool, CodeInvalidPriority, fmt.Sprintf("priority must be A, B or C, got %q", prio))
			return &f
		}
	}
	for _, field := range nonNegativeFields {
		v, present, err := numberField(event, field)
		if err != nil {
			f := failure(tool, CodeInvalidInput, err.Error())
			return &f
		}
		if present && (math.IsNaN(v) || math.IsInf(v, 0) || v < 0) {
			f := failure(tool, CodeInvalidInput,
				fmt.Sprintf("%s must be a non-negative number", displayName(field)))
			return &f
		}
	}
	return nil
}

func (e *Executor) requiredDate(tool string, input map[string]any, key string) (string, *CallResult) {
	v, present := stringField(input, key)
	if !present || v == "" {
		f := failure(tool, CodeInvalidInput, fmt.Sprintf("missing required field %s", key))
		return "", &f
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		f := failure(tool, CodeInvalidDate, fmt.Sprintf("%s %q is not a valid YYYY-MM-DD date", key, v))
		return "", &f
	}
	return v, nil
}

func (e *Executor) optionalDate(tool string, input map[string]any, key, fallback string) (string, *CallResult) {
	v, present := stringField(input, key)
	if !present || v == "" {
		return fallback, nil
	}
	if _, err := time.Parse("2006-01-02", v); err != nil {
		f := failure(tool, CodeInvalidDate, fmt.Sprintf("%s %q is not a valid YYYY-MM-DD date", key, v))
		return "", &f
	}
	return v, nil
}

func (e *Executor) resolveCredentials(ctx context.Context, athleteID, tool string) (*gateway.Credentials, *CallResult) {
	creds, err := e.creds.Lookup(ctx, athleteID)
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredentials) {
			f := failure(tool, CodeNoCredentials,
				"no training platform connection found for this athlete")
			return nil, &f
		}
		f := failure(tool, CodeToolError, "credential lookup failed")
		return nil, &f
	}
	return creds, nil
}

// gatewayFailure maps a gateway error onto the tool error taxonomy.
func gatewayFailure(tool string, err error) CallResult {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Kind {
		case gateway.KindUnauthorized:
			return failure(tool, CodeInvalidCredentials, "the training platform rejected the stored credentials")
		case gateway.KindRateLimited:
			return failure(tool, CodeRateLimited, "the training platform rate limit was hit, try again shortly")
		case gateway.KindUpstream:
			msg := gwErr.Message
			if msg == "" {
				msg = fmt.Sprintf("the training platform returned status %d", gwErr.StatusCode)
			}
			return failure(tool, CodeAPIError, msg)
		case gateway.KindNetwork:
			return failure(tool, CodeNetworkError, "could not reach the training platform")
		}
	}
	return failure(tool, CodeToolError, err.Error())
}

// displayName renders an API field name under its coaching alias for
// error messages, so the model sees the name it used.
func displayName(field string) string {
	for _, alias := range eventFieldAliases {
		if alias[1] == field {
			return alias[0]
		}
	}
	return field
}
