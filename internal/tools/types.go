// Package tools implements the coaching tool catalog: the set of
// operations the model may invoke against the athlete's training data,
// plus the executor that validates inputs and dispatches gateway calls.
package tools

// Tool names as exposed to the model.
const (
	ToolRecentActivities = "get_recent_activities"
	ToolWellness         = "get_wellness_data"
	ToolCalendarEvents   = "get_calendar_events"
	ToolCreateEvent      = "create_calendar_event"
	ToolUpdateEvent      = "update_calendar_event"
)

// Error codes carried on failed tool calls. The set is closed: every
// failure maps to exactly one of these.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeInvalidEventType   = "INVALID_EVENT_TYPE"
	CodeInvalidDate        = "INVALID_DATE"
	CodeInvalidPriority    = "INVALID_PRIORITY"
	CodeNoCredentials      = "NO_CREDENTIALS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeRateLimited        = "RATE_LIMITED"
	CodeAPIError           = "API_ERROR"
	CodeNetworkError       = "NETWORK_ERROR"
	CodeToolError          = "TOOL_ERROR"
)

// CallResult is the outcome of a single tool invocation. Exactly one of
// Result and Error carries content: Result when Success is true, Error
// plus Code when it is false.
type CallResult struct {
	ToolName string `json:"tool_name"`
	Success  bool   `json:"success"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
	Code     string `json:"code,omitempty"`
}

func success(tool string, result any) CallResult {
	return CallResult{ToolName: tool, Success: true, Result: result}
}

func failure(tool, code, msg string) CallResult {
	return CallResult{ToolName: tool, Success: false, Error: msg, Code: code}
}
