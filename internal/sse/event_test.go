package sse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelabs/stride/internal/tools"
)

func TestEventMarshalShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		event Event
		want  string
	}{
		{
			"content delta",
			Delta("Take it easy today."),
			`{"type":"content_delta","text":"Take it easy today."}`,
		},
		{
			"usage includes zero counts",
			UsageEvent(0, 0),
			`{"type":"usage","input_tokens":0,"output_tokens":0}`,
		},
		{
			"usage",
			UsageEvent(812, 64),
			`{"type":"usage","input_tokens":812,"output_tokens":64}`,
		},
		{
			"done carries only its type",
			Done(),
			`{"type":"done"}`,
		},
		{
			"error with code",
			ErrorEvent("model call failed", "UPSTREAM_ERROR"),
			`{"type":"error","error":"model call failed","code":"UPSTREAM_ERROR"}`,
		},
		{
			"error without code",
			ErrorEvent("request timed out", ""),
			`{"type":"error","error":"request timed out"}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := json.Marshal(tc.event)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(got))
		})
	}
}

func TestEventMarshalToolCalls(t *testing.T) {
	t.Parallel()

	e := ToolCalls([]tools.CallResult{
		{ToolName: tools.ToolRecentActivities, Success: true, Result: map[string]any{"count": 4}},
		{ToolName: tools.ToolWellness, Success: false, Error: "no connection", Code: tools.CodeNoCredentials},
	})
	got, err := json.Marshal(e)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "tool_calls",
		"tool_calls": [
			{"tool_name": "get_recent_activities", "success": true, "result": {"count": 4}},
			{"tool_name": "get_wellness_data", "success": false, "error": "no connection", "code": "NO_CREDENTIALS"}
		]
	}`, string(got))
}

func TestEventUnmarshalRejectsUnknownType(t *testing.T) {
	t.Parallel()

	var e Event
	err := json.Unmarshal([]byte(`{"type":"heartbeat"}`), &e)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"text":"no type"}`), &e)
	assert.Error(t, err)
}

func TestEventMarshalUnknownType(t *testing.T) {
	t.Parallel()

	_, err := json.Marshal(Event{Type: "bogus"})
	assert.Error(t, err)
}
