package tools

import (
	"encoding/json"
	"fmt"
	"strings"
)

// eventFieldAliases maps the coaching field names onto the calendar
// API's names. When both spellings are present the API name wins.
var eventFieldAliases = [][2]string{
	{"date", "start_date_local"},
	{"title", "name"},
	{"duration_seconds", "moving_time"},
	{"distance_meters", "distance"},
	{"training_load", "icu_training_load"},
}

// normalizeEventFields rewrites coaching field names to their calendar
// API equivalents, returning a fresh map.
func normalizeEventFields(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for k, v := range input {
		out[k] = v
	}
	for _, alias := range eventFieldAliases {
		domain, upstream := alias[0], alias[1]
		v, ok := out[domain]
		if !ok {
			continue
		}
		if _, exists := out[upstream]; !exists {
			out[upstream] = v
		}
		delete(out, domain)
	}
	return out
}

// stringField extracts a trimmed string value. present reports whether
// the key carried a non-nil value of any type.
func stringField(m map[string]any, key string) (value string, present bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	s, _ := v.(string)
	return strings.TrimSpace(s), true
}

// numberField extracts a numeric value. JSON decoding yields float64,
// but handlers built in Go may pass ints or json.Number.
func numberField(m map[string]any, key string) (value float64, present bool, err error) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	switch n := v.(type) {
	case float64:
		return n, true, nil
	case float32:
		return float64(n), true, nil
	case int:
		return float64(n), true, nil
	case int64:
		return float64(n), true, nil
	case json.Number:
		f, convErr := n.Float64()
		if convErr != nil {
			return 0, true, fmt.Errorf("%s must be a number", key)
		}
		return f, true, nil
	default:
		return 0, true, fmt.Errorf("%s must be a number", key)
	}
}
