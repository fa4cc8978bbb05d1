package mpv

import (
	"encoding/json"
	"strconv"
)

// docs: https://mpv.io/manual/stable/#json-ipc

const successReply = "success"

// Request is one outbound command line.
type Request struct {
	Command []any `json:"command"` // https://mpv.io/manual/stable/#list-of-input-commands

	RequestID int64 `json:"request_id"`
}

// Event is an unsolicited message from mpv, e.g. {"event":"pause"}.
type Event map[string]any

// Name returns the event name.
func (e Event) Name() string {
	name, _ := e["event"].(string)
	return name
}

// PropertyChange returns the property name and value of a property-change
// event registered with ObserveProperty.
func (e Event) PropertyChange() (name string, data any, ok bool) {
	if e.Name() != "property-change" {
		return "", nil, false
	}
	name, ok = e["name"].(string)
	return name, e["data"], ok
}

// Float converts a decoded JSON number to float64.
func Float(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func isEvent(msg map[string]any) bool {
	_, ok := msg["event"].(string)
	return ok
}

// Stringify renders a JSON value as text: booleans and numbers as their
// literal form, strings verbatim, arrays and objects as JSON.
func Stringify(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", ErrMissingValue
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case json.Number:
		return v.String(), nil
	case string:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return "", ErrUnexpectedValue
		}
		return string(data), nil
	}
}
