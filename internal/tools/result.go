package tools

import "encoding/json"

// Result is the uniform envelope every gateway operation returns: either a
// success-shaped payload or an error payload with remediation hints, both
// rendered as indented JSON.
type Result struct {
	Text    string
	IsError bool
}

// JSONResult wraps a success payload.
func JSONResult(v interface{}) *Result {
	return &Result{Text: renderJSON(v)}
}

// ErrorResult wraps an error payload.
func ErrorResult(v interface{}) *Result {
	return &Result{Text: renderJSON(v), IsError: true}
}

func renderJSON(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return `{"error":"failed to encode response"}`
	}
	return string(data)
}
