package result

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
)

// StatusError is the status label of an error envelope.
const StatusError = "error"

// Envelope is the boundary contract returned to callers of a tool: either a
// key-sorted JSON payload or an error body of the form
// {"status":"error","error":<kind>,"details":{...}}.
type Envelope struct {
	Payload any
	Kind    Kind
	Details Details
	IsError bool
}

// OK wraps a successful payload.
func OK(payload any) Envelope {
	return Envelope{Payload: payload}
}

// FromError converts any error into an error envelope. Failures keep their
// kind and details; other errors are reported under fallback so raw provider
// errors never reach the caller unclassified.
func FromError(err error, fallback Kind, tool string) Envelope {
	f, ok := As(err)
	if !ok {
		details := Details{"tool": tool}
		if err != nil {
			details["message"] = err.Error()
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			details["transient"] = true
		}
		f = New(fallback, details)
	}
	details := make(Details, len(f.Details)+1)
	for k, v := range f.Details {
		details[k] = v
	}
	if t, _ := details["tool"].(string); t == "" && tool != "" {
		details["tool"] = tool
	}
	return Envelope{Kind: f.Kind, Details: details, IsError: true}
}

// Body returns the value serialized for this envelope.
func (e Envelope) Body() any {
	if !e.IsError {
		return e.Payload
	}
	body := map[string]any{"status": StatusError, "error": string(e.Kind)}
	if len(e.Details) > 0 {
		body["details"] = map[string]any(e.Details)
	}
	return body
}

// MarshalJSON encodes the envelope with every object's keys sorted.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return Canonical(e.Body())
}

// Text returns the canonical JSON text of the envelope.
func (e Envelope) Text() string {
	b, err := e.MarshalJSON()
	if err != nil {
		return `{"error":"internal_error","status":"error"}`
	}
	return string(b)
}

// Canonical marshals v and re-encodes it through a generic tree so struct
// fields come out key-sorted like map keys do.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "result: marshal payload")
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, eris.Wrap(err, "result: decode payload")
	}
	out, err := json.Marshal(tree)
	if err != nil {
		return nil, eris.Wrap(err, "result: encode payload")
	}
	return out, nil
}
