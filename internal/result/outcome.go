package result

import (
	"encoding/json"
	"sort"
)

// Status is the tri-state of an Outcome.
type Status string

// Outcome states.
const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
)

// Outcome is the result of one step in an aggregating flow. Degraded outcomes
// carry a usable value plus caveats describing what was lost; failed outcomes
// carry only the error.
type Outcome[T any] struct {
	Value   T
	Status  Status
	Caveats []string
	Err     error
}

// Ok returns a successful outcome.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v, Status: StatusOK}
}

// Degraded returns an outcome whose value is usable but incomplete.
func Degraded[T any](v T, caveats ...string) Outcome[T] {
	return Outcome[T]{Value: v, Status: StatusDegraded, Caveats: caveats}
}

// Failed returns a failed outcome.
func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Status: StatusFailed, Err: err}
}

// From builds an Ok or Failed outcome from a (value, error) pair.
func From[T any](v T, err error) Outcome[T] {
	if err != nil {
		return Failed[T](err)
	}
	return Ok(v)
}

// Usable reports whether Value may be read.
func (o Outcome[T]) Usable() bool { return o.Status != StatusFailed }

// Caveat returns a human-readable caveat for a failed outcome, used when a
// sibling's failure is folded into a degraded aggregate.
func (o Outcome[T]) Caveat(step string) string {
	if o.Err == nil {
		return step
	}
	if f, ok := As(o.Err); ok {
		return step + ": " + string(f.Kind)
	}
	return step + ": " + o.Err.Error()
}

// MarshalJSON encodes the outcome as {"status", "value"|"error", "caveats"}.
func (o Outcome[T]) MarshalJSON() ([]byte, error) {
	body := map[string]any{"status": o.Status}
	if o.Status == StatusFailed {
		env := FromError(o.Err, KindInternal, "")
		body["error"] = env.Body()
	} else {
		body["value"] = o.Value
	}
	if len(o.Caveats) > 0 {
		caveats := append([]string(nil), o.Caveats...)
		sort.Strings(caveats)
		body["caveats"] = caveats
	}
	return json.Marshal(body)
}
