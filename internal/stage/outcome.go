// Package stage carries the result of one pipeline stage.
//
// A stage either succeeds with its value or degrades to a documented default.
// Degraded outcomes still carry a well-formed value so the orchestrator can
// keep composing stages.
package stage

import (
	"fmt"
	"log/slog"
)

// Outcome is the result of a single stage
type Outcome[T any] struct {
	Value    T
	Degraded bool
	Reason   string
}

// OK wraps a successful stage value
func OK[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degrade wraps a fallback value together with the reason it was used
func Degrade[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Degraded: true, Reason: reason}
}

// Run executes fn and converts an error or a panic into the fallback value.
// The fallback is only computed when needed.
func Run[T any](name string, fn func() (T, error), fallback func() T) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("stage panicked, using default", "stage", name, "panic", r)
			out = Degrade(fallback(), fmt.Sprintf("%s: internal error", name))
		}
	}()

	v, err := fn()
	if err != nil {
		slog.Warn("stage degraded", "stage", name, "error", err)
		return Degrade(fallback(), fmt.Sprintf("%s: %v", name, err))
	}
	return OK(v)
}
