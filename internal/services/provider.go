// Package services tracks the optional backing services the engine was
// started with and reports their health.
package services

import "context"

// Checker is a backing service that can report its availability
type Checker interface {
	// Ping returns nil when the service is reachable
	Ping(ctx context.Context) error
}

// CheckFunc adapts a function to Checker
type CheckFunc func(ctx context.Context) error

// Ping implements Checker
func (f CheckFunc) Ping(ctx context.Context) error {
	return f(ctx)
}
