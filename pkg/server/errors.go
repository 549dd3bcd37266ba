package server

import (
	"errors"
	"fmt"
)

// ErrRouteNotFound is returned when no page is registered for a path.
var ErrRouteNotFound = errors.New("server: route not found")

// RenderError wraps a transport error with render context for debugging.
type RenderError struct {
	RenderID string
	Route    string
	Op       string // Operation that failed
	Err      error  // Underlying error
}

// Error returns the error message with render context.
func (e *RenderError) Error() string {
	if e.RenderID == "" {
		return fmt.Sprintf("server: %s %s: %v", e.Op, e.Route, e.Err)
	}
	return fmt.Sprintf("server: render %s: %s %s: %v", e.RenderID, e.Op, e.Route, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderError) Unwrap() error {
	return e.Err
}
