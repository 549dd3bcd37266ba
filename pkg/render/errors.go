package render

import (
	"errors"
	"fmt"

	ssrerrors "github.com/vango-dev/ssr/internal/errors"
)

// Sentinel errors. Errors returned by this package wrap them, so callers
// match with errors.Is.
var (
	// ErrOnlyResponseCanBeReturned is returned when a component produced a
	// value that is neither a Response nor a template result.
	ErrOnlyResponseCanBeReturned = errors.New("render: OnlyResponseCanBeReturned")

	// ErrResponseSent is returned by the stream and pull adapters when a
	// Response chunk appears after output started.
	ErrResponseSent = errors.New("render: ResponseSentError")

	// ErrPropagatorInit is returned when a head propagator fails.
	ErrPropagatorInit = errors.New("render: head propagator failed")

	// ErrRenderCancelled is returned once the session has been cancelled.
	ErrRenderCancelled = errors.New("render: cancelled")
)

func contractError(route string, got any) error {
	return ssrerrors.New("E200").
		WithRoute(route).
		WithDetail(fmt.Sprintf("Got %T. Components must return a *render.Response, a *render.HeadAndContent wrapping a template result, or a template result.", got)).
		WithSuggestion("Return render.Template(...) or a *render.Response from the component").
		Wrap(ErrOnlyResponseCanBeReturned)
}

func responseSentError(route string) error {
	return ssrerrors.New("E201").
		WithRoute(route).
		WithSuggestion("Return the Response from the page itself instead of a nested component").
		Wrap(ErrResponseSent)
}

func propagatorError(route string, err error) error {
	return ssrerrors.New("E202").
		WithRoute(route).
		Wrap(fmt.Errorf("%w: %w", ErrPropagatorInit, err))
}

func componentError(name string, err error) error {
	var e *ssrerrors.Error
	if errors.As(err, &e) || errors.Is(err, ErrRenderCancelled) {
		return err
	}
	return ssrerrors.New("E204").WithRoute(name).Wrap(err)
}
