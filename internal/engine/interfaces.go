package engine

import (
	"context"

	"github.com/epiq/epiq/internal/operator"
	"github.com/epiq/epiq/internal/render"
	"github.com/epiq/epiq/pkg/notifier"
)

// Terminal is the host screen: it produces input events and shows frames.
// internal/term implements it on top of bubbletea; tests use a fake.
type Terminal interface {
	render.Surface

	// Events delivers translated key, mouse and resize events.
	Events() <-chan operator.Event
	// Size returns the current width and height in cells.
	Size() (width, height int)
	// SetMouseCapture turns mouse reporting on or off.
	SetMouseCapture(enabled bool)
	// Run blocks until the terminal is closed or ctx is done.
	Run(ctx context.Context) error
}

// Dependencies are the collaborators an Engine needs besides its config.
type Dependencies struct {
	Terminal Terminal
	// Notifier receives submission errors. Optional.
	Notifier notifier.Notifier
}
