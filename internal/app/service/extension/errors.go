package extension

import "errors"

var (
	// ErrPastDateExtension rejects skip events for days before today.
	// Extensions are never granted retroactively.
	ErrPastDateExtension = errors.New("cannot modify a past delivery day")

	// ErrCancelledDay rejects skip events for a day already cancelled;
	// cancellation is terminal.
	ErrCancelledDay = errors.New("delivery day is cancelled")
)
