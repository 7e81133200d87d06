package datastore

import "errors"

var (
	// ErrNoData is returned when the backend failed. The previous state is
	// kept and the failure has already been logged.
	ErrNoData = errors.New("no data")

	// ErrDateUnavailable means the backend cannot serve the requested date.
	// Offline mode only holds today.
	ErrDateUnavailable = errors.New("date not available in this mode")

	ErrFutureDate  = errors.New("date is in the future")
	ErrInvalidDate = errors.New("invalid date")

	// ErrResetUnsupported is returned by Reset on the remote backend, which
	// has no delete path.
	ErrResetUnsupported = errors.New("reset is only available in offline mode")
)
