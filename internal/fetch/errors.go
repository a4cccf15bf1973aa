package fetch

import "errors"

// Fetch errors.
var (
	// ErrFetchFailed is returned when the query target is unreachable or the
	// result list does not appear within the configured timeout.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrSessionUnavailable is returned when the browser session cannot be
	// started or is used after Close. It is fatal for a run.
	ErrSessionUnavailable = errors.New("browser session unavailable")
)
