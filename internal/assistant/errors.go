package assistant

import "errors"

// Pipeline failures. Each one is recovered inside the session and rendered
// as a transcript message; none escape to the caller.
var (
	// ErrPlaceNotFound means the geocoder returned no candidates.
	ErrPlaceNotFound = errors.New("place not found")
	// ErrLocationUnknown means the user referred to "here" with no active location.
	ErrLocationUnknown = errors.New("location unknown")
	// ErrDataUnavailable means the snapshot lacks the requested date or field.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrFetchFailure wraps network and decode errors from either lookup.
	ErrFetchFailure = errors.New("fetch failure")

	// ErrEmptyUtterance is returned by Send for blank input.
	ErrEmptyUtterance = errors.New("empty utterance")
	// ErrSessionClosed is returned by Send after Close.
	ErrSessionClosed = errors.New("session closed")
)
