package source

import "errors"

// Record source errors. Both are surfaced by the refresh loop the same way:
// the last good collection is kept and the message is shown to the viewer.
var (
	// ErrSourceUnavailable is returned when the record source could not be
	// reached or answered with a server error.
	ErrSourceUnavailable = errors.New("record source unavailable")

	// ErrMalformedResponse is returned when the response is not an array of
	// snapshot objects.
	ErrMalformedResponse = errors.New("malformed record source response")
)
