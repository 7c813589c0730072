package uri

import "errors"

var (
	// ErrMalformedURL is returned for input that cannot be decomposed into a target,
	// e.g. a scheme with an empty host segment.
	ErrMalformedURL = errors.New("malformed URL")

	// ErrNoBase is returned when a relative URL is merged into a State without a host.
	ErrNoBase = errors.New("relative URL requires an existing target")
)
