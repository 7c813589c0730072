package http

import (
	"errors"

	"github.com/abdul-hamid-achik/hitclient/packages/uri"
)

var (
	// ErrNoTarget is returned when a Config names neither a URL nor a host.
	ErrNoTarget = errors.New("config requires a url or a host")

	// ErrNullHandle is returned when a nil or closed Client is used.
	ErrNullHandle = errors.New("client handle is nil or closed")

	// ErrInvalidHeader is returned for a default header that is not a valid HTTP field.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrMalformedURL is returned for URL input that cannot be decomposed.
	ErrMalformedURL = uri.ErrMalformedURL
)
