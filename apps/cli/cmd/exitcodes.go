package cmd

import (
	"context"
	"errors"
	neturl "net/url"

	"github.com/abdul-hamid-achik/hitclient/packages/core/config"
	"github.com/abdul-hamid-achik/hitclient/packages/http"
	"github.com/abdul-hamid-achik/hitclient/packages/uri"
)

// Exit codes for hitclient CLI
const (
	// ExitSuccess indicates every step succeeded
	ExitSuccess = 0

	// ExitFailure indicates a failed request, threshold or lookup
	ExitFailure = 1

	// ExitParseError indicates a URL that could not be parsed or resolved
	ExitParseError = 2

	// ExitConfigError indicates a configuration error, including a missing target
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError pins an error to an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: ExitUsageError, err: err}
}

func configError(err error) error {
	return &exitError{code: ExitConfigError, err: err}
}

// exitCode maps err to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}

	var (
		verr *config.ValidationError
		uerr *neturl.Error
	)
	switch {
	case errors.Is(err, http.ErrNoTarget), errors.Is(err, http.ErrInvalidHeader), errors.As(err, &verr):
		return ExitConfigError
	case errors.Is(err, uri.ErrMalformedURL), errors.Is(err, uri.ErrNoBase):
		return ExitParseError
	case errors.As(err, &uerr), errors.Is(err, context.DeadlineExceeded):
		return ExitNetworkError
	}
	return ExitFailure
}
