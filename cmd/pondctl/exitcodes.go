package main

import (
	"errors"

	"github.com/aquaops/pond-miniapp/modules/miniapp/services"
	"github.com/aquaops/pond-miniapp/pkg/composables"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitBackend    = 4
	exitRejected   = 5
	exitDenied     = 6
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var validationErr *services.ValidationError
	var rejection *services.RejectionError
	switch {
	case errors.As(err, &validationErr):
		return exitValidation
	case errors.As(err, &rejection):
		return exitRejected
	case errors.Is(err, services.ErrAuthorizationDenied), errors.Is(err, composables.ErrNoIdentity):
		return exitDenied
	case errors.Is(err, services.ErrBackendUnavailable), errors.Is(err, services.ErrUsersLoadFailed):
		return exitBackend
	}
	return 1
}
