package main

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidGroup       = errors.New("invalid group")
	ErrInvalidExtension   = errors.New("file type not allowed")
	ErrInvalidFilename    = errors.New("invalid filename")
	ErrMissingFile        = errors.New("no file selected")
	ErrMissingDates       = errors.New("both monday_date and friday_date are required")
	ErrInvalidDate        = errors.New("dates must be YYYY-MM-DD or RFC 3339")
	ErrEmptyGroup         = errors.New("both monday and friday groups need at least one image")
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("model client is not initialized; check the service credentials")
	ErrQueueUnavailable   = errors.New("job queue is not configured")
	ErrJobBusy            = errors.New("a comparison job is already running")
)

// upstreamError marks a failure of an external call (model or task database).
// The wrapped error is logged but never sent back to clients.
type upstreamError struct {
	service string
	err     error
}

func (e *upstreamError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.service, e.err)
}

func (e *upstreamError) Unwrap() error { return e.err }

func upstream(service string, err error) error {
	if err == nil {
		return nil
	}
	return &upstreamError{service: service, err: err}
}

func isInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidGroup) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidFilename) ||
		errors.Is(err, ErrMissingFile) ||
		errors.Is(err, ErrMissingDates) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEmptyGroup)
}

func httpStatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case isInvalidInput(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrJobBusy):
		return http.StatusConflict
	case errors.Is(err, ErrQueueUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage is what a client gets to see for err. Input errors are shown
// verbatim; upstream and internal failures get a fixed text.
func clientMessage(err error) string {
	var up *upstreamError
	switch {
	case isInvalidInput(err), errors.Is(err, ErrNotFound), errors.Is(err, ErrJobBusy),
		errors.Is(err, ErrQueueUnavailable), errors.Is(err, ErrServiceUnavailable):
		return rootMessage(err)
	case errors.As(err, &up):
		return fmt.Sprintf("%s request failed", up.service)
	default:
		return "internal server error"
	}
}

func rootMessage(err error) string {
	for _, sentinel := range []error{
		ErrInvalidGroup, ErrInvalidExtension, ErrInvalidFilename, ErrMissingFile,
		ErrMissingDates, ErrInvalidDate, ErrEmptyGroup, ErrNotFound,
		ErrServiceUnavailable, ErrQueueUnavailable, ErrJobBusy,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
