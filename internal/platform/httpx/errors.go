package httpx

import (
	"errors"
	"log/slog"
	"net/http"
)

// Sentinel errors shared by the domain layer. Packages wrap these so handlers
// can translate failures without knowing the package that produced them.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrConflict     = errors.New("conflicting update")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// DetailedError carries structured details, e.g. per-item failures, into the
// problem response.
type DetailedError interface {
	error
	Details() any
}

// StatusFor maps an error onto its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807. Internal
// errors never leak their message to the client.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		Problem(w, status, http.StatusText(status), "")
		return
	}
	problem := ProblemDetail{
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
	}
	var detailed DetailedError
	if errors.As(err, &detailed) {
		problem.Errors = detailed.Details()
	}
	JSON(w, status, problem)
}

// Fail logs err at a level matching its status and writes the problem
// response. Server faults log at error, client faults at warn.
func Fail(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	if logger != nil {
		if StatusFor(err) == http.StatusInternalServerError {
			logger.Error(msg, slog.Any("error", err))
		} else {
			logger.Warn(msg, slog.Any("error", err))
		}
	}
	RespondError(w, err)
}
