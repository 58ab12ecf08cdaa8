package util

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrAssignmentNotFound  = errors.New("assignment not found")
	ErrAssignmentInactive  = errors.New("assignment is not active")
	ErrWindowExpired       = errors.New("assignment is no longer available")
	ErrMissingAttemptStart = errors.New("attempt start time is required for timed assignments")
	ErrTimeLimitExceeded   = errors.New("time limit exceeded")
	ErrAudienceRestricted  = errors.New("assignment is restricted to selected students")
	ErrValidation          = errors.New("validation failed")
	ErrPersistence         = errors.New("persistence failed")
)

// ErrorKind is the machine-readable error category returned to API clients.
type ErrorKind string

const (
	KindNotFound            ErrorKind = "NotFound"
	KindInactive            ErrorKind = "Inactive"
	KindWindowExpired       ErrorKind = "WindowExpired"
	KindMissingAttemptStart ErrorKind = "MissingAttemptStart"
	KindTimeLimitExceeded   ErrorKind = "TimeLimitExceeded"
	KindAudienceRestricted  ErrorKind = "AudienceRestricted"
	KindValidation          ErrorKind = "ValidationError"
	KindPersistence         ErrorKind = "PersistenceError"
	KindUnauthorized        ErrorKind = "Unauthorized"
	KindForbidden           ErrorKind = "Forbidden"
	KindInternal            ErrorKind = "Internal"
)

type kindEntry struct {
	err     error
	kind    ErrorKind
	status  int
	message string
}

var kindTable = []kindEntry{
	{ErrAssignmentNotFound, KindNotFound, http.StatusNotFound, "This assignment does not exist."},
	{ErrAssignmentInactive, KindInactive, http.StatusForbidden, "This assignment has been disabled by the tutor."},
	{ErrWindowExpired, KindWindowExpired, http.StatusGone, "The deadline for this assignment has passed."},
	{ErrMissingAttemptStart, KindMissingAttemptStart, http.StatusBadRequest, "The attempt start time is missing, so the time limit cannot be checked."},
	{ErrTimeLimitExceeded, KindTimeLimitExceeded, http.StatusBadRequest, "The time limit for this assignment was exceeded."},
	{ErrAudienceRestricted, KindAudienceRestricted, http.StatusForbidden, "This assignment is only available to selected students."},
	{ErrValidation, KindValidation, http.StatusBadRequest, ""},
	{ErrEmailRegistered, KindValidation, http.StatusConflict, "This email is already registered."},
	{ErrInvalidCredentials, KindUnauthorized, http.StatusUnauthorized, "Invalid email or password."},
	{ErrPermissionDenied, KindForbidden, http.StatusForbidden, "Forbidden"},
	{ErrPersistence, KindPersistence, http.StatusInternalServerError, "The data could not be saved. Please try again."},
}

var exposeStoreErrors atomic.Bool

// ExposeStoreErrors switches persistence errors between the generic message and
// the wrapped store message. Only debug mode turns it on.
func ExposeStoreErrors(on bool) {
	exposeStoreErrors.Store(on)
}

// Classify maps err to its kind, HTTP status and user-facing message.
// Validation errors carry their own wrapped message.
func Classify(err error) (ErrorKind, int, string) {
	for _, e := range kindTable {
		if errors.Is(err, e.err) {
			msg := e.message
			if msg == "" || (e.kind == KindPersistence && exposeStoreErrors.Load()) {
				msg = err.Error()
			}
			return e.kind, e.status, msg
		}
	}
	return KindInternal, http.StatusInternalServerError, "Internal server error"
}

// Validationf wraps a formatted message as a validation error.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Persistence wraps a store failure, keeping its message.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
