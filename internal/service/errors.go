package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when a change would break a firm-wide invariant
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized is returned when user is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")
)

// Entity specific errors wrap the common ones so handlers can map them with errors.Is
var (
	ErrMaterialNotFound     = notFound("material not found")
	ErrProjectNotFound      = notFound("project not found")
	ErrUsedMaterialNotFound = notFound("used material not found on project")
	ErrCostNotFound         = notFound("additional cost not found on project")
	ErrTimelineNotFound     = notFound("timeline event not found on project")
	ErrTransactionNotFound  = notFound("transaction not found")
	ErrPartnerNotFound      = notFound("partner not found")
	ErrLookupNotFound       = notFound("lookup not found")

	ErrUnknownLookupKind = invalid("unknown lookup kind")
	ErrNonFiniteNumber   = invalid("number must be finite")
	ErrInvalidReference  = invalid("referenced document does not exist")

	ErrShareExceeded = &serviceError{msg: "partner shares would exceed 100%", kind: ErrConflict}
)

type serviceError struct {
	msg  string
	kind error
}

func (e *serviceError) Error() string { return e.msg }

func (e *serviceError) Unwrap() error { return e.kind }

func notFound(msg string) error { return &serviceError{msg: msg, kind: ErrNotFound} }

func invalid(msg string) error { return &serviceError{msg: msg, kind: ErrInvalidInput} }
