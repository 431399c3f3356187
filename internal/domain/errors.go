package domain

import (
	"encoding/json"
	"net/http"
)

// APIError is an RFC 7807 problem document
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Problem types
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeRateLimited  = "rate_limited"
	ErrorTypeUnavailable  = "service_unavailable"
	ErrorTypeInternal     = "internal_error"
)

// validationMessages are the fallback messages for validator tags without a parametrised text
var validationMessages = map[string]string{
	"required":   "This field is required",
	"email":      "Must be a valid email address",
	"oneof":      "Must be one of the allowed values",
	"datetime":   "Must be a date in YYYY-MM-DD format",
	"postalcode": "Must be a postal code in NN-NNN format",
}

// GetValidationMessage returns a human-readable message for a validation tag
func GetValidationMessage(tag string) string {
	if msg, ok := validationMessages[tag]; ok {
		return msg
	}
	return "Validation failed: " + tag
}

// ErrorTypeForStatus returns the problem type for an HTTP status code
func ErrorTypeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return ErrorTypeUnauthorized
	case http.StatusForbidden:
		return ErrorTypeForbidden
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusConflict:
		return ErrorTypeConflict
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimited
	case http.StatusServiceUnavailable:
		return ErrorTypeUnavailable
	default:
		return ErrorTypeInternal
	}
}

// WriteProblem writes a problem document with the given status and detail
func WriteProblem(w http.ResponseWriter, status int, detail string) {
	WriteAPIError(w, &APIError{
		Type:   ErrorTypeForStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// WriteAPIError writes e as application/problem+json
func WriteAPIError(w http.ResponseWriter, e *APIError) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}
