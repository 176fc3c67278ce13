package apperr

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrUnauthorized is returned when no usable credential is present.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned when the principal has the wrong role or scheme.
// The HTTP layer reports it as 401 like ErrUnauthorized.
var ErrForbidden = errors.New("forbidden")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoDriversAvailable is returned when order creation requires an eligible driver and none exists.
var ErrNoDriversAvailable = errors.New("no drivers available")

// ErrDriverNotEligible is a business-rule rejection of a bid or dispatch.
var ErrDriverNotEligible = errors.New("driver not eligible")

// ErrOrderNotAvailable is a business-rule rejection: the order cannot take the operation.
var ErrOrderNotAvailable = errors.New("order not available")

// ValidationError carries field-level details. It matches ErrInvalid with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidation returns an empty ValidationError.
func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a problem with field.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Check records msg for field when ok is false.
func (e *ValidationError) Check(ok bool, field, msg string) {
	if !ok {
		e.Add(field, msg)
	}
}

// Err returns e if any field failed, nil otherwise.
func (e *ValidationError) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Is makes ValidationError match ErrInvalid.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalid }

// Reason is a business-rule rejection with a specific reason kept for logs.
// It unwraps to its kind, so callers match with errors.Is(err, ErrDriverNotEligible).
type Reason struct {
	Kind   error
	Detail string
}

// Reject builds a Reason.
func Reject(kind error, detail string) error {
	return &Reason{Kind: kind, Detail: detail}
}

func (r *Reason) Error() string { return r.Kind.Error() + ": " + r.Detail }

func (r *Reason) Unwrap() error { return r.Kind }

// ReasonOf returns the specific reason carried by err, if any.
func ReasonOf(err error) (string, bool) {
	var r *Reason
	if errors.As(err, &r) {
		return r.Detail, true
	}
	return "", false
}
