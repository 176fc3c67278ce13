package kafka

import "errors"

// skipError marks a handler error that redelivery cannot fix.
type skipError struct{ err error }

func (e *skipError) Error() string { return "kafka: skip message: " + e.err.Error() }

func (e *skipError) Unwrap() error { return e.err }

// Permanent wraps err so the consumer commits the message instead of
// retrying it. A nil err stays nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &skipError{err: err}
}

// IsPermanent reports whether err, or any error it wraps, came from Permanent.
func IsPermanent(err error) bool {
	var s *skipError
	return errors.As(err, &s)
}
