package collection

import "fmt"

// StatusError is an error carrying the HTTP status an adapter should
// reply with - authorization failures and not-found precondition
// failures are reported this way.
type StatusError struct {
	Message string
	Status  int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// NewStatusError builds a StatusError with a formatted message.
func NewStatusError(status int, format string, args ...interface{}) *StatusError {
	return &StatusError{Message: fmt.Sprintf(format, args...), Status: status}
}

// ValidationErrors is the wire shape shared by schema errors and
// script-reported domain errors. They are indistinguishable to the
// client, and this package does not record which of the two produced
// a given response either.
type ValidationErrors map[string]string
