package shared

import "errors"

// Domain error codes
const (
	CodeInvalidInput = "INVALID_INPUT"
	CodeInvalidState = "INVALID_STATE"
)

// DomainError is a rule violation whose Message is shown to the shopper as is
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

// NewDomainError creates a domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// InvalidInput reports a form value the shopper must correct
func InvalidInput(message string) *DomainError {
	return NewDomainError(CodeInvalidInput, message)
}

// InvalidState reports an action the current state does not allow
func InvalidState(message string) *DomainError {
	return NewDomainError(CodeInvalidState, message)
}

// HasCode reports whether err wraps a domain error with code
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// Sentinels for errors.Is checks
var (
	ErrInvalidInput = InvalidInput("Invalid input provided")
	ErrInvalidState = InvalidState("Operation not allowed in current state")
)
