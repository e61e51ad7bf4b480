package registration

import "fmt"

// ValidationError reports the first registration rule a submission broke.
type ValidationError struct {
	Field  string
	Reason string
	msg    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("registration: %s %s", e.Field, e.Reason)
}

// UserMessage implements shared.UserFacingError.
func (e *ValidationError) UserMessage() string {
	return e.msg
}

type workflowError struct {
	text string
	msg  string
}

func (e *workflowError) Error() string       { return e.text }
func (e *workflowError) UserMessage() string { return e.msg }

var (
	// ErrDuplicateEmail is returned when the email already belongs to an account.
	ErrDuplicateEmail error = &workflowError{
		text: "registration: duplicate email",
		msg:  "This email is already registered. Please use a different email.",
	}
	// ErrExpiredStaging is returned when confirming without staged data.
	ErrExpiredStaging error = &workflowError{
		text: "registration: no staged registration",
		msg:  "Form data expired. Please submit the form again.",
	}
)

const (
	ReasonRequired = "required"
	ReasonMismatch = "mismatch"
	ReasonFormat   = "format"
	ReasonUnknown  = "unknown"
)

func newValidationError(field, reason, msg string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, msg: msg}
}
