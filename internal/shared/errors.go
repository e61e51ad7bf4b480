package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthenticated indicates the session carries no user.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrStoreUnavailable wraps failures of Postgres or Redis collaborators.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// GenericFailureMessage is shown whenever a collaborator fails; details go to the log.
const GenericFailureMessage = "Service temporarily unavailable. Please try again later."

// UserFacingError is implemented by errors whose message is safe to display.
type UserFacingError interface {
	error
	UserMessage() string
}

// UserSafeMessage maps err to text that can be rendered to end users.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	var facing UserFacingError
	if errors.As(err, &facing) {
		return facing.UserMessage()
	}
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, ErrNotAuthenticated):
		return "Please log in to continue."
	case errors.Is(err, ErrNotFound):
		return "The requested item was not found."
	default:
		return GenericFailureMessage
	}
}
