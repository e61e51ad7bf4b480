// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/airwatch-bd/airwatch/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Detail text is limited to shared.UserSafeMessage so store errors never leak.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrNotAuthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrStoreUnavailable):
		Problem(w, http.StatusServiceUnavailable, "Service Unavailable", shared.GenericFailureMessage)
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
