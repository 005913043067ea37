package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/punch"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidAPIKey):
		Unauthorized(w, "Invalid API key")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Punch domain errors
	case errors.Is(err, punch.ErrSnapshotUnavailable):
		ServiceUnavailable(w, "Attendance data has not been ingested yet")
	case errors.Is(err, punch.ErrSourceUnavailable):
		ServiceUnavailable(w, "Attendance source is unreachable")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
