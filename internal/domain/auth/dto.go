package auth

import (
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/validator"
)

// TokenRequest exchanges the deployment API key for a service token. User
// accounts and SSO live in the main HRIS backend; this service only guards
// its read API.
type TokenRequest struct {
	APIKey string `json:"api_key"`
}

func (r *TokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.APIKey) {
		errs = append(errs, validator.ValidationError{
			Field:   "api_key",
			Message: "api_key is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}
