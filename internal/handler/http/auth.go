package http

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-insight-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/jwt"
)

type AuthHandler interface {
	Token(w http.ResponseWriter, r *http.Request)
}

type authHandlerImpl struct {
	jwtService jwt.Service
	apiKey     string
}

func NewAuthHandler(jwtService jwt.Service, apiKey string) AuthHandler {
	return &authHandlerImpl{
		jwtService: jwtService,
		apiKey:     apiKey,
	}
}

// Token implements AuthHandler. It exchanges the deployment API key for a
// short-lived service token; user identity lives in the main HRIS backend.
func (h *authHandlerImpl) Token(w http.ResponseWriter, r *http.Request) {
	var req auth.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.apiKey)) != 1 {
		response.HandleError(w, auth.ErrInvalidAPIKey)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateServiceToken("dashboard")
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
