package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-insight-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-insight-go/internal/handler/http/response"
	"github.com/go-chi/jwtauth/v5"
)

// AuthRequired guards the read API. Only service access tokens issued by the
// token exchange are accepted; anything else is rejected before the handler
// runs.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			if tokenType, ok := claims["type"].(string); !ok || tokenType != "access" {
				response.HandleError(w, auth.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
