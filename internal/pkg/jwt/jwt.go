package jwt

import (
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Service interface {
	// GenerateServiceToken issues an access token for a dashboard consumer
	// that presented a valid API key.
	GenerateServiceToken(subject string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey            string
	accessExpirationTime string
	tokenAuth            *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessExpirationTime string) Service {
	return &JWTService{
		secretKey:            secretKey,
		accessExpirationTime: accessExpirationTime,
		tokenAuth:            jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateServiceToken(subject string) (string, int64, error) {
	expDuration, err := time.ParseDuration(j.accessExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt := time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"sub":  subject,
		"type": "access",
		"exp":  expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}
