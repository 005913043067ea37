package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-insight-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-insight-go/internal/pkg/jwt"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestAccessExp = "1h"
	handlerTestAPIKey    = "test-api-key"
)

func createAuthHandler() AuthHandler {
	jwtSvc := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	return NewAuthHandler(jwtSvc, handlerTestAPIKey)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestAuthHandler_Token_Success(t *testing.T) {
	handler := createAuthHandler()

	body, _ := json.Marshal(map[string]string{"api_key": handlerTestAPIKey})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Token(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.NotEmpty(t, data["access_token"])
	assert.Equal(t, "Bearer", data["token_type"])
}

func TestAuthHandler_Token_WrongKey(t *testing.T) {
	handler := createAuthHandler()

	body, _ := json.Marshal(map[string]string{"api_key": "nope"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Token(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
}

func TestAuthHandler_Token_MissingKey(t *testing.T) {
	handler := createAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()

	handler.Token(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAuthHandler_Token_MalformedBody(t *testing.T) {
	handler := createAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", bytes.NewReader([]byte(`{not json`)))
	rec := httptest.NewRecorder()

	handler.Token(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
