package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Igor-Vicente/English.Registration.API/internal/dto"
	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/response"
)

type authServiceMock struct {
	tokens    *dto.TokenResponse
	err       error
	lastReset models.ResetPasswordRequest
	calls     int
}

func (m *authServiceMock) SignUp(ctx context.Context, req models.SignUpRequest) (*dto.TokenResponse, error) {
	m.calls++
	return m.tokens, m.err
}

func (m *authServiceMock) SignIn(ctx context.Context, req models.SignInRequest) (*dto.TokenResponse, error) {
	m.calls++
	return m.tokens, m.err
}

func (m *authServiceMock) Refresh(ctx context.Context, req models.RefreshTokenRequest) (*dto.TokenResponse, error) {
	m.calls++
	return m.tokens, m.err
}

func (m *authServiceMock) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	m.calls++
	return m.err
}

func (m *authServiceMock) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	m.calls++
	m.lastReset = req
	return m.err
}

func jsonContext(t *testing.T, method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var payload []byte
	switch v := body.(type) {
	case string:
		payload = []byte(v)
	default:
		var err error
		payload, err = json.Marshal(v)
		require.NoError(t, err)
	}
	req, _ := http.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeFailure(t *testing.T, w *httptest.ResponseRecorder) response.Failure {
	t.Helper()
	var failure response.Failure
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &failure))
	return failure
}

func TestAuthHandlerSignInReturnsTokens(t *testing.T) {
	svc := &authServiceMock{tokens: &dto.TokenResponse{AccessToken: "access", RefreshToken: "refresh"}}
	handler := NewAuthHandler(svc)
	c, w := jsonContext(t, http.MethodPost, "/authentication/signin", models.SignInRequest{Email: "a@b.com", Password: "Secret123"})

	handler.SignIn(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "access", body.AccessToken)
	assert.Equal(t, "refresh", body.RefreshToken)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestAuthHandlerMalformedBody(t *testing.T) {
	svc := &authServiceMock{}
	handler := NewAuthHandler(svc)

	cases := map[string]func(*gin.Context){
		"signup":  handler.SignUp,
		"signin":  handler.SignIn,
		"refresh": handler.RefreshToken,
		"forgot":  handler.ForgotPassword,
		"reset":   handler.ResetPassword,
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			c, w := jsonContext(t, http.MethodPost, "/authentication", "invalid")
			fn(c)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, decodeFailure(t, w).Success)
		})
	}
	assert.Zero(t, svc.calls)
}

func TestAuthHandlerLockedOutMessage(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{err: appErrors.ErrAccountLocked})
	c, w := jsonContext(t, http.MethodPost, "/authentication/signin", models.SignInRequest{Email: "a@b.com", Password: "x"})

	handler.SignIn(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"User temporarily blocked due to invalid attempts"}, decodeFailure(t, w).Errors)
}

func TestAuthHandlerValidationMessages(t *testing.T) {
	err := appErrors.WithMessages(appErrors.ErrValidation, "Invalid e-mail", "Passwords do not match")
	handler := NewAuthHandler(&authServiceMock{err: err})
	c, w := jsonContext(t, http.MethodPost, "/authentication/signup", models.SignUpRequest{Email: "bad"})

	handler.SignUp(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"Invalid e-mail", "Passwords do not match"}, decodeFailure(t, w).Errors)
}

func TestAuthHandlerInternalErrorIsMasked(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{err: assert.AnError})
	c, w := jsonContext(t, http.MethodPost, "/authentication/refresh-token", models.RefreshTokenRequest{RefreshToken: "t"})

	handler.RefreshToken(c)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, appErrors.ErrInternal.Messages(), decodeFailure(t, w).Errors)
	assert.Len(t, c.Errors, 1)
}

func TestAuthHandlerForgotPasswordHasNoBody(t *testing.T) {
	handler := NewAuthHandler(&authServiceMock{})
	c, w := jsonContext(t, http.MethodPost, "/authentication/forgot-password", models.ForgotPasswordRequest{Email: "a@b.com"})

	handler.ForgotPassword(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestAuthHandlerResetPasswordPassesPayload(t *testing.T) {
	svc := &authServiceMock{}
	handler := NewAuthHandler(svc)
	payload := models.ResetPasswordRequest{UserID: "u1", Code: "abc", Password: "Secret123", ConfirmPassword: "Secret123"}
	c, w := jsonContext(t, http.MethodPost, "/authentication/new-password", payload)

	handler.ResetPassword(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, svc.lastReset)
}
