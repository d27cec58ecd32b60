package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Igor-Vicente/English.Registration.API/internal/dto"
	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/response"
)

type authService interface {
	SignUp(ctx context.Context, req models.SignUpRequest) (*dto.TokenResponse, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req models.RefreshTokenRequest) (*dto.TokenResponse, error)
	ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

func invalidBody(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request body")
}

// SignUp godoc
// @Summary Register a credential
// @Description Creates the account and returns a token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignUpRequest true "Sign-up payload"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} response.Failure
// @Router /authentication/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}

	res, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// SignIn godoc
// @Summary Authenticate user
// @Description Authenticate by email and password. Repeated failures lock the account for a while.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SignInRequest true "Sign-in payload"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} response.Failure
// @Router /authentication/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}

	res, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// RefreshToken godoc
// @Summary Rotate refresh token
// @Description Exchanges the latest refresh token for a new token pair
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh payload"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} response.Failure
// @Router /authentication/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}

	res, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// ForgotPassword godoc
// @Summary Request a password reset e-mail
// @Tags Authentication
// @Accept json
// @Param payload body models.ForgotPasswordRequest true "Account e-mail"
// @Success 200
// @Failure 400 {object} response.Failure
// @Router /authentication/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil)
}

// ResetPassword godoc
// @Summary Set a new password with a reset code
// @Tags Authentication
// @Accept json
// @Param payload body models.ResetPasswordRequest true "Reset payload"
// @Success 200
// @Failure 400 {object} response.Failure
// @Router /authentication/new-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidBody(err))
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil)
}
