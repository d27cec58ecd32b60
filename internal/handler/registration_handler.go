package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Igor-Vicente/English.Registration.API/internal/dto"
	"github.com/Igor-Vicente/English.Registration.API/internal/service"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/response"
)

// MaxProfileRequestBytes caps profile create/update requests.
const MaxProfileRequestBytes = 1 << 20

type profileService interface {
	Get(ctx context.Context, userID string) (*dto.ProfileResponse, error)
	Create(ctx context.Context, userID string, req dto.ProfileRequest, image *service.ImageUpload) (*dto.ProfileResponse, error)
	Update(ctx context.Context, userID string, req dto.ProfileRequest, image *service.ImageUpload) (*dto.ProfileResponse, error)
	Delete(ctx context.Context, userID string) error
	Nearby(ctx context.Context, userID string, query dto.NearbyQuery) ([]dto.ProfileResponse, error)
}

// RegistrationHandler serves the learner profile endpoints.
type RegistrationHandler struct {
	service profileService
}

// NewRegistrationHandler constructs the handler.
func NewRegistrationHandler(svc profileService) *RegistrationHandler {
	return &RegistrationHandler{service: svc}
}

// Get godoc
// @Summary Current user's profile
// @Tags Registration
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponse
// @Failure 404 {object} response.Failure
// @Router /registration [get]
func (h *RegistrationHandler) Get(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Create godoc
// @Summary Complete registration
// @Tags Registration
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Name"
// @Param birthDate formData string true "Birth date (YYYY-MM-DD)"
// @Param aboutMe formData string true "About me"
// @Param city formData string true "City"
// @Param image formData file true "Profile picture"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} response.Failure
// @Router /registration [post]
func (h *RegistrationHandler) Create(c *gin.Context) {
	h.save(c, h.service.Create)
}

// Update godoc
// @Summary Update profile
// @Tags Registration
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Name"
// @Param birthDate formData string true "Birth date (YYYY-MM-DD)"
// @Param aboutMe formData string true "About me"
// @Param city formData string true "City"
// @Param image formData file false "New profile picture"
// @Success 200 {object} dto.ProfileResponse
// @Failure 400 {object} response.Failure
// @Router /registration [put]
func (h *RegistrationHandler) Update(c *gin.Context) {
	h.save(c, h.service.Update)
}

// Delete godoc
// @Summary Delete profile and account
// @Tags Registration
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} response.Failure
// @Router /registration [delete]
func (h *RegistrationHandler) Delete(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Nearby godoc
// @Summary Learners around a position
// @Description Stores the caller's position and lists profiles within range metres (default 50000)
// @Tags Registration
// @Produce json
// @Security BearerAuth
// @Param latitude query number true "Latitude"
// @Param longitude query number true "Longitude"
// @Param range query int false "Range in metres"
// @Success 200 {array} dto.ProfileResponse
// @Failure 400 {object} response.Failure
// @Router /registration/users/range [get]
func (h *RegistrationHandler) Nearby(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.NearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid coordinates"))
		return
	}
	res, err := h.service.Nearby(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

type saveFunc func(ctx context.Context, userID string, req dto.ProfileRequest, image *service.ImageUpload) (*dto.ProfileResponse, error)

func (h *RegistrationHandler) save(c *gin.Context, save saveFunc) {
	userID, err := currentUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxProfileRequestBytes)
	var req dto.ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		if tooLarge(err) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form"))
		return
	}

	var image *service.ImageUpload
	header, err := c.FormFile("image")
	switch {
	case err == nil:
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable image"))
			return
		}
		defer file.Close()
		image = &service.ImageUpload{Reader: file, Size: header.Size}
	case errors.Is(err, http.ErrMissingFile):
	case tooLarge(err):
		response.Error(c, appErrors.ErrPayloadTooLarge)
		return
	default:
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid form"))
		return
	}

	res, err := save(c.Request.Context(), userID, req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
