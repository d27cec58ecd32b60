package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Igor-Vicente/English.Registration.API/internal/middleware"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
)

// currentUserID returns the subject of the access token, or an Unauthorized error.
func currentUserID(c *gin.Context) (string, error) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok || claims.Subject == "" {
		return "", appErrors.ErrUnauthorized
	}
	return claims.Subject, nil
}
