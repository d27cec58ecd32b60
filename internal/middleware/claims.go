package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/response"
)

// RequireClaim only lets requests through when the access token carries name=value.
// Unrecognised claim names never match.
func RequireClaim(name models.ClaimName, value string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if claimValue(claims, name) != value {
			response.Abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}

func claimValue(claims *models.AccessClaims, name models.ClaimName) string {
	switch name {
	case models.ClaimIsAdmin:
		return strconv.FormatBool(claims.IsAdmin)
	default:
		return ""
	}
}
