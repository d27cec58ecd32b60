package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
)

// Failure is the uniform error contract returned by every endpoint.
type Failure struct {
	Success bool     `json:"success"`
	Errors  []string `json:"errors"`
}

// JSON sends a success response carrying the payload as-is.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	if data == nil {
		c.Status(status)
		return
	}
	c.JSON(status, data)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data)
}

// Error sends a failure response converting the error to the common structure.
// Internal errors are recorded on the gin context and answered with a fixed message.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
		appErr = appErrors.ErrInternal
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Failure{Success: false, Errors: appErr.Messages()})
}

// Abort writes the failure response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
