package recovery

import (
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/Igor-Vicente/English.Registration.API/pkg/errors"
	"github.com/Igor-Vicente/English.Registration.API/pkg/middleware/requestid"
	"github.com/Igor-Vicente/English.Registration.API/pkg/response"
)

// Middleware converts panics into the generic 500 failure body. The panic is
// logged and forwarded to Sentry; no detail reaches the caller.
func Middleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			err, ok := rec.(error)
			if !ok {
				err = fmt.Errorf("%v", rec)
			}

			logger.Error("unhandled panic",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Value(c)),
				zap.Stack("stack"),
			)

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetTag("request_id", requestid.Value(c))
			hub.Scope().SetRequest(c.Request)
			hub.CaptureException(err)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.Abort(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, appErrors.ErrInternal.Message))
		}()
		c.Next()
	}
}

// ReportErrors forwards internal errors attached with c.Error to Sentry once the handler returns.
func ReportErrors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.Writer.Status() < http.StatusInternalServerError {
			return
		}
		for _, ginErr := range c.Errors {
			sentry.CaptureException(ginErr.Err)
		}
	}
}
