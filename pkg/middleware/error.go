package middleware

import (
	"net/http"

	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error renders the last error attached by a handler.
func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil || c.Writer.Written() {
			return
		}

		be := errutil.FromError(last.Err)
		status := be.Code.HTTPStatus()
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request.Context()).Error("request failed",
				zap.String("path", c.FullPath()),
				zap.String("reason", be.Reason),
				zap.Error(last.Err),
			)
		}

		c.AbortWithStatusJSON(status, be.JSON())
	}
}
