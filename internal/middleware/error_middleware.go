package middleware

import (
	"net/http"

	"asset-relay/internal/transport/httpdto"
	"asset-relay/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler is the outermost catch for errors handlers attached via
// c.Error without writing a response. Internal detail is logged, never sent.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.Errorf("request error: %s", err.Error())
		}
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("Internal server error"))
	}
}
