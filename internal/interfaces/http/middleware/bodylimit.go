package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/retail/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// BodyTooLargeMessage answers a post whose declared size exceeds the limit
const BodyTooLargeMessage = "The submitted form is too large."

// BodyLimit caps form posts at maxBytes. A declared oversize body is refused
// with 413 before anything reads it; a body of unknown length is cut off
// while binding reads it, so the binding fails and the handler reports the
// form as invalid. A non-positive maxBytes disables the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			logger.GetGinLogger(c).Warn("Form post too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("limit", maxBytes),
			)
			c.Header("Connection", "close")
			c.String(http.StatusRequestEntityTooLarge, BodyTooLargeMessage)
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
