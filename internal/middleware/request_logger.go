package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mantonx/titleseeker/internal/logger"
)

// quietPaths are polled often enough that logging them drowns the rest
var quietPaths = map[string]bool{
	"/api/health":          true,
	"/api/list-endpoints/": true,
}

// RequestLogger writes one line per served request. Server errors are
// logged at warn level, everything else at debug.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"took", time.Since(start).Round(time.Microsecond),
			"bytes", c.Writer.Size(),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			args = append(args, "query", q)
		}
		if user := UserFromContext(c); user != nil {
			args = append(args, "user", user.UUID)
		}

		if status >= http.StatusInternalServerError {
			logger.Warn("Request served", args...)
			return
		}
		logger.Debug("Request served", args...)
	}
}

// ErrorLogger logs errors handlers attached with c.Error
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		for _, e := range c.Errors {
			logger.Error("Handler error", "path", c.Request.URL.Path, "error", e.Err)
		}
	}
}
