package log

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ContextKeySessionID is where the session middleware stores the request's
// session id, so request logs can be correlated per session.
const ContextKeySessionID = "session_id"

// GinLogger returns a Gin middleware that logs requests using zerolog
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		// Process request
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		if raw != "" {
			path = path + "?" + raw
		}

		// Log based on status code
		event := Info()
		if status >= 500 {
			event = Error()
		} else if status >= 400 {
			event = Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP())

		if sid := c.GetString(ContextKeySessionID); sid != "" {
			event.Str("session", shortID(sid))
		}
		if errorMessage != "" {
			event.Str("error", errorMessage)
		}

		event.Msg("request")
	}
}

// shortID keeps session ids out of logs in full
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}
