package server

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weddingrsvp/rsvp/logger"
)

// AdminPasswordHeader carries the admin password on admin requests.
const AdminPasswordHeader = "X-Admin-Password"

// LoggerMiddleware logs HTTP request details.
func LoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}
		c.Next()

		keyvals := []any{
			"method", c.Request.Method,
			"path", path,
			"status_code", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", clientIP(c),
			"body_size", c.Writer.Size(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			keyvals = append(keyvals, "error", errs)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Error("Request failed", keyvals...)
			return
		}
		log.Info("Request completed", keyvals...)
	}
}

// CORSMiddleware allows cross-origin requests from the listed origins.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && slices.Contains(allowedOrigins, origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Accept, Origin, X-Requested-With, X-Real-IP, "+AdminPasswordHeader)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Expose-Headers", WarningHeader)
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// AdminMiddleware rejects requests whose admin password header does not match.
// An empty password rejects everything.
func AdminMiddleware(password string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader(AdminPasswordHeader)
		if password == "" || subtle.ConstantTimeCompare([]byte(given), []byte(password)) != 1 {
			abortWithDetail(c, http.StatusUnauthorized, "Invalid admin password")
			return
		}
		c.Next()
	}
}

// clientIP prefers the X-Real-IP header set by the fronting proxy.
func clientIP(c *gin.Context) string {
	if ip := strings.TrimSpace(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}
	return c.ClientIP()
}
