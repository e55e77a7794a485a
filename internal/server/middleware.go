// internal/server/middleware.go
package server

import (
	"crypto/subtle"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "support-chatbot/internal/common/errors"
	"support-chatbot/internal/common/logger"
	"support-chatbot/internal/common/metrics"
)

const (
	requestIDHeader  = "X-Request-ID"
	adminTokenHeader = "X-Admin-Token"
	requestIDKey     = "requestId"
)

// CORS allows the configured origins. With none configured every origin is allowed.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", requestIDHeader, adminTokenHeader},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// RequestLogger tags each request with an id and logs it once finished.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()

		fields := map[string]interface{}{
			"requestId": requestID,
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"duration":  time.Since(start).String(),
		}
		if status >= 500 {
			log.Error("HTTP request", fields)
		} else {
			log.Info("HTTP request", fields)
		}
	}
}

// AdminToken rejects requests whose X-Admin-Token does not match token. An empty token disables the check.
func AdminToken(token string, errs *apperrors.ErrorHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		given := c.GetHeader(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			status, body := errs.Handle(c.FullPath(), apperrors.NewForbiddenError("missing or invalid "+adminTokenHeader))
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Next()
	}
}
