// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

const (
	maxAuditBody = 64 << 10
	redacted     = "[REDACTED]"
)

// AuditRecorder persists audit entries. Implementations must not block the caller
// on failure.
type AuditRecorder interface {
	RecordAudit(ctx context.Context, entry *models.AuditLog)
}

var sensitiveFields = map[string]struct{}{
	"password":         {},
	"current_password": {},
	"new_password":     {},
	"token":            {},
	"refresh_token":    {},
}

// AuditLogMiddleware records every mutating request asynchronously.
func AuditLogMiddleware(recorder AuditRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip reads, preflights and health checks
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodOptions ||
			c.Request.Method == http.MethodHead || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		var requestBody []byte
		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(requestBody), c.Request.Body))
		}

		c.Next()

		entry := &models.AuditLog{
			Action:       c.Request.Method + " " + c.FullPath(),
			ResourceType: extractResourceType(c.Request.URL.Path),
			StatusCode:   c.Writer.Status(),
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			Payload:      redactPayload(requestBody),
		}
		if c.FullPath() == "" {
			entry.Action = c.Request.Method + " " + c.Request.URL.Path
		}
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			entry.UserID = &userID
		}
		// Extract resource ID from URL if present
		if resourceID, ok := extractResourceID(c.Request.URL.Path); ok {
			entry.ResourceID = &resourceID
		}

		// The request context is cancelled once the handler returns.
		go recorder.RecordAudit(context.Background(), entry)
	}
}

// RequestLogger logs one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if userID, ok := utils.GetUserIDFromContext(c); ok {
			fields["user_id"] = userID.String()
		}

		entry := logrus.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("Request processed")
		case status >= http.StatusBadRequest:
			entry.Warn("Request processed")
		default:
			entry.Info("Request processed")
		}
	}
}

func redactPayload(body []byte) models.JSONB {
	if len(body) == 0 {
		return nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	for key := range payload {
		if _, ok := sensitiveFields[strings.ToLower(key)]; ok {
			payload[key] = redacted
		}
	}
	return models.JSONB(payload)
}

// extractResourceType returns the first segment after the version prefix,
// e.g. "orders" for /api/v1/orders/:id/cancel.
func extractResourceType(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, part := range parts {
		if isVersionSegment(part) && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	if parts[0] != "" {
		return parts[0]
	}
	return "unknown"
}

func isVersionSegment(part string) bool {
	if len(part) < 2 || part[0] != 'v' {
		return false
	}
	for _, r := range part[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func extractResourceID(path string) (uuid.UUID, bool) {
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if id, err := uuid.Parse(part); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}
