// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ecommerce-backend/internal/apperrors"
	"github.com/javajoker/ecommerce-backend/internal/i18n"
)

const (
	ContextKeyLang     = "lang"
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
	ContextKeyEmail    = "email"
)

type APIResponse struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
	Meta       interface{} `json:"meta,omitempty"`
}

// T translates key for the language negotiated on this request.
func T(c *gin.Context, key string, args ...interface{}) string {
	return i18n.T(GetLangFromContext(c), key, args...)
}

func SuccessResponse(c *gin.Context, data interface{}, messageKey string, args ...interface{}) {
	respond(c, http.StatusOK, data, messageKey, args...)
}

func SuccessResponseWithMeta(c *gin.Context, data interface{}, meta interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Data:       data,
		Message:    T(c, i18n.KeySuccess),
		Meta:       meta,
	})
}

func CreatedResponse(c *gin.Context, data interface{}, messageKey string, args ...interface{}) {
	respond(c, http.StatusCreated, data, messageKey, args...)
}

func respond(c *gin.Context, status int, data interface{}, messageKey string, args ...interface{}) {
	if messageKey == "" {
		messageKey = i18n.KeySuccess
	}
	c.JSON(status, APIResponse{
		Success:    true,
		StatusCode: status,
		Data:       data,
		Message:    T(c, messageKey, args...),
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string, errors interface{}) {
	c.JSON(statusCode, APIResponse{
		Success:    false,
		StatusCode: statusCode,
		Message:    message,
		Errors:     errors,
	})
}

func BadRequestResponse(c *gin.Context, message string, errors interface{}) {
	if message == "" {
		message = T(c, i18n.KeyValidationInvalid, "request")
	}
	ErrorResponse(c, http.StatusBadRequest, message, errors)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	if message == "" {
		message = T(c, i18n.KeyAuthRequired)
	}
	ErrorResponse(c, http.StatusUnauthorized, message, nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	if message == "" {
		message = T(c, i18n.KeyAdminAccessDenied)
	}
	ErrorResponse(c, http.StatusForbidden, message, nil)
}

func ValidationErrorResponse(c *gin.Context, errors []ValidationError) {
	ErrorResponse(c, http.StatusBadRequest, T(c, i18n.KeyValidationInvalid, "input"), errors)
}

// BindError reports a request body that failed to decode or validate.
func BindError(c *gin.Context, err error) {
	if fieldErrors := GetValidationErrors(err); len(fieldErrors) > 0 {
		ValidationErrorResponse(c, fieldErrors)
		return
	}
	BadRequestResponse(c, "", nil)
}

// HandleError maps a service error onto the response envelope. Internal
// failures are logged with their cause and answered with a generic message.
func HandleError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind == apperrors.KindInternal {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Errorf("request failed: %+v", err)
		ErrorResponse(c, http.StatusInternalServerError, T(c, i18n.KeyInternalError), nil)
		return
	}

	var details interface{}
	if fieldErrors := GetValidationErrors(err); len(fieldErrors) > 0 {
		details = fieldErrors
	}
	ErrorResponse(c, appErr.Kind.HTTPStatus(), T(c, appErr.Message, appErr.Args...), details)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	SetPaginationHeaders(c, result)
	SuccessResponseWithMeta(c, result.Data, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

func GetLangFromContext(c *gin.Context) string {
	if lang, exists := c.Get(ContextKeyLang); exists {
		if langStr, ok := lang.(string); ok {
			return langStr
		}
	}
	return i18n.DefaultLanguage()
}

func GetUserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	if userID, exists := c.Get(ContextKeyUserID); exists {
		if id, ok := userID.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

func GetUserRoleFromContext(c *gin.Context) (string, bool) {
	if role, exists := c.Get(ContextKeyUserRole); exists {
		if roleStr, ok := role.(string); ok {
			return roleStr, true
		}
	}
	return "", false
}

// IsAdmin reports whether the authenticated caller carries the admin role.
func IsAdmin(c *gin.Context) bool {
	role, _ := GetUserRoleFromContext(c)
	return role == "admin"
}

// ParseUUIDParam reads a path parameter as a UUID, answering 400 when malformed.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequestResponse(c, T(c, i18n.KeyInvalidID), nil)
		return uuid.Nil, false
	}
	return id, true
}
