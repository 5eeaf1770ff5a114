// internal/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/ecommerce-backend/internal/i18n"
	"github.com/javajoker/ecommerce-backend/internal/models"
	"github.com/javajoker/ecommerce-backend/internal/utils"
)

var tokenCookie = "access_token"

// SetTokenCookie names the cookie checked when no Authorization header is sent.
func SetTokenCookie(name string) {
	if name != "" {
		tokenCookie = name
	}
}

// TokenCookie returns the configured auth cookie name.
func TokenCookie() string {
	return tokenCookie
}

func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := extractToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, i18n.KeyAuthRequired)
			return
		}

		claims, err := utils.ValidateJWT(token)
		if err != nil {
			if utils.IsTokenExpired(err) {
				abort(c, http.StatusUnauthorized, i18n.KeyAuthTokenExpired)
				return
			}
			abort(c, http.StatusUnauthorized, i18n.KeyAuthInvalidToken)
			return
		}

		if !setIdentity(c, claims) {
			abort(c, http.StatusUnauthorized, i18n.KeyAuthInvalidToken)
			return
		}
		c.Next()
	}
}

// AdminRequired must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return RequireRole(models.UserRoleAdmin)
}

// RequireRole lets the request through only when the caller holds one of roles.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := utils.GetUserRoleFromContext(c)
		for _, allowed := range roles {
			if role == string(allowed) {
				c.Next()
				return
			}
		}
		utils.ForbiddenResponse(c, "")
		c.Abort()
	}
}

// OptionalAuth sets the identity when a valid token is present and ignores it otherwise.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := extractToken(c); ok {
			if claims, err := utils.ValidateJWT(token); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) (string, bool) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	if cookie, err := c.Cookie(tokenCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return "", false
}

func setIdentity(c *gin.Context, claims *utils.JWTClaims) bool {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return false
	}

	c.Set(utils.ContextKeyUserID, userID)
	c.Set(utils.ContextKeyUserRole, claims.Role)
	c.Set(utils.ContextKeyEmail, claims.Email)
	return true
}

func abort(c *gin.Context, status int, key string) {
	utils.ErrorResponse(c, status, utils.T(c, key), nil)
	c.Abort()
}
