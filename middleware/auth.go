package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"openshelf_go/config"
	"openshelf_go/utils"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID      = "user_id"
	ContextUsername    = "username"
	ContextPermissions = "permissions"
)

// AuthMiddleware validates the Bearer token and stores the authenticated
// user in the request context. Requests without a valid token get 401.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			utils.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}

		claims, err := config.GetJWTService().ValidateToken(token)
		if err != nil {
			utils.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUsername, claims.Username)
		c.Set(ContextPermissions, claims.Permissions)
		c.Next()
	}
}

// OptionalAuth stores the user in the context when a valid Bearer token is
// present, and lets the request through either way. Used by public pages
// that personalize their response, like the book detail's own-review block.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, found := strings.CutPrefix(header, "Bearer "); found && token != "" {
			if claims, err := config.GetJWTService().ValidateToken(token); err == nil {
				c.Set(ContextUserID, claims.UserID)
				c.Set(ContextUsername, claims.Username)
				c.Set(ContextPermissions, claims.Permissions)
			}
		}
		c.Next()
	}
}

// RequirePermission checks the capability string against the authenticated
// user's permissions. Runs after AuthMiddleware; missing capability gets 403.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasPermission(c, permission) {
			utils.Forbidden(c, "missing permission: "+permission)
			c.Abort()
			return
		}
		c.Next()
	}
}

// HasPermission reports whether the request's user holds a capability.
func HasPermission(c *gin.Context, permission string) bool {
	value, exists := c.Get(ContextPermissions)
	if !exists {
		return false
	}
	perms, ok := value.([]string)
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}
