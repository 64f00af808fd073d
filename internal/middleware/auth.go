package middleware

import (
	"strings"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/config"
	"healthcare-dashboard/internal/domain"
	"healthcare-dashboard/internal/repository"
	"healthcare-dashboard/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID   = "userID"
	ctxUserRole = "userRole"
)

// AuthMiddleware creates a middleware for JWT authentication. The role is
// read from the stored user rather than the token, so a promotion to
// Doctor takes effect without logging in again.
func AuthMiddleware(cfg *config.Config, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				utils.Unauthorized(c, "User no longer exists")
			} else {
				utils.RespondError(c, err)
			}
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers
		c.Set(ctxUserID, user.ID)
		c.Set(ctxUserRole, user.Role)

		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			utils.InternalServerError(c, "User role not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// GetUserIDFromContext returns the authenticated user's ID.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// GetUserRoleFromContext returns the authenticated user's role.
func GetUserRoleFromContext(c *gin.Context) (domain.Role, bool) {
	userRole, exists := c.Get(ctxUserRole)
	if !exists {
		return "", false
	}
	role, ok := userRole.(domain.Role)
	return role, ok
}

// GetActor returns the authenticated caller as a domain.Actor.
func GetActor(c *gin.Context) (domain.Actor, bool) {
	id, ok := GetUserIDFromContext(c)
	if !ok {
		return domain.Actor{}, false
	}
	role, _ := GetUserRoleFromContext(c)
	return domain.Actor{ID: id, Role: role}, true
}
