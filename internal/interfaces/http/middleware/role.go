package middleware

import (
	"net/http"

	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/domain/identity"
	"github.com/VMKayser/Panificadora-Nancy-sub002/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role guards
type RoleConfig struct {
	Logger *zap.Logger
}

// RequireRoles lets the request through when the caller holds one of roles.
// Must run after JWTAuthMiddleware.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return RequireRolesWithConfig(RoleConfig{}, roles...)
}

// RequireRolesWithConfig is RequireRoles with logging
func RequireRolesWithConfig(cfg RoleConfig, roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		if !claims.HasRole(roles...) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Role check failed",
					zap.String("user_id", claims.UserID),
					zap.String("role", string(claims.Role)),
					zap.Any("required_any", roles),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "You do not have access to this resource", GetRequestID(c)))
			return
		}
		c.Next()
	}
}

// RequireStaff allows any employee role
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(identity.RoleAdmin, identity.RoleVendor, identity.RoleBaker)
}
