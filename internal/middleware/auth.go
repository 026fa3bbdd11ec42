package middleware

import (
	"net/http"
	"strings"

	"github.com/GustaavooC/mooda-sub000/pkg/jwtutil"
	"github.com/GustaavooC/mooda-sub000/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Context keys set by the auth middleware
const (
	ContextClaims   = "claims"
	ContextUserID   = "user_id"
	ContextTenantID = "tenant_id"
)

// JWTAuthMiddleware creates a middleware that validates JWT tokens
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			// Extract the token from the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization header"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// Store the claims in the context for later use
			c.Set(ContextClaims, claims)
			c.Set(ContextUserID, claims.UserID)
			if claims.TenantID != "" {
				c.Set(ContextTenantID, claims.TenantID)
			}
			log.Debug("JWT token validated",
				zap.String("user_id", claims.UserID),
				zap.String("email", claims.Email))

			return next(c)
		}
	}
}

// RequireTenantContext rejects requests whose token carries no tenant scope
func RequireTenantContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(ContextClaims).(*jwtutil.UserClaims)
		if !ok || claims.TenantID == "" {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "tenant context required"})
		}
		return next(c)
	}
}

// RequirePlatformAdmin rejects requests from non-platform-admin sessions
func RequirePlatformAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(ContextClaims).(*jwtutil.UserClaims)
		if !ok || !claims.PlatformAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "platform admin access required"})
		}
		return next(c)
	}
}

// ClaimsFromEcho retrieves validated claims from the Echo context
func ClaimsFromEcho(c echo.Context) (*jwtutil.UserClaims, bool) {
	claims, ok := c.Get(ContextClaims).(*jwtutil.UserClaims)
	return claims, ok
}
