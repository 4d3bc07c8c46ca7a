package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/12344321abc/romantic-flowers-app/internal/authz"
	"github.com/12344321abc/romantic-flowers-app/pkg/jwtutil"
	"github.com/12344321abc/romantic-flowers-app/pkg/logger"
)

const identityKey = "identity"

// JWTAuthMiddleware validates the bearer token and stores the verified
// identity in the request context.
func JWTAuthMiddleware(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing authorization header")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing authorization header"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid authorization header format"})
			}

			claims, err := jwtUtil.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid or expired token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid or expired token"})
			}

			c.Set(identityKey, authz.Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
				Role:     claims.Role,
			})
			log.Debug("JWT token validated",
				zap.Uint("user_id", claims.UserID),
				zap.String("username", claims.Username))

			return next(c)
		}
	}
}

// IdentityFromEcho returns the identity stored by JWTAuthMiddleware.
func IdentityFromEcho(c echo.Context) (authz.Identity, bool) {
	id, ok := c.Get(identityKey).(authz.Identity)
	return id, ok
}

// RequireAdmin rejects requests whose identity lacks the admin role. It
// must run after JWTAuthMiddleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFromEcho(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Missing identity"})
			}
			if err := authz.RequireAdmin(id); err != nil {
				logger.FromEcho(c).Warn("admin access denied",
					zap.String("username", id.Username),
					zap.String("role", id.Role))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "Not enough permissions"})
			}
			return next(c)
		}
	}
}
