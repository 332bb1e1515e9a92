package server

import (
	"net/http"
	"strings"

	"socio-service/internal/domain"
	"socio-service/internal/token"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

// Echo context keys for the authenticated staff identity.
const (
	staffIDKey       = "staff_id"
	staffUsernameKey = "staff_username"
	staffRoleKey     = "staff_role"
)

// StaffID returns the authenticated staff user's id, or "" when the request
// was not authenticated.
func StaffID(c echo.Context) string {
	id, _ := c.Get(staffIDKey).(string)
	return id
}

// StaffRole returns the authenticated staff user's role.
func StaffRole(c echo.Context) string {
	role, _ := c.Get(staffRoleKey).(string)
	return role
}

// RequireAuth validates the bearer token and stores the staff identity on
// the request context.
func RequireAuth(tokens *token.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || tokenString == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "access denied, no token provided",
				})
			}

			claims, err := tokens.Validate(tokenString)
			if err != nil {
				log.WithError(err).Warn("Rejected request with invalid token")
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "invalid token",
				})
			}

			c.Set(staffIDKey, claims.StaffID)
			c.Set(staffUsernameKey, claims.Username)
			c.Set(staffRoleKey, claims.Role)

			return next(c)
		}
	}
}

// RequireAdmin gates an endpoint to admin staff. Must run after RequireAuth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if StaffRole(c) != domain.RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "admin permissions required",
				})
			}
			return next(c)
		}
	}
}
