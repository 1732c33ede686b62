package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const nicknameKey = "nickname"

// IdentityMiddleware resolves a bearer token to the caller's nickname. Requests
// without an Authorization header pass through and keep the identity given in
// their body.
func (s *Server) IdentityMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" || s.tokens == nil {
				return next(c)
			}

			nickname, err := s.tokens.Validate(authHeader)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized: Invalid or expired token"})
			}

			c.Set(nicknameKey, nickname)
			return next(c)
		}
	}
}

// actor returns the authenticated nickname if there is one, else fallback.
func actor(c echo.Context, fallback string) string {
	if nickname, ok := c.Get(nicknameKey).(string); ok && nickname != "" {
		return nickname
	}
	return fallback
}
