package router

import (
	"strings"

	"github.com/labstack/echo/v4"

	"marketplace/internal/auth"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/handler"
)

// BearerAuth authenticates the request's bearer token and stores the
// resolved user in context. Clients may send the raw token or prefix it
// with the "Bearer" scheme.
func BearerAuth(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(echo.HeaderAuthorization)
			if after, ok := strings.CutPrefix(token, "Bearer "); ok {
				token = after
			}
			token = strings.TrimSpace(token)

			user, err := tokens.Verify(c.Request().Context(), token)
			if err != nil {
				status, body := apperrors.ToHTTP(err)
				return c.JSON(status, body)
			}

			c.Set(handler.CurrentUserKey, user)
			return next(c)
		}
	}
}
