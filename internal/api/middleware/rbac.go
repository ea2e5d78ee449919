package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireKind restricts a route to the given profile variants. User
// management routes are administrator-only; regular users only see their
// own session.
func RequireKind(allowedKinds ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedKinds))
	for _, k := range allowedKinds {
		allowed[k] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			kind, _ := c.Get("kind").(string)
			if _, ok := allowed[kind]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
