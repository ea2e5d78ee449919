package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ctxSessionID extracts the session id injected by the Auth middleware.
// Its presence proves the middleware ran; a missing id means the route was
// wired without authentication by mistake, so fail closed.
func ctxSessionID(c echo.Context) (string, error) {
	sid, _ := c.Get("sid").(string)
	if sid == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return sid, nil
}
