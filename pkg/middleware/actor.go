package middleware

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	appctx "github.com/etcsc/warehouse/pkg/context"
)

// RequireActor rejects mutating requests that carry no user identity. Reads
// pass through so dashboards keep working without a header.
func RequireActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch c.Request().Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			if appctx.GetUserID(c.Request().Context()) == "" {
				return httperror.NewHTTPError(http.StatusUnauthorized, "X-User-ID header is required")
			}

			return next(c)
		}
	}
}
