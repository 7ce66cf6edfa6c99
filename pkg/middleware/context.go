package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	appctx "github.com/etcsc/warehouse/pkg/context"
)

// HeaderUserID carries the operator identity, validated upstream. The
// service trusts it as-is and stamps it into audit columns and events.
const HeaderUserID = "X-User-ID"

// Context copies request metadata onto the request context so repositories
// and the event emitter can read it without touching echo.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			ctx := appctx.SetRequestID(req.Context(), requestID)
			ctx = appctx.SetUserID(ctx, req.Header.Get(HeaderUserID))
			ctx = appctx.SetMethod(ctx, req.Method)
			ctx = appctx.SetRoute(ctx, req.URL.Path)
			ctx = appctx.SetRemoteIP(ctx, c.RealIP())
			ctx = appctx.SetReferer(ctx, req.Referer())

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
