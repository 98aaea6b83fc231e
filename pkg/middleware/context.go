package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/starsandeep/sfsync/pkg/context"
)

// HeaderUserID carries the caller's identity, set by the gateway in front of us.
const HeaderUserID = "X-User-ID"

func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := req.Context()
			ctx = context.SetRequestID(ctx, requestID)
			ctx = context.SetMethod(ctx, req.Method)
			ctx = context.SetRoute(ctx, c.Path())
			ctx = context.SetRemoteIP(ctx, c.RealIP())
			ctx = context.SetUserID(ctx, req.Header.Get(HeaderUserID))
			if sessionID := c.Param("id"); sessionID != "" && isSessionRoute(c.Path()) {
				ctx = context.SetSessionID(ctx, sessionID)
			}

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

func isSessionRoute(path string) bool {
	return strings.HasPrefix(path, "/api/v1/sessions/")
}
