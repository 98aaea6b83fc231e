package middleware

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/starsandeep/sfsync/pkg/context"
	"github.com/starsandeep/sfsync/pkg/metrics"
)

// Logger logs one line per request and records the request metrics.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			if err := next(c); err != nil {
				c.Error(err)
			}
			elapsed := time.Since(start)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			metrics.RecordHTTPRequest(req.Method, route, res.Status, elapsed.Seconds())

			ctx := req.Context()
			fields := context.LogFields(ctx)
			fields["method"] = req.Method
			fields["uri"] = req.RequestURI
			fields["status"] = res.Status
			fields["route"] = route
			fields["user_agent"] = req.UserAgent()
			fields["response_time"] = elapsed.String()
			fields["response_size"] = res.Size

			logger.WithContext(ctx).WithFields(fields).Info("Request")
			return nil
		}
	}
}
