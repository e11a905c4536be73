package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"github.com/Ramsey-B/fern/pkg/context"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Context stores the call's request metadata on the request context, echoes
// the request id back in X-Request-Id and tags the server span with it.
func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			route := c.Path()
			if route == "" {
				route = req.URL.Path
			}

			ctx := context.WithRequest(req.Context(), context.Request{
				ID:       id,
				Method:   req.Method,
				Route:    route,
				RemoteIP: c.RealIP(),
			})
			trace.SpanFromContext(ctx).SetAttributes(tracing.AttrRequestID.String(id))

			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
