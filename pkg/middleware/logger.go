package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/pkg/context"
)

// quietRoutes are polled by orchestrators and scrapers and only logged at debug.
var quietRoutes = []string{"/metrics", "/api/v1/health"}

func quiet(route string) bool {
	for _, prefix := range quietRoutes {
		if strings.HasPrefix(route, prefix) {
			return true
		}
	}
	return false
}

// Logger logs one line per API call. Server errors log at error, client
// errors at warn.
func Logger(logger ectologger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			ctx := c.Request().Context()
			r, ok := context.RequestFrom(ctx)
			if !ok {
				r = context.Request{Method: c.Request().Method, Route: c.Path(), RemoteIP: c.RealIP()}
			}
			res := c.Response()

			fields := r.Fields()
			fields["status"] = res.Status
			fields["latency_ms"] = time.Since(start).Milliseconds()
			fields["bytes_out"] = res.Size
			if q := c.QueryString(); q != "" {
				fields["query"] = q
			}
			log := logger.WithContext(ctx).WithFields(fields)

			switch {
			case res.Status >= http.StatusInternalServerError:
				log.Error("API call failed")
			case res.Status >= http.StatusBadRequest:
				log.Warn("API call rejected")
			case quiet(r.Route):
				log.Debug("API call")
			default:
				log.Info("API call")
			}
			return nil
		}
	}
}
