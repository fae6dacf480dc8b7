package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

// Health and scrape routes are only logged at debug level.
var quietPrefixes = []string{"/health/", "/metrics"}

// RequestLogger attaches a per-request logger to the request context and
// emits one "request completed" line when the handler returns. A handler
// error is rendered here, so the logged status is the one sent.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = res.Header().Get(echo.HeaderXRequestID)
			}

			attrs := []any{
				slog.String("method", req.Method),
				slog.String("route", c.Path()),
				slog.String("url", req.URL.Path),
				slog.String("remote_ip", c.RealIP()),
			}
			if rid != "" {
				attrs = append(attrs, slog.String("request_id", rid))
				res.Header().Set(echo.HeaderXRequestID, rid)
			}
			l := base.With(attrs...)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Echo().HTTPErrorHandler(err, c)
			}

			// the handler may have enriched the logger (caller identity)
			l = logging.FromContext(c.Request().Context())

			out := []slog.Attr{
				slog.Int("status", res.Status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("bytes_in", req.ContentLength),
				slog.Int64("bytes_out", res.Size),
			}
			if err != nil {
				out = append(out, slog.String("error", err.Error()))
			}
			l.LogAttrs(c.Request().Context(), levelFor(c.Path(), res.Status), "request completed", out...)
			return nil
		}
	}
}

func levelFor(route string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	for _, p := range quietPrefixes {
		if strings.HasPrefix(route, p) {
			return slog.LevelDebug
		}
	}
	return slog.LevelInfo
}
