package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/jwt_auth/pkg/logging"
)

type Config struct {
	Skipper middleware.Skipper
	Logger  *slog.Logger
}

// SkipHealth skips liveness and readiness probes.
func SkipHealth(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/health/")
}

func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return RequestLoggerWithConfig(Config{Logger: base})
}

// RequestLoggerWithConfig puts a request-scoped logger into the request
// context and writes one line per request. Errors are rendered here so
// the logged status is the one the client saw.
func RequestLoggerWithConfig(cfg Config) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = middleware.DefaultSkipper
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := cfg.Logger.With(
				"method", req.Method,
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			if cfg.Skipper(c) {
				return nil
			}

			status := c.Response().Status
			dur := time.Since(start)
			attrs := []any{"status", status, "duration_ms", dur.Milliseconds(), "route", c.Path()}

			switch {
			case status >= 500:
				l.Error("request completed", append(attrs, "error", errStr(err))...)
			case status >= 400:
				l.Warn("request completed", attrs...)
			default:
				l.Info("request completed", append(attrs, "bytes", c.Response().Size)...)
			}
			return nil
		}
	}
}

func errStr(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
