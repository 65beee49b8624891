package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github/chapool/wallet-bridge/internal/util"
)

type LoggerConfig struct {
	Skipper          middleware.Skipper
	Level            zerolog.Level
	LogRequestQuery  bool
	LogRequestHeader bool
}

// Logger attaches a request scoped zerolog logger to the request context and
// logs one line per completed request.
func Logger(config LoggerConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = middleware.DefaultSkipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			req := c.Request()
			res := c.Response()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}

			l := log.With().
				Str("id", id).
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Logger()

			ctx := context.WithValue(req.Context(), util.CTXKeyRequestID, id)
			c.SetRequest(req.WithContext(l.WithContext(ctx)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			ev := l.WithLevel(config.Level)
			if res.Status >= 500 {
				ev = l.Error()
			}

			ev = ev.Int("status", res.Status).
				Int64("bytes_out", res.Size).
				Dur("duration", time.Since(start))

			if config.LogRequestQuery {
				ev = ev.Str("query", req.URL.RawQuery)
			}
			if config.LogRequestHeader {
				ev = ev.Interface("header", req.Header)
			}
			if err != nil {
				ev = ev.Err(err)
			}

			ev.Msg("http_request")

			return nil
		}
	}
}
