package zoneapi

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"go.uber.org/zap"
)

// requestIDHeader carries the ID assigned by RequestID.
const requestIDHeader = "X-Request-Id"

// RequestID assigns every request a fresh UUID and exposes it on the
// response, so client reports can be correlated with server logs.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			c.Response().Header().Set(requestIDHeader, uuid.NewString())
			return next(c)
		}
	}
}

// AccessLog writes one log line per request.
func AccessLog(log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			req := c.Request()
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Duration("took", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(requestIDHeader)),
			}
			if err != nil {
				fields = append(fields, zap.Error(err))
			}
			log.Info("request", fields...)
			return err
		}
	}
}
