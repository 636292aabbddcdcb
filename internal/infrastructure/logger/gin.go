package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ginLoggerKey = "logger"

// PanicMessage is the body sent when a handler panics
const PanicMessage = "Something went wrong. Please try again."

// AccessLog attaches a request-scoped logger to the gin and request contexts
// and writes one entry per request once the handler chain finishes.
// Successful requests to quiet paths (health checks, scrapes) are logged at debug.
func AccessLog(base *zap.Logger, quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		requestID := c.GetString("request_id")

		reqLog := base.With(
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
		)
		c.Set(ginLoggerKey, reqLog)
		c.Request = c.Request.WithContext(
			WithRequestID(WithContext(c.Request.Context(), reqLog), requestID))

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if route := c.FullPath(); route != "" && route != path {
			fields = append(fields, zap.String("route", route))
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if status >= 300 && status < 400 {
			fields = append(fields, zap.String("location", c.Writer.Header().Get("Location")))
		}
		if id := GetUserID(c.Request.Context()); id != 0 {
			fields = append(fields, zap.Int64("user_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		level := zapcore.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zapcore.WarnLevel
		default:
			if _, ok := quiet[path]; ok {
				level = zapcore.DebugLevel
			}
		}
		if ce := reqLog.Check(level, "HTTP Request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// Recovery turns a handler panic into a logged 500 with a plain message
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			Enrich(c.Request.Context(), base).Error("Panic recovered",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("panic", rec),
				zap.Stack("stacktrace"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.Header("Content-Type", "text/plain; charset=utf-8")
			c.AbortWithStatus(http.StatusInternalServerError)
			_, _ = c.Writer.WriteString(PanicMessage)
		}()
		c.Next()
	}
}

// GetGinLogger returns the request logger with the session fields known at
// call time, or a no-op logger outside AccessLog
func GetGinLogger(c *gin.Context) *zap.Logger {
	l := zap.NewNop()
	if v, ok := c.Get(ginLoggerKey); ok {
		if zl, ok := v.(*zap.Logger); ok {
			l = zl
		}
	}
	if id := GetUserID(c.Request.Context()); id != 0 {
		l = l.With(zap.Int64("user_id", id))
	}
	return l
}
