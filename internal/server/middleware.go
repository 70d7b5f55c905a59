package server

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	httperr "github.com/aevon-lab/scoring/internal/core/errors"
	"github.com/aevon-lab/scoring/internal/method"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID carries a caller supplied request id.
	HeaderRequestID = "X-Request-Id"

	ctxKeyRequestID     = "request_id"
	ctxKeyMethodContext = "method_context"
	ctxKeyMetricsPath   = "metrics_path"
)

// requestIDMiddleware takes the request id from the header or generates one.
// The id is used for logging only and is not echoed back.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = newRequestID()
		}
		c.Set(ctxKeyRequestID, requestID)
		c.Next()
	}
}

func newRequestID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// metricsMiddleware records request rate, latency and in-flight count.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		path := c.GetString(ctxKeyMetricsPath)
		if path == "" {
			path = c.FullPath()
		}
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	}
}

// accessLogMiddleware logs every request once, after it completes.
func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []interface{}{
			"request_id", c.GetString(ctxKeyRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"code", c.Writer.Status(),
			"duration", time.Since(start).String(),
		}
		if v, ok := c.Get(ctxKeyMethodContext); ok {
			mctx := v.(*method.Context)
			if mctx.Has != nil {
				attrs = append(attrs, "has", mctx.Has)
			}
			if mctx.NClients > 0 {
				attrs = append(attrs, "nclients", mctx.NClients)
			}
		}
		slog.Info("Request handled", attrs...)
	}
}

// recoveryMiddleware turns a handler panic into a 500 response.
func recoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				panicRecoveries.Inc()
				var errMsg string
				switch v := err.(type) {
				case error:
					errMsg = v.Error()
				default:
					errMsg = fmt.Sprintf("%v", v)
				}
				slog.Error("Panic recovered",
					"error", errMsg,
					"request_id", c.GetString(ctxKeyRequestID),
					"path", c.Request.URL.Path,
				)
				c.AbortWithStatusJSON(httperr.InternalError, httperr.NewErrorResponse(httperr.InternalError, ""))
			}
		}()
		c.Next()
	}
}
