package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger logs every request and recovers from panics. Stack traces
// are only returned to the caller when exposeStack is set.
func RequestLogger(log *zap.Logger, exposeStack bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := requestID(c)
		c.Writer.Header().Set(requestIDHeader, rid)

		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				stack := debug.Stack()
				log.Error("panic recovered",
					append(requestFields(c, start, rid), zap.Error(err), zap.ByteString("stack", stack))...)

				body := gin.H{"ok": false, "message": "Server error", "error": err.Error()}
				if exposeStack {
					body["stack"] = string(stack)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
				return
			}

			fields := requestFields(c, start, rid)
			for _, e := range c.Errors {
				fields = append(fields, zap.NamedError("error", e.Err))
			}

			switch status := c.Writer.Status(); {
			case status >= http.StatusInternalServerError:
				log.Error("request failed", fields...)
			case status >= http.StatusBadRequest:
				log.Warn("request rejected", fields...)
			default:
				log.Info("request", fields...)
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time, rid string) []zap.Field {
	return []zap.Field{
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)),
		zap.String("client_ip", c.ClientIP()),
		zap.String("request_id", rid),
	}
}

func requestID(c *gin.Context) string {
	if rid := c.GetHeader(requestIDHeader); rid != "" {
		return rid
	}
	return uuid.NewString()
}
