package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)
		c.Set("request_id", reqID)

		ctx := logger.WithField(c.Request.Context(), "request_id", reqID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		msg := "%s %s -> %d (%dms)"
		args := []interface{}{c.Request.Method, c.FullPath(), status, time.Since(start).Milliseconds()}
		if len(c.Errors) > 0 {
			msg += " errors=%s"
			args = append(args, c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error(ctx, msg, args...)
		case status >= 400:
			log.Warn(ctx, msg, args...)
		default:
			log.Info(ctx, msg, args...)
		}
	}
}
