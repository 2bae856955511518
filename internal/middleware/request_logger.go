package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
)

// RequestLogger tags each request with an X-Request-ID, puts a logger carrying
// it on the request context and logs the outcome
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header("X-Request-ID", requestID)
		reqLog := logger.Log.With(slog.String("request_id", requestID))
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), reqLog))

		c.Next()

		if path == "/api/v1/health" {
			return
		}

		end := time.Now()
		latency := end.Sub(start)

		clientIP := c.ClientIP()
		method := c.Request.Method
		statusCode := c.Writer.Status()
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		userAgent := c.Request.UserAgent()

		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", statusCode),
			slog.String("ip", clientIP),
			slog.Duration("latency", latency),
			slog.String("user_agent", userAgent),
		}

		if errorMessage != "" {
			attrs = append(attrs, slog.String("error", errorMessage))
		}

		if userID, exists := c.Get("userID"); exists {
			attrs = append(attrs, slog.Any("user_id", userID))
		}
		if sessionID, exists := c.Get("sessionID"); exists {
			attrs = append(attrs, slog.Any("session_id", sessionID))
		}

		msg := "HTTP request"
		if statusCode >= 500 {
			reqLog.Error(msg, attrs...)
		} else if statusCode >= 400 {
			reqLog.Warn(msg, attrs...)
		} else {
			reqLog.Info(msg, attrs...)
		}
	}
}
