package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Aashish23092/tax-slip-engine/dto"
)

// RateLimit rejects requests with 429 once limiter is exhausted. OCR is the
// expensive part of an upload, so the limit sits on the upload route only.
func RateLimit(limiter *rate.Limiter, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if !limiter.Allow() {
			logger.Warn("rate limit exceeded",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.String("remote_addr", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "RATE_LIMITED",
				Message: http.StatusText(http.StatusTooManyRequests),
				Code:    http.StatusTooManyRequests,
			})
			return
		}
		c.Next()
	}
}
