// Package httpapi exposes the fund pipeline over HTTP with gin.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"goldetf/internal/logger"
)

const requestIDKey = "requestID"

// NewRouter wires middleware and routes around the handler set.
func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogging(), CORS())

	r.GET("/", h.Index)
	r.GET("/health", h.Health)

	api := r.Group("/api/gold-etf")
	api.GET("/compare", h.CompareAll)
	api.GET("/compare/:symbol1/:symbol2", h.CompareTwo)
	api.GET("/list", h.ListFunds)
	api.GET("/debug/:symbol", h.DebugFund)
	api.POST("/clear-cache", h.ClearCache)
	api.GET("/:symbol", h.GetFund)

	return r
}

// RequestLogging logs each request with a unique request ID, method, path,
// status code, latency, and client IP.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := uuid.New().String()
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		logger.Get().Infow("request",
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}

// CORS allows cross-origin reads; the API is public and read-mostly.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
