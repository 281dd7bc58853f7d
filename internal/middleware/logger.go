package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const slowRequestThreshold = 2 * time.Second

// RequestLogger logs method, path, status and latency for every request and
// flags slow ones. Panics are recovered into a JSON 500 so one bad request
// cannot take the process down.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				log.Printf("panic method=%s path=%s client_ip=%s recovered=%v",
					c.Request.Method, c.Request.URL.Path, c.ClientIP(), recovered)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
			}
		}()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		switch {
		case latency > slowRequestThreshold:
			log.Printf("slow_request method=%s path=%s status=%d latency=%s client_ip=%s",
				c.Request.Method, c.Request.URL.Path, status, latency, c.ClientIP())
		case status >= http.StatusInternalServerError:
			log.Printf("request_error method=%s path=%s status=%d latency=%s client_ip=%s",
				c.Request.Method, c.Request.URL.Path, status, latency, c.ClientIP())
		}
	}
}
