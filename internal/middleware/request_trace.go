package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is where the trace id lives in the gin context.
const RequestIDKey = "requestID"

// RequestTrace tags every request with a UUID and logs method, path, status
// and duration once the handler chain finishes.
func RequestTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(RequestIDKey, id)
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()

		log.Printf("[%s] %s %s -> %d (%s)",
			id, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
