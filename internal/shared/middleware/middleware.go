package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"velocar/internal/shared/utils/response"
	"velocar/pkg/logger"
)

// RequestLogger logs every request with method, path, status and duration
func RequestLogger() gin.HandlerFunc {
	log := logger.GetDefault()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogHTTPRequest(c, time.Since(start))
	}
}

// Recovery converts panics into a standard 500 response
func Recovery() gin.HandlerFunc {
	log := logger.GetDefault()
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.ErrorContext(c.Request.Context(),
			"panic recovered",
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		response.RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
		c.Abort()
	})
}
