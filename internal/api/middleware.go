package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxIntentBody ограничение размера тела запроса с намерениями
const maxIntentBody = 64 << 10

// limitBodyMiddleware ограничивает размер тела запроса
func limitBodyMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// jsonOnlyMiddleware отклоняет запросы с телом не в JSON
func jsonOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ct := c.GetHeader("Content-Type")
		if ct != "" && !strings.HasPrefix(ct, "application/json") {
			c.JSON(http.StatusUnsupportedMediaType, GenericResponse{
				Success: false,
				Message: "Ожидается application/json",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
