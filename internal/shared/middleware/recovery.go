package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"payrouter-backend/internal/shared/response"
)

// Recovery converts panics into the standard error envelope instead of
// letting gin kill the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString("request_id")).
					Str("path", c.Request.URL.Path).
					Interface("panic", err).
					Msg("Panic recovered")

				response.ErrorResponse(c, http.StatusInternalServerError, "internal", "Internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
