package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/tenx-cards/internal/http/middleware"
)

// PingFunc checks a dependency, typically (*sql.DB).PingContext.
type PingFunc func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// Health godoc
// @ID          health
// @Summary     Liveness and database reachability
// @Tags        System
// @Produce     json
// @Success     200  {object}  handlers.SuccessResponse
// @Failure     503  {object}  handlers.ErrorResponse  "system/database-unavailable"
// @Router      /health [get]
func Health(ping PingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				middleware.LoggerFrom(c).Error().Err(err).Msg("health check failed")
				Fail(c, ErrorBody{
					Code:       "system/database-unavailable",
					Message:    "The database is not reachable.",
					HTTPStatus: http.StatusServiceUnavailable,
					Hint:       "Retry shortly; the service reports healthy once the database answers.",
				}, http.Header{"Retry-After": {"5"}})
				return
			}
		}
		OK(c, gin.H{"status": "ok"})
	}
}
