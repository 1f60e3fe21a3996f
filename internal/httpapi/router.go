// README: HTTP router registration (Gin), grounded on
// internal/http/router.go's engine-plus-middleware-plus-one-handler-per-
// resource shape, generalized from the ride-hailing order routes to the
// episode lifecycle routes of §4.10.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deliverysim/internal/httpapi/episodes"
	"deliverysim/internal/httpapi/handlers"
	"deliverysim/internal/httpapi/middleware"
	"deliverysim/internal/metrics"
)

// NewRouter wires the episode registry and optional metrics store into a
// Gin engine implementing §4.10's routes.
func NewRouter(registry *episodes.Registry, metricsStore *metrics.Store, verifier *middleware.Verifier) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	if verifier != nil {
		api.Use(verifier.Auth())
	}

	episodeHandler := handlers.NewEpisodeHandler(registry, metricsStore)
	api.POST("/episodes", episodeHandler.Create)
	api.POST("/episodes/:id/step", episodeHandler.Step)
	api.POST("/episodes/:id/close", episodeHandler.Close)
	api.GET("/episodes/:id/metrics", episodeHandler.Metrics)

	return r
}
