// Package handler exposes the saga API over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"saga-server/internal/auth"
	"saga-server/internal/service"
)

// Handler wires the episode and template services into gin routes.
type Handler struct {
	episodes  *service.EpisodeService
	templates *service.TemplateService
	verifier  *auth.JWTVerifier
	logger    *zap.Logger
}

func NewHandler(
	episodes *service.EpisodeService,
	templates *service.TemplateService,
	verifier *auth.JWTVerifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		episodes:  episodes,
		templates: templates,
		verifier:  verifier,
		logger:    logger.Named("Handler"),
	}
}

// RegisterRoutes attaches all API routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	api := router.Group("/api/v1", h.authMiddleware())
	{
		templates := api.Group("/templates")
		{
			templates.GET("", h.listTemplates)
			templates.GET("/recommended", h.getRecommendedTemplates)
			templates.GET("/:id", h.getTemplate)
		}

		arcs := api.Group("/arcs")
		{
			arcs.POST("", h.startArc)
			arcs.GET("/:id", h.getArc)
			arcs.GET("/:id/episodes", h.listEpisodes)
			arcs.POST("/:id/episodes", h.generateEpisode)
		}

		api.POST("/episodes/:id/feedback", h.recordFeedback)
	}
}
