package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saga-server/internal/catalog"
)

// listTemplates returns the catalog, optionally filtered by genre and
// emotion query parameters. An empty result is a valid answer.
func (h *Handler) listTemplates(c *gin.Context) {
	filter := catalog.Filter{
		Genre:   c.Query("genre"),
		Emotion: c.Query("emotion"),
	}

	templates := h.templates.GetTemplatesForUser(filter)
	c.JSON(http.StatusOK, gin.H{
		"catalogVersion": h.templates.CatalogVersion(),
		"templates":      toTemplateSummaries(templates),
	})
}

func (h *Handler) getRecommendedTemplates(c *gin.Context) {
	templates := h.templates.GetRecommendedTemplates()
	c.JSON(http.StatusOK, gin.H{
		"catalogVersion": h.templates.CatalogVersion(),
		"templates":      toTemplateSummaries(templates),
	})
}

func (h *Handler) getTemplate(c *gin.Context) {
	tpl, err := h.templates.GetTemplate(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTemplateSummary(tpl))
}
