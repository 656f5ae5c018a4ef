package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"saga-server/internal/models"
	"saga-server/internal/service"
)

func (h *Handler) startArc(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apiError{Message: "authentication required"})
		return
	}

	var req startArcRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiError{Message: "templateId is required"})
		return
	}

	arc, err := h.episodes.StartArc(c.Request.Context(), user.ID, req.TemplateID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toArcResponse(arc))
}

func (h *Handler) getArc(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apiError{Message: "authentication required"})
		return
	}

	arcID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiError{Message: "invalid arc id"})
		return
	}

	arc, err := h.episodes.GetArc(c.Request.Context(), arcID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if arc.UserID != user.ID {
		// Do not reveal other users' arcs.
		c.JSON(http.StatusNotFound, apiError{Message: "story arc not found"})
		return
	}

	c.JSON(http.StatusOK, toArcResponse(arc))
}

func (h *Handler) listEpisodes(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apiError{Message: "authentication required"})
		return
	}

	arcID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiError{Message: "invalid arc id"})
		return
	}

	arc, err := h.episodes.GetArc(c.Request.Context(), arcID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if arc.UserID != user.ID {
		c.JSON(http.StatusNotFound, apiError{Message: "story arc not found"})
		return
	}

	episodes, err := h.episodes.ListEpisodes(c.Request.Context(), arcID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	out := make([]episodeResponse, 0, len(episodes))
	for _, ep := range episodes {
		out = append(out, toEpisodeResponse(ep))
	}
	c.JSON(http.StatusOK, gin.H{"episodes": out})
}

func (h *Handler) generateEpisode(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apiError{Message: "authentication required"})
		return
	}

	arcID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiError{Message: "invalid arc id"})
		return
	}

	var req generateEpisodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiError{Message: "dayNumber is required and must be >= 1"})
		return
	}

	arc, err := h.episodes.GetArc(c.Request.Context(), arcID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if arc.UserID != user.ID {
		c.JSON(http.StatusNotFound, apiError{Message: "story arc not found"})
		return
	}

	episode, err := h.episodes.GenerateEpisode(c.Request.Context(), service.GenerateRequest{
		ArcID:      arcID,
		DayNumber:  req.DayNumber,
		User:       user,
		Overrides:  req.Overrides,
		Regenerate: req.Regenerate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toEpisodeResponse(episode))
}

func (h *Handler) recordFeedback(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		c.JSON(http.StatusUnauthorized, apiError{Message: "authentication required"})
		return
	}

	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apiError{Message: "invalid episode id"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiError{Message: "feedback is required"})
		return
	}

	feedback := models.EpisodeFeedback(req.Feedback)
	if !models.ValidFeedback(feedback) {
		c.JSON(http.StatusBadRequest, apiError{Message: "feedback must be one of: like, neutral, dislike, none"})
		return
	}

	if err := h.episodes.RecordFeedback(c.Request.Context(), episodeID, feedback); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
