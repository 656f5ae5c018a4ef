package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"saga-server/internal/models"
)

// respondError maps domain errors onto HTTP status codes. State
// rejections keep their machine-readable reason so clients can react
// without parsing messages.
func (h *Handler) respondError(c *gin.Context, err error) {
	if se, ok := models.AsStateError(err); ok {
		status := http.StatusConflict
		if se.Reason == models.ReasonQuotaExceeded {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, apiError{Message: se.Message, Reason: string(se.Reason)})
		return
	}

	switch {
	case errors.Is(err, models.ErrTemplateNotFound),
		errors.Is(err, models.ErrArcNotFound),
		errors.Is(err, models.ErrEpisodeNotFound),
		errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, apiError{Message: err.Error()})
	case errors.Is(err, models.ErrGenerationFailed):
		c.JSON(http.StatusServiceUnavailable, apiError{Message: "episode generation is temporarily unavailable, try again later"})
	default:
		h.logger.Error("Unhandled error in request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, apiError{Message: "internal server error"})
	}
}
