package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"colors-coach/internal/service"
)

// CoachHandler maneja las consultas individuales al coach.
type CoachHandler struct {
	logger      *zap.Logger
	coach       *service.CoachService
	assessments *service.AssessmentService
}

func NewCoachHandler(logger *zap.Logger, coach *service.CoachService, assessments *service.AssessmentService) *CoachHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoachHandler{logger: logger, coach: coach, assessments: assessments}
}

// Ask maneja POST /coach. Usa los Scores guardados del usuario.
func (h *CoachHandler) Ask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req struct {
		Question string `json:"question" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid coach request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	scores, err := h.assessments.Scores(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "could not load assessment")
		return
	}
	reply, err := h.coach.Ask(c.Request.Context(), userID, scores, req.Question)
	if err != nil {
		respondError(c, h.logger, err, "could not ask coach")
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
