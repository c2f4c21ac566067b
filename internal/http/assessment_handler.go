package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"colors-coach/internal/domain"
	"colors-coach/internal/service"
)

// AssessmentHandler expone el cuestionario, el modo personal y los resultados del usuario.
type AssessmentHandler struct {
	logger      *zap.Logger
	assessments *service.AssessmentService
}

func NewAssessmentHandler(logger *zap.Logger, assessments *service.AssessmentService) *AssessmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentHandler{logger: logger, assessments: assessments}
}

// Questionnaire maneja GET /questionnaire.
func (h *AssessmentHandler) Questionnaire(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"questions": h.assessments.Questionnaire(),
		"scale":     gin.H{"min": domain.AnswerMin, "max": domain.AnswerMax},
	})
}

// PersonalAnalyze maneja POST /personal/analyze. Acepta respuestas o Scores ya calculados, no guarda nada.
func (h *AssessmentHandler) PersonalAnalyze(c *gin.Context) {
	var req struct {
		Answers domain.Answers `json:"answers"`
		Scores  *domain.Scores `json:"scores"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid personal analyze request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var (
		report service.AssessmentReport
		err    error
	)
	if req.Scores != nil {
		report, err = h.assessments.Analyze(*req.Scores)
	} else {
		report, err = h.assessments.AnalyzeAnswers(req.Answers)
	}
	if err != nil {
		respondError(c, h.logger, err, "could not analyze answers")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": report})
}

// Submit maneja POST /assessment.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	var req struct {
		Answers domain.Answers `json:"answers"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid submit request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	report, err := h.assessments.Submit(c.Request.Context(), userID, req.Answers)
	if err != nil {
		respondError(c, h.logger, err, "could not submit assessment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": report})
}

// GetResult maneja GET /assessment.
func (h *AssessmentHandler) GetResult(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	report, err := h.assessments.GetResult(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "could not load assessment")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": report})
}

// Similar maneja GET /assessment/similar?k=N.
func (h *AssessmentHandler) Similar(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	k := 0
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid k"})
			return
		}
		k = n
	}
	profiles, err := h.assessments.Similar(c.Request.Context(), userID, k)
	if err != nil {
		respondError(c, h.logger, err, "could not load similar profiles")
		return
	}
	if profiles == nil {
		profiles = []domain.SimilarProfile{}
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// EmailReport maneja POST /assessment/email.
func (h *AssessmentHandler) EmailReport(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	if err := h.assessments.EmailReport(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err, "could not send report")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "report_sent"})
}
