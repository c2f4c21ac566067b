package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"colors-coach/internal/service"
)

// statusFor traduce los errores de servicio a codigos HTTP. ok=false significa error interno.
func statusFor(err error) (int, string, bool) {
	switch {
	case errors.Is(err, service.ErrAssessmentInvalidInput),
		errors.Is(err, service.ErrCoachInvalidInput),
		errors.Is(err, service.ErrTeamInvalidName):
		return http.StatusBadRequest, "invalid request", true
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, "invalid email", true
	case errors.Is(err, service.ErrOAuthInvalid):
		return http.StatusBadRequest, "invalid oauth data", true
	case errors.Is(err, service.ErrOTPNotRequested),
		errors.Is(err, service.ErrOTPExpired),
		errors.Is(err, service.ErrOTPInvalid):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials", true
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests", true
	case errors.Is(err, service.ErrUserExists):
		return http.StatusConflict, "user already exists", true
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "user not found", true
	case errors.Is(err, service.ErrResultNotFound):
		return http.StatusNotFound, "assessment not completed", true
	case errors.Is(err, service.ErrTeamNotFound):
		return http.StatusNotFound, "team not found", true
	case errors.Is(err, service.ErrTeamExists):
		return http.StatusConflict, "team already exists", true
	case errors.Is(err, service.ErrCoachNoScores):
		return http.StatusConflict, "assessment required", true
	case errors.Is(err, service.ErrCoachNoTeamData):
		return http.StatusConflict, "team has no completed assessments", true
	case errors.Is(err, service.ErrCoachRateLimited):
		return http.StatusTooManyRequests, "too many coach requests", true
	case errors.Is(err, service.ErrEmailSendFailure):
		return http.StatusServiceUnavailable, "email delivery unavailable", true
	case errors.Is(err, service.ErrCoachUnavailable):
		return http.StatusBadGateway, "coach unavailable", true
	case errors.Is(err, service.ErrCoachNotConfigured),
		errors.Is(err, service.ErrAssessmentNotConfigured),
		errors.Is(err, service.ErrTeamServiceNotConfigured),
		errors.Is(err, service.ErrUserServiceNotConfigured):
		return http.StatusServiceUnavailable, "service not configured", true
	}
	return http.StatusInternalServerError, "", false
}

// respondError escribe {"error": ...}. Los errores no mapeados se loguean y salen como 500 con fallback.
func respondError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	status, msg, ok := statusFor(err)
	if !ok {
		logger.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
		return
	}
	if status >= http.StatusInternalServerError {
		logger.Warn(msg, zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(status, gin.H{"error": msg})
}
