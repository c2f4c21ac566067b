package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"colors-coach/internal/domain"
	"colors-coach/internal/service"
)

var errJWTNotConfigured = errors.New("jwt not configured")

// UserHandler agrupa alta de participantes, login (OTP, OAuth, password) y sesion.
type UserHandler struct {
	logger   *zap.Logger
	userServ *service.UserService
	jwtServ  *service.JWTService
}

func NewUserHandler(logger *zap.Logger, userServ *service.UserService, jwtServ *service.JWTService) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{logger: logger, userServ: userServ, jwtServ: jwtServ}
}

// bind decodifica el body; si falla responde 400 y devuelve false.
func (h *UserHandler) bind(c *gin.Context, req any, what string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Warn("invalid "+what+" request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return false
	}
	return true
}

// CreateUser maneja POST /users. El equipo es opcional; si no existe es un error del cliente.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
		TeamName    string `json:"team"`
	}
	if !h.bind(c, &req, "create user") {
		return
	}

	user, err := h.userServ.CreateUser(c.Request.Context(), service.CreateUserInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		TeamName:    req.TeamName,
	})
	if errors.Is(err, service.ErrTeamNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "team not found"})
		return
	}
	if err != nil {
		respondError(c, h.logger, err, "could not create user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// RequestOTP maneja POST /auth/otp/request.
func (h *UserHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name"`
	}
	if !h.bind(c, &req, "otp") {
		return
	}
	if _, err := h.userServ.RequestOTP(c.Request.Context(), req.Email, req.DisplayName); err != nil {
		respondError(c, h.logger, err, "could not request otp")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyOTP maneja POST /auth/otp/verify y abre sesion.
func (h *UserHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if !h.bind(c, &req, "otp verify") {
		return
	}
	user, err := h.userServ.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		respondError(c, h.logger, err, "could not verify otp")
		return
	}
	h.startSession(c, user)
}

// OAuthLogin maneja POST /auth/oauth.
func (h *UserHandler) OAuthLogin(c *gin.Context) {
	var req struct {
		Provider    string `json:"provider" binding:"required"`
		Subject     string `json:"subject" binding:"required"`
		Email       string `json:"email" binding:"email"`
		DisplayName string `json:"display_name"`
	}
	if !h.bind(c, &req, "oauth") {
		return
	}
	user, err := h.userServ.UpsertOAuthUser(c.Request.Context(), service.OAuthInput{
		Provider:    req.Provider,
		Subject:     req.Subject,
		Email:       req.Email,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		respondError(c, h.logger, err, "could not complete oauth")
		return
	}
	h.startSession(c, user)
}

// Login maneja POST /auth/login (facilitadores con password).
func (h *UserHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if !h.bind(c, &req, "login") {
		return
	}
	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "could not login")
		return
	}
	h.startSession(c, user)
}

// RefreshToken maneja POST /auth/refresh. El refresh usado queda revocado.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !h.bind(c, &req, "refresh") {
		return
	}
	if h.jwtServ == nil {
		respondError(c, h.logger, errJWTNotConfigured, "jwt not configured")
		return
	}
	tokens, err := h.jwtServ.RefreshPair(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *UserHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !h.bind(c, &req, "logout") {
		return
	}
	if h.jwtServ == nil {
		respondError(c, h.logger, errJWTNotConfigured, "jwt not configured")
		return
	}
	if err := h.jwtServ.RevokeRefresh(req.RefreshToken); err != nil {
		h.logger.Debug("revoke refresh ignored", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// Me maneja GET /me: perfil, equipo y rol del usuario autenticado.
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	user, err := h.userServ.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "could not load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) startSession(c *gin.Context, user domain.User) {
	if h.jwtServ == nil {
		respondError(c, h.logger, errJWTNotConfigured, "could not issue tokens")
		return
	}
	tokens, err := h.jwtServ.GeneratePair(user)
	if err != nil {
		respondError(c, h.logger, err, "could not issue tokens")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
}
