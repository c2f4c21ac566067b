package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"colors-coach/internal/domain"
	"colors-coach/internal/service"
)

// TeamHandler agrupa el mapa del propio equipo y las rutas de administracion.
type TeamHandler struct {
	logger *zap.Logger
	teams  *service.TeamService
	users  *service.UserService
	coach  *service.CoachService
}

func NewTeamHandler(logger *zap.Logger, teams *service.TeamService, users *service.UserService, coach *service.CoachService) *TeamHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamHandler{logger: logger, teams: teams, users: users, coach: coach}
}

// MyTeamMap maneja GET /team/map. No expone emails de los companeros.
func (h *TeamHandler) MyTeamMap(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "could not load user")
		return
	}
	overview, err := h.teams.Overview(c.Request.Context(), user.TeamName)
	if err != nil {
		respondError(c, h.logger, err, "could not load team")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"team":          overview.Team,
		"stats":         overview.Stats,
		"map":           mapOrEmpty(overview.Map),
		"missing_color": overview.MissingColor,
	})
}

// Dashboard maneja GET /admin/dashboard.
func (h *TeamHandler) Dashboard(c *gin.Context) {
	dash, err := h.teams.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "could not load dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dashboard": dash})
}

// ListTeams maneja GET /admin/teams.
func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.teams.ListTeams(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "could not list teams")
		return
	}
	if teams == nil {
		teams = []domain.Team{}
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// CreateTeam maneja POST /admin/teams.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create team request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	team, err := h.teams.CreateTeam(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, h.logger, err, "could not create team")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"team": team})
}

// MoveUser maneja PUT /admin/users/:id/team.
func (h *TeamHandler) MoveUser(c *gin.Context) {
	var req struct {
		Team string `json:"team" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid move user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := h.teams.MoveUser(c.Request.Context(), c.Param("id"), req.Team); err != nil {
		respondError(c, h.logger, err, "could not move user")
		return
	}
	c.Status(http.StatusNoContent)
}

// TeamStats maneja GET /admin/teams/:name/stats.
func (h *TeamHandler) TeamStats(c *gin.Context) {
	overview, err := h.teams.Overview(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err, "could not load team")
		return
	}
	overview.Map = mapOrEmpty(overview.Map)
	c.JSON(http.StatusOK, gin.H{"overview": overview})
}

// TeamCoach maneja POST /admin/teams/:name/coach.
func (h *TeamHandler) TeamCoach(c *gin.Context) {
	claims, _ := GetAuthClaims(c)
	var req struct {
		Challenge string `json:"challenge" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid team coach request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	overview, err := h.teams.Overview(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, h.logger, err, "could not load team")
		return
	}
	reply, err := h.coach.AskTeam(c.Request.Context(), claims.UserID, overview.Team.Name, overview.Stats, req.Challenge)
	if err != nil {
		respondError(c, h.logger, err, "could not ask coach")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": overview.Stats, "reply": reply})
}

func mapOrEmpty(points []domain.MapPoint) []domain.MapPoint {
	if points == nil {
		return []domain.MapPoint{}
	}
	return points
}
