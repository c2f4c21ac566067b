package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"colors-coach/internal/metrics"
	"colors-coach/internal/service"
)

// RouterConfig agrupa lo que el router necesita ademas de los handlers.
type RouterConfig struct {
	AllowedOrigins []string
	AccessCode     string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	cfg RouterConfig,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	assessmentH *AssessmentHandler,
	coachH *CoachHandler,
	teamH *TeamHandler,
) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()

	// Middlewares basicos: logging, metricas, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), metricsMiddleware(cfg.Metrics), gin.Recovery())
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(cfg.Gatherer)))
	}

	api := r.Group("", jsonContentTypeMiddleware())

	api.GET("/questionnaire", assessmentH.Questionnaire)
	api.POST("/personal/analyze", AccessCodeMiddleware(cfg.AccessCode), assessmentH.PersonalAnalyze)

	users := api.Group("/users")
	users.POST("", userH.CreateUser)

	auth := api.Group("/auth")
	auth.POST("/otp/request", userH.RequestOTP)
	auth.POST("/otp/verify", userH.VerifyOTP)
	auth.POST("/oauth", userH.OAuthLogin)
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	private := api.Group("", JWTAuthMiddleware(jwtSvc))
	private.GET("/me", userH.Me)
	private.POST("/assessment", assessmentH.Submit)
	private.GET("/assessment", assessmentH.GetResult)
	private.GET("/assessment/similar", assessmentH.Similar)
	private.POST("/assessment/email", assessmentH.EmailReport)
	private.GET("/team/map", teamH.MyTeamMap)
	private.POST("/coach", coachH.Ask)

	admin := private.Group("/admin", AdminMiddleware())
	admin.GET("/dashboard", teamH.Dashboard)
	admin.GET("/teams", teamH.ListTeams)
	admin.POST("/teams", teamH.CreateTeam)
	admin.PUT("/users/:id/team", teamH.MoveUser)
	admin.GET("/teams/:name/stats", teamH.TeamStats)
	admin.POST("/teams/:name/coach", teamH.TeamCoach)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", accessCodeHeader}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// metricsMiddleware usa la ruta registrada (no el path crudo) como label.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
