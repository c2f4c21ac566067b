package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"colors-coach/internal/assessment"
	"colors-coach/internal/config"
	"colors-coach/internal/db"
	"colors-coach/internal/email"
	apihttp "colors-coach/internal/http"
	"colors-coach/internal/llm"
	"colors-coach/internal/metrics"
	"colors-coach/internal/repository"
	"colors-coach/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.DBAutoMigrate {
		if err := db.EnsureSchema(ctx, pool); err != nil {
			logger.Fatal("db schema", zap.Error(err))
		}
	}

	questionnaire := assessment.MustDefaultQuestionnaire()
	if cfg.QuestionnairePath != "" {
		questionnaire, err = assessment.LoadQuestionnaireFile(cfg.QuestionnairePath)
		if err != nil {
			logger.Fatal("questionnaire load", zap.Error(err), zap.String("path", cfg.QuestionnairePath))
		}
	}
	kb := assessment.DefaultKnowledgeBase()
	generator := assessment.NewGenerator(kb)

	userRepo := repository.NewPgUserRepository(pool)
	teamRepo := repository.NewPgTeamRepository(pool)
	resultRepo := repository.NewPgResultRepository(pool)
	coachRepo := repository.NewPgCoachMessageRepository(pool)

	m := metrics.Default()

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var llmClient llm.LLMClient
	if cfg.LLMAPIKey != "" {
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger, llm.WithTemperature(cfg.LLMTemperature))
	} else {
		logger.Warn("llm api key not configured, coach disabled")
	}

	var (
		otpLimiter   service.RateLimiter
		coachLimiter service.RateLimiter
		tokenStore   service.RefreshTokenStore
		redisClient  *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisRateLimiter(redisClient, service.OTPLimitPrefix, 10*time.Minute, 3)
			coachLimiter = service.NewRedisRateLimiter(redisClient, service.CoachLimitPrefix, time.Hour, cfg.CoachRequestsPerHour)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	if coachLimiter == nil {
		coachLimiter = service.NewMemoryRateLimiter(service.CoachLimitPrefix, time.Hour, cfg.CoachRequestsPerHour)
	}
	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	userSvc := service.NewUserService(logger, userRepo, emailSender, otpLimiter, service.WithAdminEmails(cfg.AdminEmails))
	jwtSvc.WithUserLookup(userSvc.GetUser)
	assessmentSvc := service.NewAssessmentService(questionnaire, generator, resultRepo, userRepo, emailSender, m, logger)
	contextSvc := service.NewBasicContextService(coachRepo)
	coachSvc := service.NewCoachService(llmClient, kb, coachRepo, contextSvc, logger, service.CoachOptions{
		CacheSize: cfg.CoachCacheSize,
		CacheTTL:  time.Duration(cfg.CoachCacheTTLMinutes) * time.Minute,
		Metrics:   m,
		Limiter:   coachLimiter,
	})
	teamSvc := service.NewTeamService(teamRepo, userRepo, logger)

	router := apihttp.NewRouter(
		logger,
		apihttp.RouterConfig{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AccessCode:     cfg.AccessCode,
			Metrics:        m,
			Gatherer:       prometheus.DefaultGatherer,
		},
		jwtSvc,
		apihttp.NewUserHandler(logger, userSvc, jwtSvc),
		apihttp.NewAssessmentHandler(logger, assessmentSvc),
		apihttp.NewCoachHandler(logger, coachSvc, assessmentSvc),
		apihttp.NewTeamHandler(logger, teamSvc, userSvc, coachSvc),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort), zap.Int("questions", questionnaire.Len()))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
