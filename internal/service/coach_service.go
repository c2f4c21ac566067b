package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"colors-coach/internal/assessment"
	"colors-coach/internal/domain"
	"colors-coach/internal/llm"
	"colors-coach/internal/metrics"
	"colors-coach/internal/repository"
)

var (
	ErrCoachNotConfigured = errors.New("coach not configured")
	ErrCoachInvalidInput  = errors.New("coach invalid input")
	ErrCoachNoScores      = errors.New("coach requires a completed assessment")
	ErrCoachNoTeamData    = errors.New("team has no completed assessments")
	ErrCoachUnavailable   = errors.New("coach unavailable")
	ErrCoachRateLimited   = errors.New("coach rate limited")
)

const (
	maxCoachInputLen = 2000

	defaultCoachRequestsPerHour = 30
)

// CoachReply es la respuesta del coach en Markdown y ya renderizada a HTML.
type CoachReply struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Cached   bool   `json:"cached"`
}

type CoachOptions struct {
	CacheSize int
	CacheTTL  time.Duration
	Metrics   *metrics.Metrics
	// Limiter acota las llamadas al LLM por usuario. Si es nil se usa uno en memoria.
	Limiter RateLimiter
}

// CoachService consulta al LLM con el perfil individual o la composicion de un equipo.
type CoachService struct {
	llmClient  llm.LLMClient
	prompts    CoachPromptBuilder
	history    repository.CoachMessageRepository
	contextSvc ContextService
	cache      *expirable.LRU[string, CoachReply]
	limiter    RateLimiter
	markdown   goldmark.Markdown
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewCoachService(
	llmClient llm.LLMClient,
	kb *assessment.KnowledgeBase,
	history repository.CoachMessageRepository,
	contextSvc ContextService,
	logger *zap.Logger,
	opts CoachOptions,
) *CoachService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}
	if opts.Limiter == nil {
		opts.Limiter = NewMemoryRateLimiter(CoachLimitPrefix, time.Hour, defaultCoachRequestsPerHour)
	}
	return &CoachService{
		llmClient:  llmClient,
		prompts:    NewCoachPromptBuilder(kb),
		history:    history,
		contextSvc: contextSvc,
		cache:      expirable.NewLRU[string, CoachReply](opts.CacheSize, nil, opts.CacheTTL),
		limiter:    opts.Limiter,
		markdown:   goldmark.New(),
		metrics:    opts.Metrics,
		logger:     logger,
	}
}

// Ask responde una consulta individual a partir de los Scores del usuario.
func (s *CoachService) Ask(ctx context.Context, userID string, scores domain.Scores, question string) (CoachReply, error) {
	if s == nil || s.llmClient == nil {
		return CoachReply{}, ErrCoachNotConfigured
	}
	question, err := normalizeCoachInput(question)
	if err != nil {
		return CoachReply{}, err
	}
	if scores.IsNegative() || scores.Total() <= 0 {
		return CoachReply{}, ErrCoachNoScores
	}

	history := ""
	if s.contextSvc != nil {
		history, err = s.contextSvc.GetContext(ctx, userID, domain.CoachModeIndividual)
		if err != nil {
			s.logger.Warn("coach history unavailable", zap.Error(err), zap.String("user_id", userID))
			history = ""
		}
	}

	// La clave incluye usuario e historial: la respuesta depende de ambos.
	subject := fmt.Sprintf("%s|%d|%d|%d|%d|%s", userID, scores.A, scores.B, scores.C, scores.D, digest(history))
	key := cacheKey(domain.CoachModeIndividual, subject, question)
	if reply, ok := s.cached(domain.CoachModeIndividual, key); ok {
		s.record(ctx, userID, domain.CoachModeIndividual, "", question, reply.Markdown)
		return reply, nil
	}
	if !s.limiter.Allow(domain.CoachModeIndividual + ":" + userID) {
		return CoachReply{}, ErrCoachRateLimited
	}

	system := s.prompts.BuildIndividualPrompt(scores, history)
	reply, err := s.complete(ctx, domain.CoachModeIndividual, system, question)
	if err != nil {
		return CoachReply{}, err
	}
	s.cache.Add(key, reply)
	s.record(ctx, userID, domain.CoachModeIndividual, "", question, reply.Markdown)
	return reply, nil
}

// AskTeam analiza un desafio del equipo. Los conteos se calculan solo con miembros que tienen Scores.
func (s *CoachService) AskTeam(ctx context.Context, requesterID, teamName string, stats domain.TeamStats, challenge string) (CoachReply, error) {
	if s == nil || s.llmClient == nil {
		return CoachReply{}, ErrCoachNotConfigured
	}
	challenge, err := normalizeCoachInput(challenge)
	if err != nil {
		return CoachReply{}, err
	}
	if stats.Total <= 0 {
		return CoachReply{}, ErrCoachNoTeamData
	}

	key := cacheKey(domain.CoachModeTeam, fmt.Sprintf("%s|%d|%d|%d|%d|%d", teamName, stats.Red, stats.Yellow, stats.Green, stats.Blue, stats.Total), challenge)
	if reply, ok := s.cached(domain.CoachModeTeam, key); ok {
		s.record(ctx, requesterID, domain.CoachModeTeam, teamName, challenge, reply.Markdown)
		return reply, nil
	}
	if !s.limiter.Allow(domain.CoachModeTeam + ":" + requesterID) {
		return CoachReply{}, ErrCoachRateLimited
	}

	system := s.prompts.BuildTeamPrompt(teamName, stats)
	reply, err := s.complete(ctx, domain.CoachModeTeam, system, challenge)
	if err != nil {
		return CoachReply{}, err
	}
	s.cache.Add(key, reply)
	s.record(ctx, requesterID, domain.CoachModeTeam, teamName, challenge, reply.Markdown)
	return reply, nil
}

func (s *CoachService) complete(ctx context.Context, mode, system, input string) (CoachReply, error) {
	start := time.Now()
	raw, err := s.llmClient.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: input},
	})
	if err != nil {
		s.metrics.ObserveCoach(mode, "error", time.Since(start))
		s.logger.Error("coach llm call failed", zap.Error(err), zap.String("mode", mode))
		return CoachReply{}, fmt.Errorf("%w: %w", ErrCoachUnavailable, err)
	}
	s.metrics.ObserveCoach(mode, "ok", time.Since(start))

	text := cleanCoachReply(raw)
	if text == "" {
		return CoachReply{}, fmt.Errorf("%w: empty reply", ErrCoachUnavailable)
	}
	html, err := s.renderHTML(text)
	if err != nil {
		s.logger.Warn("coach markdown render failed", zap.Error(err))
	}
	return CoachReply{Markdown: text, HTML: html}, nil
}

func (s *CoachService) cached(mode, key string) (CoachReply, bool) {
	reply, ok := s.cache.Get(key)
	if !ok {
		return CoachReply{}, false
	}
	s.metrics.IncCoachCacheHit(mode)
	reply.Cached = true
	return reply, true
}

func (s *CoachService) renderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// record guarda la consulta y la respuesta. Un fallo solo se registra en el log.
func (s *CoachService) record(ctx context.Context, userID, mode, subject, input, reply string) {
	if s.history == nil || strings.TrimSpace(userID) == "" {
		return
	}
	now := time.Now().UTC()
	msgs := []domain.CoachMessage{
		{ID: uuid.NewString(), UserID: userID, Mode: mode, Subject: subject, Role: coachRoleUser, Content: input, CreatedAt: now},
		{ID: uuid.NewString(), UserID: userID, Mode: mode, Subject: subject, Role: coachRoleCoach, Content: reply, CreatedAt: now.Add(time.Millisecond)},
	}
	for _, msg := range msgs {
		if err := s.history.Create(ctx, msg); err != nil {
			s.logger.Warn("save coach message failed", zap.Error(err), zap.String("user_id", userID), zap.String("mode", mode))
			return
		}
	}
}

func normalizeCoachInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" || len(input) > maxCoachInputLen {
		return "", ErrCoachInvalidInput
	}
	return input, nil
}

func cacheKey(mode, subject, input string) string {
	return digest(mode + "\x00" + subject + "\x00" + strings.ToLower(input))
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
