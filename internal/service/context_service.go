package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"colors-coach/internal/domain"
	"colors-coach/internal/repository"
)

const (
	coachRoleUser  = "user"
	coachRoleCoach = "coach"

	defaultContextMessages = 10
)

// ContextService define contrato para recuperar contexto conversacional.
type ContextService interface {
	GetContext(ctx context.Context, userID, mode string) (string, error)
}

// BasicContextService obtiene los últimos mensajes con el coach y los formatea como texto plano.
type BasicContextService struct {
	messageRepo repository.CoachMessageRepository
	limit       int
}

func NewBasicContextService(messageRepo repository.CoachMessageRepository) *BasicContextService {
	return &BasicContextService{messageRepo: messageRepo, limit: defaultContextMessages}
}

func (s *BasicContextService) GetContext(ctx context.Context, userID, mode string) (string, error) {
	if s == nil || s.messageRepo == nil || strings.TrimSpace(userID) == "" {
		return "", nil
	}

	messages, err := s.messageRepo.ListRecent(ctx, userID, mode, s.limit)
	if err != nil {
		return "", fmt.Errorf("list coach messages: %w", err)
	}

	if len(messages) == 0 {
		return "", nil
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})

	if len(messages) > s.limit {
		messages = messages[len(messages)-s.limit:]
	}

	lines := make([]string, 0, len(messages))
	for _, m := range messages {
		lines = append(lines, fmt.Sprintf("%s: %s", speakerLabel(m), m.Content))
	}

	return strings.Join(lines, "\n"), nil
}

func speakerLabel(m domain.CoachMessage) string {
	if strings.EqualFold(m.Role, coachRoleCoach) {
		return "Coach"
	}
	return "Usuario"
}
