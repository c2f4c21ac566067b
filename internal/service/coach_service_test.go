package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"colors-coach/internal/domain"
	"colors-coach/internal/llm"
)

func newTestCoach(client *llm.MockClient, history *mockCoachMessageRepo) *CoachService {
	return NewCoachService(client, nil, history, NewBasicContextService(history), zap.NewNop(), CoachOptions{CacheSize: 8, CacheTTL: time.Minute})
}

func TestCoachService_AskValidatesInput(t *testing.T) {
	svc := newTestCoach(&llm.MockClient{Response: "ok"}, &mockCoachMessageRepo{})
	scores := domain.Scores{A: 10, B: 2, C: 8, D: 4}

	if _, err := svc.Ask(context.Background(), "u1", scores, "   "); !errors.Is(err, ErrCoachInvalidInput) {
		t.Fatalf("expected ErrCoachInvalidInput for blank input, got %v", err)
	}
	long := strings.Repeat("a", maxCoachInputLen+1)
	if _, err := svc.Ask(context.Background(), "u1", scores, long); !errors.Is(err, ErrCoachInvalidInput) {
		t.Fatalf("expected ErrCoachInvalidInput for long input, got %v", err)
	}
	if _, err := svc.Ask(context.Background(), "u1", domain.Scores{}, "hola"); !errors.Is(err, ErrCoachNoScores) {
		t.Fatalf("expected ErrCoachNoScores, got %v", err)
	}
}

func TestCoachService_NotConfigured(t *testing.T) {
	var svc *CoachService
	if _, err := svc.Ask(context.Background(), "u1", domain.Scores{A: 1}, "hola"); !errors.Is(err, ErrCoachNotConfigured) {
		t.Fatalf("expected ErrCoachNotConfigured, got %v", err)
	}
	svc = NewCoachService(nil, nil, nil, nil, nil, CoachOptions{})
	if _, err := svc.AskTeam(context.Background(), "u1", "General", domain.TeamStats{Red: 1, Total: 1}, "hola"); !errors.Is(err, ErrCoachNotConfigured) {
		t.Fatalf("expected ErrCoachNotConfigured, got %v", err)
	}
}

func TestCoachService_AskRendersAndRecords(t *testing.T) {
	client := &llm.MockClient{Response: "```markdown\n**Reflejo**: avanzas rapido.\n```"}
	history := &mockCoachMessageRepo{}
	svc := newTestCoach(client, history)

	reply, err := svc.Ask(context.Background(), "u1", domain.Scores{A: 10, B: 2, C: 8, D: 4}, "Como delego mejor?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Markdown != "**Reflejo**: avanzas rapido." {
		t.Fatalf("unexpected markdown: %q", reply.Markdown)
	}
	if !strings.Contains(reply.HTML, "<strong>Reflejo</strong>") {
		t.Fatalf("expected rendered html, got %q", reply.HTML)
	}
	if reply.Cached {
		t.Fatalf("first reply should not be cached")
	}

	if len(client.LastMessages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(client.LastMessages))
	}
	if client.LastMessages[0].Role != llm.RoleSystem || !strings.Contains(client.LastMessages[0].Content, "Dominante: Rojo") {
		t.Fatalf("system prompt missing profile: %q", client.LastMessages[0].Content)
	}
	if client.LastMessages[1].Content != "Como delego mejor?" {
		t.Fatalf("unexpected user message: %q", client.LastMessages[1].Content)
	}

	if len(history.created) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(history.created))
	}
	if history.created[0].Role != coachRoleUser || history.created[1].Role != coachRoleCoach {
		t.Fatalf("unexpected roles: %s, %s", history.created[0].Role, history.created[1].Role)
	}
	if history.created[1].Mode != domain.CoachModeIndividual || history.created[1].UserID != "u1" {
		t.Fatalf("unexpected stored message: %+v", history.created[1])
	}
}

func TestCoachService_AskUsesCache(t *testing.T) {
	client := &llm.MockClient{Response: "Consejo"}
	svc := newTestCoach(client, &mockCoachMessageRepo{})
	scores := domain.Scores{A: 3, B: 9, C: 2, D: 7}

	if _, err := svc.Ask(context.Background(), "u1", scores, "Como pido ayuda?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reply, err := svc.Ask(context.Background(), "u1", scores, "  como pido AYUDA?  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.Cached {
		t.Fatalf("expected cached reply")
	}
	if client.Calls != 1 {
		t.Fatalf("expected a single llm call, got %d", client.Calls)
	}

	if reply, _ := svc.Ask(context.Background(), "u2", scores, "Como pido ayuda?"); reply.Cached || client.Calls != 2 {
		t.Fatalf("another user must not share the cached reply, cached=%v calls=%d", reply.Cached, client.Calls)
	}
	if _, err := svc.Ask(context.Background(), "u1", domain.Scores{A: 9, B: 3, C: 2, D: 7}, "Como pido ayuda?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Calls != 3 {
		t.Fatalf("different scores must miss the cache, calls=%d", client.Calls)
	}
}

func TestCoachService_CacheIsScopedToUserHistory(t *testing.T) {
	history := &mockCoachMessageRepo{byUser: map[string][]domain.CoachMessage{
		"alice": {{UserID: "alice", Role: coachRoleUser, Content: "mi jefe Pedro me acosa", CreatedAt: time.Now()}},
	}}
	client := &llm.MockClient{Response: "Sobre Pedro: pone limites claros."}
	svc := newTestCoach(client, history)
	scores := domain.Scores{A: 10, B: 2, C: 8, D: 4}

	if _, err := svc.Ask(context.Background(), "alice", scores, "Como delego?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(client.LastMessages[0].Content, "Pedro") {
		t.Fatalf("expected alice's history in her prompt")
	}

	client.Response = "Empieza por tareas chicas."
	reply, err := svc.Ask(context.Background(), "bob", scores, "como delego?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Cached || client.Calls != 2 {
		t.Fatalf("bob must get his own reply, cached=%v calls=%d", reply.Cached, client.Calls)
	}
	if strings.Contains(reply.Markdown, "Pedro") || strings.Contains(client.LastMessages[0].Content, "Pedro") {
		t.Fatalf("alice's conversation leaked to bob: %q", reply.Markdown)
	}
	for _, msg := range history.created {
		if msg.UserID == "bob" && strings.Contains(msg.Content, "Pedro") {
			t.Fatalf("bob's history stored alice's reply: %+v", msg)
		}
	}
}

func TestCoachService_NewHistoryMissesCache(t *testing.T) {
	client := &llm.MockClient{Response: "Consejo"}
	svc := newTestCoach(client, &mockCoachMessageRepo{echo: true})
	scores := domain.Scores{A: 10, B: 2, C: 8, D: 4}

	for i := 0; i < 2; i++ {
		reply, err := svc.Ask(context.Background(), "u1", scores, "Y ahora?")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reply.Cached {
			t.Fatalf("call %d: reply cached although the history changed", i)
		}
	}
	if client.Calls != 2 {
		t.Fatalf("expected 2 llm calls, got %d", client.Calls)
	}
}

func TestCoachService_RateLimitsPerUserAndMode(t *testing.T) {
	client := &llm.MockClient{Response: "Consejo"}
	svc := NewCoachService(client, nil, &mockCoachMessageRepo{}, nil, zap.NewNop(), CoachOptions{
		Limiter: NewMemoryRateLimiter(CoachLimitPrefix, time.Hour, 1),
	})
	scores := domain.Scores{A: 10, B: 2, C: 8, D: 4}
	stats := domain.TeamStats{Red: 2, Blue: 1, Total: 3}
	ctx := context.Background()

	if _, err := svc.Ask(ctx, "u1", scores, "primera"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Ask(ctx, "u1", scores, "segunda"); !errors.Is(err, ErrCoachRateLimited) {
		t.Fatalf("expected ErrCoachRateLimited, got %v", err)
	}
	if reply, err := svc.Ask(ctx, "u1", scores, "primera"); err != nil || !reply.Cached {
		t.Fatalf("cached replies do not spend the quota, cached=%v err=%v", reply.Cached, err)
	}
	if _, err := svc.Ask(ctx, "u2", scores, "segunda"); err != nil {
		t.Fatalf("other users keep their quota, got %v", err)
	}

	if _, err := svc.AskTeam(ctx, "u1", "Ventas", stats, "reuniones"); err != nil {
		t.Fatalf("team mode has its own quota, got %v", err)
	}
	if _, err := svc.AskTeam(ctx, "u1", "Ventas", stats, "conflictos"); !errors.Is(err, ErrCoachRateLimited) {
		t.Fatalf("expected ErrCoachRateLimited for team, got %v", err)
	}
	if client.Calls != 3 {
		t.Fatalf("expected 3 llm calls, got %d", client.Calls)
	}
}

func TestCoachService_AskIncludesHistory(t *testing.T) {
	now := time.Now()
	history := &mockCoachMessageRepo{msgs: []domain.CoachMessage{
		{Role: coachRoleUser, Content: "me cuesta delegar", CreatedAt: now.Add(-time.Minute)},
		{Role: coachRoleCoach, Content: "empieza por tareas chicas", CreatedAt: now},
	}}
	client := &llm.MockClient{Response: "ok"}
	svc := newTestCoach(client, history)

	if _, err := svc.Ask(context.Background(), "u1", domain.Scores{A: 10, B: 2, C: 8, D: 4}, "Y ahora?"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	system := client.LastMessages[0].Content
	if !strings.Contains(system, "=== CONVERSACION RECIENTE ===") || !strings.Contains(system, "Usuario: me cuesta delegar") {
		t.Fatalf("expected history in prompt, got %q", system)
	}
}

func TestCoachService_HistoryErrorsDoNotFail(t *testing.T) {
	history := &mockCoachMessageRepo{err: errors.New("db down"), createErr: errors.New("db down")}
	client := &llm.MockClient{Response: "ok"}
	svc := newTestCoach(client, history)

	if _, err := svc.Ask(context.Background(), "u1", domain.Scores{A: 10, B: 2, C: 8, D: 4}, "hola"); err != nil {
		t.Fatalf("history failures should not fail the reply, got %v", err)
	}
}

func TestCoachService_LLMErrorIsWrapped(t *testing.T) {
	llmErr := errors.New("timeout")
	svc := newTestCoach(&llm.MockClient{Err: llmErr}, &mockCoachMessageRepo{})

	_, err := svc.Ask(context.Background(), "u1", domain.Scores{A: 10, B: 2, C: 8, D: 4}, "hola")
	if !errors.Is(err, ErrCoachUnavailable) || !errors.Is(err, llmErr) {
		t.Fatalf("expected wrapped ErrCoachUnavailable, got %v", err)
	}

	svc = newTestCoach(&llm.MockClient{Response: "   "}, &mockCoachMessageRepo{})
	if _, err := svc.Ask(context.Background(), "u1", domain.Scores{A: 10, B: 2, C: 8, D: 4}, "hola"); !errors.Is(err, ErrCoachUnavailable) {
		t.Fatalf("expected ErrCoachUnavailable on empty reply, got %v", err)
	}
}

func TestCoachService_AskTeam(t *testing.T) {
	client := &llm.MockClient{Response: "## Diagnostico\nEquipo veloz."}
	history := &mockCoachMessageRepo{}
	svc := newTestCoach(client, history)

	if _, err := svc.AskTeam(context.Background(), "admin", "Ventas", domain.TeamStats{}, "reuniones largas"); !errors.Is(err, ErrCoachNoTeamData) {
		t.Fatalf("expected ErrCoachNoTeamData, got %v", err)
	}

	stats := domain.TeamStats{Red: 3, Yellow: 2, Green: 1, Total: 6}
	reply, err := svc.AskTeam(context.Background(), "admin", "Ventas", stats, "reuniones largas")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply.HTML, "<h2>Diagnostico</h2>") {
		t.Fatalf("unexpected html: %q", reply.HTML)
	}
	system := client.LastMessages[0].Content
	for _, want := range []string{"EQUIPO VENTAS (6 participantes)", "Rojo (el decidido): 3", "Color menos representado: Azul"} {
		if !strings.Contains(system, want) {
			t.Fatalf("team prompt missing %q: %s", want, system)
		}
	}
	if len(history.created) != 2 || history.created[0].Subject != "Ventas" || history.created[0].Mode != domain.CoachModeTeam {
		t.Fatalf("unexpected stored team messages: %+v", history.created)
	}

	again, err := svc.AskTeam(context.Background(), "admin", "Ventas", stats, "Reuniones largas")
	if err != nil || !again.Cached || client.Calls != 1 {
		t.Fatalf("expected cached team reply, cached=%v calls=%d err=%v", again.Cached, client.Calls, err)
	}
}

func TestCleanCoachReply(t *testing.T) {
	cases := map[string]string{
		"":                           "",
		"\uFEFFhola":                 "hola",
		"```markdown\n# Titulo\n```": "# Titulo",
		"```md\ntexto\n```":          "texto",
		"antes\n```go\nx := 1\n```":  "antes\n```go\nx := 1\n```",
		"  sin fence  ":              "sin fence",
	}
	for in, want := range cases {
		if got := cleanCoachReply(in); got != want {
			t.Fatalf("cleanCoachReply(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCoachPromptBuilder_Individual(t *testing.T) {
	b := NewCoachPromptBuilder(nil)
	prompt := b.BuildIndividualPrompt(domain.Scores{A: 1, B: 9, C: 1, D: 9}, "")

	if !strings.Contains(prompt, "Dominante: Verde") {
		t.Fatalf("expected green dominant, got %s", prompt)
	}
	if !strings.Contains(prompt, "color complementario (Rojo)") {
		t.Fatalf("expected red as complementary color, got %s", prompt)
	}
	if strings.Contains(prompt, "CONVERSACION RECIENTE") {
		t.Fatalf("empty history must be omitted")
	}
}
