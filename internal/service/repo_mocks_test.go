package service

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"colors-coach/internal/domain"
	"colors-coach/internal/repository"
)

type mockCoachMessageRepo struct {
	mu        sync.Mutex
	msgs      []domain.CoachMessage
	byUser    map[string][]domain.CoachMessage
	created   []domain.CoachMessage
	err       error
	createErr error
	// echo devuelve en ListRecent lo guardado con Create, como la tabla real.
	echo bool
}

func (m *mockCoachMessageRepo) Create(_ context.Context, message domain.CoachMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, message)
	return nil
}

func (m *mockCoachMessageRepo) ListRecent(_ context.Context, userID, mode string, _ int) ([]domain.CoachMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.echo {
		var out []domain.CoachMessage
		for _, msg := range m.created {
			if msg.UserID == userID && msg.Mode == mode {
				out = append(out, msg)
			}
		}
		return out, nil
	}
	if m.byUser != nil {
		return append([]domain.CoachMessage(nil), m.byUser[userID]...), nil
	}
	return m.msgs, nil
}

type mockResultRepo struct {
	results   map[string]domain.AssessmentResult
	saveErr   error
	getErr    error
	similar   []domain.SimilarProfile
	lastMix   pgvector.Vector
	lastK     int
	saveCalls int
}

func newMockResultRepo() *mockResultRepo {
	return &mockResultRepo{results: make(map[string]domain.AssessmentResult)}
}

func (m *mockResultRepo) Save(_ context.Context, result domain.AssessmentResult) error {
	m.saveCalls++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.results[result.UserID] = result
	return nil
}

func (m *mockResultRepo) GetByUserID(_ context.Context, userID string) (domain.AssessmentResult, error) {
	if m.getErr != nil {
		return domain.AssessmentResult{}, m.getErr
	}
	res, ok := m.results[userID]
	if !ok {
		return domain.AssessmentResult{}, pgx.ErrNoRows
	}
	return res, nil
}

func (m *mockResultRepo) FindSimilar(_ context.Context, _ string, mix pgvector.Vector, k int) ([]domain.SimilarProfile, error) {
	m.lastMix = mix
	m.lastK = k
	return m.similar, nil
}

type mockTeamRepo struct {
	mu        sync.Mutex
	teams     map[string]domain.Team
	createErr error
	listErr   error
}

func newMockTeamRepo(names ...string) *mockTeamRepo {
	m := &mockTeamRepo{teams: make(map[string]domain.Team)}
	for _, n := range names {
		m.teams[n] = domain.Team{ID: "t-" + n, Name: n}
	}
	return m
}

func (m *mockTeamRepo) Create(_ context.Context, team domain.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.teams[team.Name] = team
	return nil
}

func (m *mockTeamRepo) GetByName(_ context.Context, name string) (domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	team, ok := m.teams[name]
	if !ok {
		return domain.Team{}, pgx.ErrNoRows
	}
	return team, nil
}

func (m *mockTeamRepo) List(_ context.Context) ([]domain.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	teams := make([]domain.Team, 0, len(m.teams))
	for _, t := range m.teams {
		teams = append(teams, t)
	}
	return teams, nil
}

var (
	_ repository.CoachMessageRepository = (*mockCoachMessageRepo)(nil)
	_ repository.ResultRepository       = (*mockResultRepo)(nil)
	_ repository.TeamRepository         = (*mockTeamRepo)(nil)
	_ repository.UserRepository         = (*mockUserRepo)(nil)
)
