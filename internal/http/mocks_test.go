package http

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"

	"colors-coach/internal/domain"
	"colors-coach/internal/repository"
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
	usersByAuth  map[string]string
	scores       map[string]domain.Scores
	createErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		usersByAuth:  make(map[string]string),
		scores:       make(map[string]domain.Scores),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.usersByID[user.ID] = user
	if user.Email != "" {
		m.usersByEmail[user.Email] = user.ID
	}
	if user.AuthProvider != "" && user.AuthSubject != "" {
		m.usersByAuth[user.AuthProvider+"|"+user.AuthSubject] = user.ID
	}
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByAuth[provider+"|"+subject]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) update(id string, fn func(*domain.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	fn(&user)
	m.usersByID[id] = user
	return nil
}

func (m *mockUserRepo) UpdateOTP(_ context.Context, id, otpHash string, otpExpiresAt time.Time) error {
	return m.update(id, func(u *domain.User) {
		u.OtpCodeHash = otpHash
		u.OtpExpiresAt = &otpExpiresAt
	})
}

func (m *mockUserRepo) VerifyEmail(_ context.Context, id string, verifiedAt time.Time) error {
	return m.update(id, func(u *domain.User) {
		u.EmailVerifiedAt = &verifiedAt
		u.OtpCodeHash = ""
		u.OtpExpiresAt = nil
	})
}

func (m *mockUserRepo) LinkOAuth(_ context.Context, id, provider, subject string) error {
	err := m.update(id, func(u *domain.User) {
		u.AuthProvider = provider
		u.AuthSubject = subject
	})
	if err == nil {
		m.mu.Lock()
		m.usersByAuth[provider+"|"+subject] = id
		m.mu.Unlock()
	}
	return err
}

func (m *mockUserRepo) UpdateTeam(_ context.Context, id, teamName string) error {
	return m.update(id, func(u *domain.User) { u.TeamName = teamName })
}

func (m *mockUserRepo) ListMembers(_ context.Context, teamName string) ([]domain.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var members []domain.Member
	for _, u := range m.usersByID {
		if teamName != "" && u.TeamName != teamName {
			continue
		}
		member := domain.Member{UserID: u.ID, Email: u.Email, DisplayName: u.DisplayName, TeamName: u.TeamName, Role: u.Role}
		if sc, ok := m.scores[u.ID]; ok {
			member.Scores = &sc
		}
		members = append(members, member)
	}
	return members, nil
}

type mockEmailSender struct {
	lastTo      string
	lastCode    string
	lastExpires time.Time
	reportTo    string
	err         error
}

func (m *mockEmailSender) SendVerificationOTP(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	m.lastTo = toEmail
	m.lastCode = code
	m.lastExpires = expiresAt
	return m.err
}

func (m *mockEmailSender) SendProfileReport(_ context.Context, toEmail string, _ string, _ domain.Analysis) error {
	m.reportTo = toEmail
	return m.err
}

// mockResultRepo guarda tambien en los scores del mockUserRepo para que ListMembers los vea.
type mockResultRepo struct {
	mu      sync.Mutex
	users   *mockUserRepo
	results map[string]domain.AssessmentResult
	similar []domain.SimilarProfile
}

func newMockResultRepo(users *mockUserRepo) *mockResultRepo {
	return &mockResultRepo{users: users, results: make(map[string]domain.AssessmentResult)}
}

func (m *mockResultRepo) Save(_ context.Context, result domain.AssessmentResult) error {
	m.mu.Lock()
	m.results[result.UserID] = result
	m.mu.Unlock()
	if m.users != nil {
		m.users.mu.Lock()
		m.users.scores[result.UserID] = result.Scores
		m.users.mu.Unlock()
	}
	return nil
}

func (m *mockResultRepo) GetByUserID(_ context.Context, userID string) (domain.AssessmentResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.results[userID]
	if !ok {
		return domain.AssessmentResult{}, pgx.ErrNoRows
	}
	return res, nil
}

func (m *mockResultRepo) FindSimilar(_ context.Context, _ string, _ pgvector.Vector, _ int) ([]domain.SimilarProfile, error) {
	return m.similar, nil
}

type mockTeamRepo struct {
	mu    sync.Mutex
	teams map[string]domain.Team
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
	teams := make([]domain.Team, 0, len(m.teams))
	for _, t := range m.teams {
		teams = append(teams, t)
	}
	return teams, nil
}

type mockCoachMessageRepo struct {
	mu   sync.Mutex
	msgs []domain.CoachMessage
}

func (m *mockCoachMessageRepo) Create(_ context.Context, message domain.CoachMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, message)
	return nil
}

func (m *mockCoachMessageRepo) ListRecent(_ context.Context, userID, mode string, limit int) ([]domain.CoachMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.CoachMessage
	for _, msg := range m.msgs {
		if msg.UserID == userID && msg.Mode == mode {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

var (
	_ repository.UserRepository         = (*mockUserRepo)(nil)
	_ repository.ResultRepository       = (*mockResultRepo)(nil)
	_ repository.TeamRepository         = (*mockTeamRepo)(nil)
	_ repository.CoachMessageRepository = (*mockCoachMessageRepo)(nil)
)
