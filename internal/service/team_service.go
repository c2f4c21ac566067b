package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"colors-coach/internal/assessment"
	"colors-coach/internal/domain"
	"colors-coach/internal/repository"
)

var (
	ErrTeamServiceNotConfigured = errors.New("team service not configured")
	ErrTeamInvalidName          = errors.New("team name invalid")
	ErrTeamExists               = errors.New("team already exists")
	ErrTeamNotFound             = errors.New("team not found")
)

const maxTeamNameLen = 80

// TeamOverview es la vista del facilitador sobre un equipo.
type TeamOverview struct {
	Team         domain.Team       `json:"team"`
	Members      []domain.Member   `json:"members"`
	Stats        domain.TeamStats  `json:"stats"`
	Map          []domain.MapPoint `json:"map"`
	MissingColor domain.Color      `json:"missing_color,omitempty"`
}

// Dashboard agrupa usuarios, equipos y la distribucion global de colores.
type Dashboard struct {
	Users []domain.Member  `json:"users"`
	Teams []domain.Team    `json:"teams"`
	Stats domain.TeamStats `json:"stats"`
}

// TeamService administra equipos y su composicion de colores.
type TeamService struct {
	teams  repository.TeamRepository
	users  repository.UserRepository
	logger *zap.Logger
}

func NewTeamService(teams repository.TeamRepository, users repository.UserRepository, logger *zap.Logger) *TeamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeamService{teams: teams, users: users, logger: logger}
}

func (s *TeamService) CreateTeam(ctx context.Context, name string) (domain.Team, error) {
	if s == nil || s.teams == nil {
		return domain.Team{}, ErrTeamServiceNotConfigured
	}
	name, err := normalizeTeamName(name)
	if err != nil {
		return domain.Team{}, err
	}

	if _, err := s.teams.GetByName(ctx, name); err == nil {
		return domain.Team{}, ErrTeamExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}

	team := domain.Team{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.teams.Create(ctx, team); err != nil {
		if repository.IsUniqueViolation(err) {
			return domain.Team{}, ErrTeamExists
		}
		return domain.Team{}, fmt.Errorf("create team: %w", err)
	}
	s.logger.Info("team created", zap.String("team", name))
	return team, nil
}

func (s *TeamService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	if s == nil || s.teams == nil {
		return nil, ErrTeamServiceNotConfigured
	}
	return s.teams.List(ctx)
}

// MoveUser asigna el usuario a un equipo existente.
func (s *TeamService) MoveUser(ctx context.Context, userID, teamName string) error {
	if s == nil || s.teams == nil || s.users == nil {
		return ErrTeamServiceNotConfigured
	}
	teamName, err := normalizeTeamName(teamName)
	if err != nil {
		return err
	}
	if _, err := s.getTeam(ctx, teamName); err != nil {
		return err
	}
	if err := s.users.UpdateTeam(ctx, strings.TrimSpace(userID), teamName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		if repository.IsForeignKeyViolation(err) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("update user team: %w", err)
	}
	return nil
}

// Members lista los miembros de teamName, o de todos los equipos si teamName esta vacio.
func (s *TeamService) Members(ctx context.Context, teamName string) ([]domain.Member, error) {
	if s == nil || s.users == nil {
		return nil, ErrTeamServiceNotConfigured
	}
	teamName = strings.TrimSpace(teamName)
	if teamName != "" {
		if _, err := s.getTeam(ctx, teamName); err != nil {
			return nil, err
		}
	}
	members, err := s.users.ListMembers(ctx, teamName)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Overview calcula estadisticas y mapa de un equipo.
func (s *TeamService) Overview(ctx context.Context, teamName string) (TeamOverview, error) {
	if s == nil || s.teams == nil || s.users == nil {
		return TeamOverview{}, ErrTeamServiceNotConfigured
	}
	team, err := s.getTeam(ctx, strings.TrimSpace(teamName))
	if err != nil {
		return TeamOverview{}, err
	}
	members, err := s.users.ListMembers(ctx, team.Name)
	if err != nil {
		return TeamOverview{}, fmt.Errorf("list members: %w", err)
	}
	stats := assessment.AggregateTeam(members)
	overview := TeamOverview{
		Team:    team,
		Members: members,
		Stats:   stats,
		Map:     assessment.TeamMap(members),
	}
	if stats.Total > 0 {
		overview.MissingColor = assessment.MissingColor(stats)
	}
	return overview, nil
}

// Dashboard carga usuarios y equipos en paralelo.
func (s *TeamService) Dashboard(ctx context.Context) (Dashboard, error) {
	if s == nil || s.teams == nil || s.users == nil {
		return Dashboard{}, ErrTeamServiceNotConfigured
	}
	var (
		members []domain.Member
		teams   []domain.Team
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.users.ListMembers(gctx, "")
		if err != nil {
			return fmt.Errorf("list members: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		teams, err = s.teams.List(gctx)
		if err != nil {
			return fmt.Errorf("list teams: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Users: members,
		Teams: teams,
		Stats: assessment.AggregateTeam(members),
	}, nil
}

func (s *TeamService) getTeam(ctx context.Context, name string) (domain.Team, error) {
	team, err := s.teams.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Team{}, ErrTeamNotFound
		}
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

func normalizeTeamName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" || len(name) > maxTeamNameLen {
		return "", ErrTeamInvalidName
	}
	return name, nil
}
