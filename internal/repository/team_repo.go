package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colors-coach/internal/domain"
)

type TeamRepository interface {
	Create(ctx context.Context, team domain.Team) error
	GetByName(ctx context.Context, name string) (domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
}

type PgTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgTeamRepository(pool *pgxpool.Pool) *PgTeamRepository {
	return &PgTeamRepository{pool: pool}
}

func (r *PgTeamRepository) Create(ctx context.Context, team domain.Team) error {
	const query = `
		INSERT INTO teams (id, name, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query, team.ID, team.Name, team.CreatedAt)
	return err
}

func (r *PgTeamRepository) GetByName(ctx context.Context, name string) (domain.Team, error) {
	const query = `
		SELECT t.id, t.name, t.created_at, COUNT(u.id)
		FROM teams t
		LEFT JOIN users u ON u.team_name = t.name
		WHERE t.name = $1
		GROUP BY t.id, t.name, t.created_at
	`
	var team domain.Team
	err := r.pool.QueryRow(ctx, query, name).Scan(
		&team.ID,
		&team.Name,
		&team.CreatedAt,
		&team.MemberCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, err
	}
	return team, err
}

// List devuelve los equipos ordenados por nombre con su cantidad de miembros.
func (r *PgTeamRepository) List(ctx context.Context) ([]domain.Team, error) {
	const query = `
		SELECT t.id, t.name, t.created_at, COUNT(u.id)
		FROM teams t
		LEFT JOIN users u ON u.team_name = t.name
		GROUP BY t.id, t.name, t.created_at
		ORDER BY t.name ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := []domain.Team{}
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.CreatedAt, &team.MemberCount); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}
