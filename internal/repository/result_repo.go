package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"colors-coach/internal/domain"
)

// ResultRepository guarda los ultimos Scores de cada usuario.
type ResultRepository interface {
	Save(ctx context.Context, result domain.AssessmentResult) error
	GetByUserID(ctx context.Context, userID string) (domain.AssessmentResult, error)
	FindSimilar(ctx context.Context, userID string, mix pgvector.Vector, k int) ([]domain.SimilarProfile, error)
}

type PgResultRepository struct {
	pool *pgxpool.Pool
}

func NewPgResultRepository(pool *pgxpool.Pool) *PgResultRepository {
	return &PgResultRepository{pool: pool}
}

// ColorMix es el vector de proporciones por color que indexa pgvector.
func ColorMix(scores domain.Scores) pgvector.Vector {
	return pgvector.NewVector(scores.ColorTotals().Shares())
}

// Save hace upsert por user_id: reenviar el cuestionario sobrescribe el resultado anterior.
func (r *PgResultRepository) Save(ctx context.Context, result domain.AssessmentResult) error {
	const query = `
		INSERT INTO assessment_results (user_id, score_a, score_b, score_c, score_d, color_mix, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id)
		DO UPDATE SET
			score_a = EXCLUDED.score_a,
			score_b = EXCLUDED.score_b,
			score_c = EXCLUDED.score_c,
			score_d = EXCLUDED.score_d,
			color_mix = EXCLUDED.color_mix,
			completed_at = EXCLUDED.completed_at
	`
	_, err := r.pool.Exec(ctx, query,
		result.UserID,
		result.Scores.A,
		result.Scores.B,
		result.Scores.C,
		result.Scores.D,
		ColorMix(result.Scores),
		result.CompletedAt,
	)
	return err
}

func (r *PgResultRepository) GetByUserID(ctx context.Context, userID string) (domain.AssessmentResult, error) {
	const query = `
		SELECT user_id, score_a, score_b, score_c, score_d, completed_at
		FROM assessment_results
		WHERE user_id = $1
	`
	var res domain.AssessmentResult
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&res.UserID,
		&res.Scores.A,
		&res.Scores.B,
		&res.Scores.C,
		&res.Scores.D,
		&res.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AssessmentResult{}, err
	}
	return res, err
}

// FindSimilar ordena a los demas usuarios por distancia euclidiana de su mezcla de colores.
func (r *PgResultRepository) FindSimilar(ctx context.Context, userID string, mix pgvector.Vector, k int) ([]domain.SimilarProfile, error) {
	if k <= 0 {
		k = 5
	}
	const query = `
		SELECT u.id, u.display_name, u.team_name, res.score_a, res.score_b, res.score_c, res.score_d, res.color_mix <-> $2 AS distance
		FROM assessment_results res
		JOIN users u ON u.id = res.user_id
		WHERE res.user_id <> $1
		ORDER BY res.color_mix <-> $2
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userID, mix, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSimilar(rows)
}

func scanSimilar(rows pgxRows) ([]domain.SimilarProfile, error) {
	profiles := []domain.SimilarProfile{}
	for rows.Next() {
		var (
			p      domain.SimilarProfile
			scores domain.Scores
		)
		if err := rows.Scan(
			&p.UserID,
			&p.DisplayName,
			&p.TeamName,
			&scores.A,
			&scores.B,
			&scores.C,
			&scores.D,
			&p.Distance,
		); err != nil {
			return nil, err
		}
		p.Dominant = scores.Dominant()
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return profiles, nil
}
