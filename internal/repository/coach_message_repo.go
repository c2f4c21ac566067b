package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"colors-coach/internal/domain"
)

type CoachMessageRepository interface {
	Create(ctx context.Context, message domain.CoachMessage) error
	ListRecent(ctx context.Context, userID, mode string, limit int) ([]domain.CoachMessage, error)
}

type PgCoachMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgCoachMessageRepository(pool *pgxpool.Pool) *PgCoachMessageRepository {
	return &PgCoachMessageRepository{pool: pool}
}

func (r *PgCoachMessageRepository) Create(ctx context.Context, message domain.CoachMessage) error {
	const query = `
		INSERT INTO coach_messages (id, user_id, mode, subject, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.UserID,
		message.Mode,
		message.Subject,
		message.Role,
		message.Content,
		message.CreatedAt,
	)
	return err
}

// ListRecent devuelve los ultimos limit mensajes del usuario en orden cronologico.
func (r *PgCoachMessageRepository) ListRecent(ctx context.Context, userID, mode string, limit int) ([]domain.CoachMessage, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT id, user_id, mode, subject, role, content, created_at
		FROM (
			SELECT id, user_id, mode, subject, role, content, created_at
			FROM coach_messages
			WHERE user_id = $1 AND mode = $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, mode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.CoachMessage
	for rows.Next() {
		var msg domain.CoachMessage
		err = rows.Scan(
			&msg.ID,
			&msg.UserID,
			&msg.Mode,
			&msg.Subject,
			&msg.Role,
			&msg.Content,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
