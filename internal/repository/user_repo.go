package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"colors-coach/internal/domain"
)

// UserRepository define el contrato de persistencia para usuarios.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByAuth(ctx context.Context, provider, subject string) (domain.User, error)
	LinkOAuth(ctx context.Context, userID, provider, subject string) error
	VerifyEmail(ctx context.Context, userID string, verifiedAt time.Time) error
	UpdateOTP(ctx context.Context, userID, codeHash string, expiresAt time.Time) error
	UpdateTeam(ctx context.Context, userID, teamName string) error
	ListMembers(ctx context.Context, teamName string) ([]domain.Member, error)
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, email, display_name, team_name, role, auth_provider, auth_subject, password_hash, email_verified_at, otp_code_hash, otp_expires_at, created_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, email, display_name, team_name, role, auth_provider, auth_subject, password_hash, email_verified_at, otp_code_hash, otp_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.TeamName,
		user.Role,
		user.AuthProvider,
		user.AuthSubject,
		user.PasswordHash,
		user.EmailVerifiedAt,
		user.OtpCodeHash,
		user.OtpExpiresAt,
		user.CreatedAt,
	)
	return err
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByAuth(ctx context.Context, provider, subject string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE auth_provider = $1 AND auth_subject = $2`
	return scanUser(r.pool.QueryRow(ctx, query, provider, subject))
}

func (r *PgUserRepository) LinkOAuth(ctx context.Context, userID, provider, subject string) error {
	const query = `UPDATE users SET auth_provider = $2, auth_subject = $3 WHERE id = $1`
	return execOne(ctx, r.pool, query, userID, provider, subject)
}

func (r *PgUserRepository) VerifyEmail(ctx context.Context, userID string, verifiedAt time.Time) error {
	const query = `
		UPDATE users
		SET email_verified_at = $2, otp_code_hash = '', otp_expires_at = NULL
		WHERE id = $1
	`
	return execOne(ctx, r.pool, query, userID, verifiedAt)
}

func (r *PgUserRepository) UpdateOTP(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	const query = `UPDATE users SET otp_code_hash = $2, otp_expires_at = $3 WHERE id = $1`
	return execOne(ctx, r.pool, query, userID, codeHash, expiresAt)
}

func (r *PgUserRepository) UpdateTeam(ctx context.Context, userID, teamName string) error {
	const query = `UPDATE users SET team_name = $2 WHERE id = $1`
	return execOne(ctx, r.pool, query, userID, teamName)
}

// ListMembers devuelve los usuarios con sus ultimos Scores (si existen). teamName vacio lista a todos.
func (r *PgUserRepository) ListMembers(ctx context.Context, teamName string) ([]domain.Member, error) {
	const query = `
		SELECT u.id, u.email, u.display_name, u.team_name, u.role,
			res.score_a, res.score_b, res.score_c, res.score_d, res.completed_at
		FROM users u
		LEFT JOIN assessment_results res ON res.user_id = u.id
		WHERE $1 = '' OR u.team_name = $1
		ORDER BY u.team_name ASC, u.display_name ASC, u.email ASC
	`
	rows, err := r.pool.Query(ctx, query, teamName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMembers(rows)
}

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.DisplayName,
		&u.TeamName,
		&u.Role,
		&u.AuthProvider,
		&u.AuthSubject,
		&u.PasswordHash,
		&u.EmailVerifiedAt,
		&u.OtpCodeHash,
		&u.OtpExpiresAt,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}
	return u, err
}

func scanMembers(rows pgxRows) ([]domain.Member, error) {
	members := []domain.Member{}
	for rows.Next() {
		var (
			m           domain.Member
			a, b, c, d  *int
			completedAt *time.Time
		)
		if err := rows.Scan(
			&m.UserID,
			&m.Email,
			&m.DisplayName,
			&m.TeamName,
			&m.Role,
			&a, &b, &c, &d,
			&completedAt,
		); err != nil {
			return nil, err
		}
		if a != nil && b != nil && c != nil && d != nil {
			m.Scores = &domain.Scores{A: *a, B: *b, C: *c, D: *d}
			m.CompletedAt = completedAt
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}
