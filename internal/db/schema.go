package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"colors-coach/internal/domain"
)

// ColorMixDimension es la dimension del vector de proporciones (rojo, amarillo, verde, azul).
const ColorMixDimension = 4

func schemaStatements() []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector;`,
		`CREATE TABLE IF NOT EXISTS teams (
  id UUID PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`,
		fmt.Sprintf(`INSERT INTO teams (id, name) VALUES ('00000000-0000-0000-0000-000000000001', '%s')
ON CONFLICT (name) DO NOTHING;`, domain.DefaultTeamName),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
  id UUID PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  team_name TEXT NOT NULL DEFAULT '%s' REFERENCES teams (name) ON UPDATE CASCADE,
  role TEXT NOT NULL DEFAULT 'user',
  auth_provider TEXT NOT NULL DEFAULT '',
  auth_subject TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL DEFAULT '',
  email_verified_at TIMESTAMPTZ,
  otp_code_hash TEXT NOT NULL DEFAULT '',
  otp_expires_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL
);`, domain.DefaultTeamName),
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_auth ON users (auth_provider, auth_subject) WHERE auth_subject <> '';`,
		`CREATE INDEX IF NOT EXISTS idx_users_team_name ON users (team_name);`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS assessment_results (
  user_id UUID PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  score_a INT NOT NULL,
  score_b INT NOT NULL,
  score_c INT NOT NULL,
  score_d INT NOT NULL,
  color_mix vector(%d) NOT NULL,
  completed_at TIMESTAMPTZ NOT NULL
);`, ColorMixDimension),
		`CREATE TABLE IF NOT EXISTS coach_messages (
  id UUID PRIMARY KEY,
  user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  mode TEXT NOT NULL,
  subject TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_coach_messages_user_created ON coach_messages (user_id, created_at DESC);`,
	}
}

// EnsureSchema crea tablas e indices si no existen. Es idempotente.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("db pool not initialized")
	}
	for _, stmt := range schemaStatements() {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
