package database

import (
	"context"
	"database/sql"
	"fmt"

	"vocab_reminder_bot/internal/domain/reminder"

	"github.com/jmoiron/sqlx"
)

// PostgresStateStore persists the engine's per-user state records
// (settings, ledgers) as rows keyed by (user_id, purpose).
type PostgresStateStore struct {
	db *sqlx.DB
}

func NewPostgresStateStore(db *sqlx.DB) *PostgresStateStore {
	return &PostgresStateStore{db: db}
}

func (s *PostgresStateStore) Get(ctx context.Context, userID int64, purpose reminder.Purpose) (string, bool, error) {
	query := `SELECT value FROM reminder_state WHERE user_id = $1 AND purpose = $2`
	var value string
	err := s.db.GetContext(ctx, &value, query, userID, purpose)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error reading state %s: %w", purpose, err)
	}
	return value, true, nil
}

func (s *PostgresStateStore) Set(ctx context.Context, userID int64, purpose reminder.Purpose, value string) error {
	query := `INSERT INTO reminder_state (user_id, purpose, value, updated_at)
               VALUES ($1, $2, $3, NOW())
               ON CONFLICT (user_id, purpose)
               DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.db.ExecContext(ctx, query, userID, purpose, value); err != nil {
		return fmt.Errorf("error writing state %s: %w", purpose, err)
	}
	return nil
}

func (s *PostgresStateStore) Remove(ctx context.Context, userID int64, purpose reminder.Purpose) error {
	query := `DELETE FROM reminder_state WHERE user_id = $1 AND purpose = $2`
	if _, err := s.db.ExecContext(ctx, query, userID, purpose); err != nil {
		return fmt.Errorf("error removing state %s: %w", purpose, err)
	}
	return nil
}
