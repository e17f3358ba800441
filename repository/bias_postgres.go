package repository

import (
	"context"
	"fmt"

	"xubot/database"
	"xubot/models"

	"github.com/jackc/pgx/v5"
)

// PostgresBiasStore keeps bias records in a bias_records table
type PostgresBiasStore struct {
	db *database.DB
}

// NewPostgresBiasStore creates a bias store backed by Postgres
func NewPostgresBiasStore(db *database.DB) *PostgresBiasStore {
	return &PostgresBiasStore{db: db}
}

// Get returns the bias record for a user, or nil if none exists
func (s *PostgresBiasStore) Get(ctx context.Context, userID int64) (*models.BiasRecord, error) {
	query := `
		SELECT user_id, state, set_by, set_at, reason, games_affected
		FROM bias_records
		WHERE user_id = $1
	`
	var record models.BiasRecord
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&record.State,
		&record.SetBy,
		&record.SetAt,
		&record.Reason,
		&record.GamesAffected,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bias record for user %d: %w", userID, err)
	}
	return &record, nil
}

// Put stores a bias record for record.UserID
func (s *PostgresBiasStore) Put(ctx context.Context, record *models.BiasRecord) error {
	query := `
		INSERT INTO bias_records (user_id, state, set_by, set_at, reason, games_affected)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET state = EXCLUDED.state, set_by = EXCLUDED.set_by,
		              set_at = EXCLUDED.set_at, reason = EXCLUDED.reason
	`
	_, err := s.db.Exec(ctx, query,
		record.UserID, record.State, record.SetBy, record.SetAt, record.Reason, record.GamesAffected)
	if err != nil {
		return fmt.Errorf("failed to put bias record for user %d: %w", record.UserID, err)
	}
	return nil
}

// Remove deletes a user's bias record, reporting whether one existed
func (s *PostgresBiasStore) Remove(ctx context.Context, userID int64) (bool, error) {
	result, err := s.db.Exec(ctx, `DELETE FROM bias_records WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove bias record for user %d: %w", userID, err)
	}
	return result.RowsAffected() > 0, nil
}

// IncrementGamesAffected bumps the audit counter on a user's record
func (s *PostgresBiasStore) IncrementGamesAffected(ctx context.Context, userID int64) error {
	query := `
		UPDATE bias_records
		SET games_affected = games_affected + 1
		WHERE user_id = $1
	`
	if _, err := s.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to increment games affected for user %d: %w", userID, err)
	}
	return nil
}

// All returns every bias record
func (s *PostgresBiasStore) All(ctx context.Context) ([]*models.BiasRecord, error) {
	query := `
		SELECT user_id, state, set_by, set_at, reason, games_affected
		FROM bias_records
		ORDER BY set_at
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get bias records: %w", err)
	}
	defer rows.Close()

	var records []*models.BiasRecord
	for rows.Next() {
		var record models.BiasRecord
		err := rows.Scan(&record.UserID, &record.State, &record.SetBy, &record.SetAt, &record.Reason, &record.GamesAffected)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bias record: %w", err)
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bias records: %w", err)
	}
	return records, nil
}

// Reload is a no-op: the database is always authoritative
func (s *PostgresBiasStore) Reload(ctx context.Context) error {
	return nil
}
