package repository

import (
	"context"
	"fmt"

	"xubot/database"
	"xubot/models"

	"github.com/jackc/pgx/v5"
)

// PostgresLedgerStore keeps the ledger in an accounts table. The database is
// authoritative, so Reload is a no-op and every read goes to the pool.
type PostgresLedgerStore struct {
	db              *database.DB
	startingBalance int64
}

// NewPostgresLedgerStore creates a ledger store backed by Postgres
func NewPostgresLedgerStore(db *database.DB, startingBalance int64) *PostgresLedgerStore {
	return &PostgresLedgerStore{db: db, startingBalance: startingBalance}
}

// Get returns the account for a user, lazily creating it with the starting balance
func (s *PostgresLedgerStore) Get(ctx context.Context, userID int64) (*models.Account, bool, error) {
	account, err := s.fetch(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if account != nil {
		return account, false, nil
	}

	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING user_id, balance, created_at, last_updated
	`
	account = &models.Account{}
	err = s.db.QueryRow(ctx, query, userID, s.startingBalance).Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.LastUpdated,
	)
	if err == pgx.ErrNoRows {
		// Lost a create race; the other writer's row is now visible
		account, err = s.fetch(ctx, userID)
		if err != nil {
			return nil, false, err
		}
		return account, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account for user %d: %w", userID, err)
	}
	return account, true, nil
}

// Set overwrites a user's balance
func (s *PostgresLedgerStore) Set(ctx context.Context, userID int64, amount int64) error {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET balance = EXCLUDED.balance, last_updated = NOW()
	`
	if _, err := s.db.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to set balance for user %d: %w", userID, err)
	}
	return nil
}

// SetPair writes two balances atomically. Used by transfers so a crash
// between the debit and the credit cannot lose xu.
func (s *PostgresLedgerStore) SetPair(ctx context.Context, firstID, firstAmount, secondID, secondAmount int64) error {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET balance = EXCLUDED.balance, last_updated = NOW()
	`
	err := s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, firstID, firstAmount); err != nil {
			return fmt.Errorf("failed to set balance for user %d: %w", firstID, err)
		}
		if _, err := tx.Exec(ctx, query, secondID, secondAmount); err != nil {
			return fmt.Errorf("failed to set balance for user %d: %w", secondID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set balance pair: %w", err)
	}
	return nil
}

// All returns every account
func (s *PostgresLedgerStore) All(ctx context.Context) ([]*models.Account, error) {
	query := `
		SELECT user_id, balance, created_at, last_updated
		FROM accounts
		ORDER BY balance DESC
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		err := rows.Scan(&account.UserID, &account.Balance, &account.CreatedAt, &account.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// Reload is a no-op: the database is always authoritative
func (s *PostgresLedgerStore) Reload(ctx context.Context) error {
	return nil
}

func (s *PostgresLedgerStore) fetch(ctx context.Context, userID int64) (*models.Account, error) {
	query := `
		SELECT user_id, balance, created_at, last_updated
		FROM accounts
		WHERE user_id = $1
	`
	var account models.Account
	err := s.db.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.LastUpdated,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", userID, err)
	}
	return &account, nil
}
