package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vertexhq/vertex/internal/domain/account"
)

// AccountRepository implements account.Repository for SQLite.
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Get retrieves the single account record.
func (r *AccountRepository) Get(ctx context.Context) (*account.Account, error) {
	var acct account.Account
	err := r.db.QueryRowContext(ctx, `
		SELECT email, salt, derived_key, created_at
		FROM accounts
		ORDER BY created_at ASC
		LIMIT 1
	`).Scan(&acct.Email, &acct.Salt, &acct.Key, &acct.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, account.ErrNoAccount
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return &acct, nil
}

// Save persists the account record.
func (r *AccountRepository) Save(ctx context.Context, acct *account.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (email, salt, derived_key, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			salt = excluded.salt,
			derived_key = excluded.derived_key
	`, acct.Email, acct.Salt, acct.Key, acct.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}
