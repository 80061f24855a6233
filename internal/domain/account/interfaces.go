package account

import "context"

// Repository persists the single account record. Get returns ErrNoAccount
// when no signup has happened yet.
type Repository interface {
	Get(ctx context.Context) (*Account, error)
	Save(ctx context.Context, acct *Account) error
}
