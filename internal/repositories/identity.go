package repositories

import (
	"context"
	"time"
)

// Account is an identity-provider record, decoupled from the SDK types.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAccount carries the fields needed to create a provider account.
type NewAccount struct {
	Email    string
	Password string
	Name     string
}

// IdentityProvider wraps the hosted auth service. Implementations must
// return ErrAccountNotFound (not a nil, nil pair) when a lookup misses.
type IdentityProvider interface {
	GetAccountByID(ctx context.Context, id string) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	ListAccounts(ctx context.Context) ([]*Account, error)

	CreateAccount(ctx context.Context, acc NewAccount) (*Account, error)
	DeleteAccount(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, password string) error
}
