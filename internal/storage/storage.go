package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/garage-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// AccountReader captures the read paths used by the auth core.
type AccountReader interface {
	// FindAccount returns the account with the given id only if it carries profile.
	FindAccount(ctx context.Context, id int64, profile models.Profile) (models.Account, error)
	// FindByUsername returns the account registered under (username, profile).
	FindByUsername(ctx context.Context, username string, profile models.Profile) (models.Account, error)
	// UsernameExists reports whether (username, profile) is already taken.
	UsernameExists(ctx context.Context, username string, profile models.Profile) (bool, error)
}

// AccountWriter captures the multi-row writes; it is only handed out inside a transaction.
type AccountWriter interface {
	CreateAccount(ctx context.Context, account models.Account) (models.Account, error)
	CreateGarage(ctx context.Context, garage models.Garage) (models.Garage, error)
	CreateAdmin(ctx context.Context, admin models.Admin) (models.Admin, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetEnabled(ctx context.Context, id int64, profile models.Profile, enabled bool) error
}

// AccountStore is the credential store: reads plus transactional writes.
type AccountStore interface {
	AccountReader
	// WithTx runs fn in a transaction. fn returning an error rolls back every write made through tx.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx AccountWriter) error) error
}
