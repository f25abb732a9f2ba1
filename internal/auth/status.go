package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/storage"
)

// Status is the tri-state result of resolving an account for a profile.
type Status int

const (
	StatusNotExist Status = iota + 1
	StatusNotEnabled
	StatusOK
)

func (s Status) String() string {
	switch s {
	case StatusNotExist:
		return "not_exist"
	case StatusNotEnabled:
		return "not_enabled"
	case StatusOK:
		return "ok"
	}
	return "unknown"
}

// StatusResolver answers whether an id may act under a profile right now.
// Nothing is cached: enablement changes apply to the very next request.
type StatusResolver struct {
	accounts storage.AccountReader
	log      zerolog.Logger
}

// NewStatusResolver returns a resolver reading from accounts.
func NewStatusResolver(accounts storage.AccountReader, log zerolog.Logger) *StatusResolver {
	return &StatusResolver{accounts: accounts, log: log}
}

// Resolve looks up (id, profile). A profile mismatch and a store failure
// both resolve to StatusNotExist.
func (r *StatusResolver) Resolve(ctx context.Context, id int64, profile models.Profile) Status {
	acc, err := r.accounts.FindAccount(ctx, id, profile)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.log.Error().Err(err).Int64("account_id", id).Str("profile", profile.String()).Msg("resolve account status")
		}
		return StatusNotExist
	}
	if !acc.Enabled {
		return StatusNotEnabled
	}
	return StatusOK
}
