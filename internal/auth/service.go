package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/storage"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(p Payload) (string, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, digest string) bool
	// Decoy is compared against when a username is unknown, so a miss costs
	// the same bcrypt work as a wrong password.
	Decoy() string
}

// LoginInput is an already shape-validated login attempt.
type LoginInput struct {
	Username string
	Password string
	Profile  models.Profile
}

// SignupInput is an already shape-validated garage self-registration.
type SignupInput struct {
	GarageName string
	Email      string
	Username   string
	Password   string
}

// AdminSeed describes the admin account provisioned at start-up.
type AdminSeed struct {
	Username string
	Password string
	Name     string
	Surname  string
	Email    string
}

// Service runs the login, signup and credential maintenance flows.
type Service struct {
	accounts storage.AccountStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	log      zerolog.Logger
}

// NewService constructs the service.
func NewService(accounts storage.AccountStore, hasher PasswordHasher, tokens TokenIssuer, log zerolog.Logger) *Service {
	return &Service{accounts: accounts, hasher: hasher, tokens: tokens, log: log}
}

// Login verifies (username, password) for the given profile and issues a token.
// An unknown username and a wrong password both yield ErrCredentialMismatch.
// The enabled flag is deliberately not consulted here; the guard enforces it.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	digest := s.hasher.Decoy()
	acc, err := s.accounts.FindByUsername(ctx, in.Username, in.Profile)
	found := err == nil
	switch {
	case found:
		digest = acc.PasswordHash
	case !errors.Is(err, storage.ErrNotFound):
		s.log.Error().Err(err).Str("profile", in.Profile.String()).Msg("login: fetch account")
	}

	match := s.hasher.Verify(ctx, in.Password, digest)
	if !found || !match {
		return "", ErrCredentialMismatch
	}

	token, err := s.tokens.Issue(Payload{ID: acc.ID})
	if err != nil {
		s.log.Error().Err(err).Int64("account_id", acc.ID).Msg("login: issue token")
		return "", fmt.Errorf("%w: %v", ErrIssuance, err)
	}
	return token, nil
}

// Signup creates a garage account with its garage profile and issues a token,
// all inside one transaction. If the token cannot be issued nothing is persisted.
func (s *Service) Signup(ctx context.Context, in SignupInput) (string, error) {
	exists, err := s.accounts.UsernameExists(ctx, in.Username, models.ProfileGarage)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if exists {
		return "", ErrUsernameTaken
	}

	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return "", fmt.Errorf("signup: %w", err)
	}

	var token string
	err = s.accounts.WithTx(ctx, func(ctx context.Context, tx storage.AccountWriter) error {
		acc, err := tx.CreateAccount(ctx, models.Account{
			Username:     in.Username,
			PasswordHash: digest,
			Profile:      models.ProfileGarage,
			Enabled:      true,
		})
		if err != nil {
			return err
		}
		if _, err := tx.CreateGarage(ctx, models.Garage{AccountID: acc.ID, Name: in.GarageName, Email: in.Email}); err != nil {
			return err
		}
		token, err = s.tokens.Issue(Payload{ID: acc.ID})
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIssuance, err)
		}
		return nil
	})
	switch {
	case err == nil:
		return token, nil
	case errors.Is(err, storage.ErrAlreadyExists):
		return "", ErrUsernameTaken
	case errors.Is(err, ErrIssuance):
		s.log.Error().Err(err).Str("username", in.Username).Msg("signup: issue token")
		return "", err
	default:
		s.log.Error().Err(err).Str("username", in.Username).Msg("signup: persist account")
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

// Account returns the account behind a principal.
func (s *Service) Account(ctx context.Context, id int64, profile models.Profile) (models.Account, error) {
	acc, err := s.accounts.FindAccount(ctx, id, profile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.Account{}, ErrIdentityNotFound
		}
		return models.Account{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return acc, nil
}

// UpdatePassword replaces the password of (id, profile) after checking the current one.
func (s *Service) UpdatePassword(ctx context.Context, id int64, profile models.Profile, current, next string) error {
	acc, err := s.Account(ctx, id, profile)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(ctx, current, acc.PasswordHash) {
		return ErrCredentialMismatch
	}
	digest, err := s.hasher.Hash(ctx, next)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	err = s.accounts.WithTx(ctx, func(ctx context.Context, tx storage.AccountWriter) error {
		return tx.UpdatePassword(ctx, acc.ID, digest)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// SetEnabled enables or disables the account (id, profile). Tokens already
// issued to it stop or resume working on the next guarded request.
func (s *Service) SetEnabled(ctx context.Context, id int64, profile models.Profile, enabled bool) error {
	err := s.accounts.WithTx(ctx, func(ctx context.Context, tx storage.AccountWriter) error {
		return tx.SetEnabled(ctx, id, profile, enabled)
	})
	switch {
	case err == nil:
		s.log.Info().Int64("account_id", id).Str("profile", profile.String()).Bool("enabled", enabled).Msg("account enablement changed")
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrIdentityNotFound
	default:
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}

// ProvisionAdmin creates the seed admin account unless its username is already
// taken. It reports whether an account was created.
func (s *Service) ProvisionAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	exists, err := s.accounts.UsernameExists(ctx, seed.Username, models.ProfileAdmin)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if exists {
		return false, nil
	}

	digest, err := s.hasher.Hash(ctx, seed.Password)
	if err != nil {
		return false, fmt.Errorf("provision admin: %w", err)
	}

	err = s.accounts.WithTx(ctx, func(ctx context.Context, tx storage.AccountWriter) error {
		acc, err := tx.CreateAccount(ctx, models.Account{
			Username:     seed.Username,
			PasswordHash: digest,
			Profile:      models.ProfileAdmin,
			Enabled:      true,
		})
		if err != nil {
			return err
		}
		_, err = tx.CreateAdmin(ctx, models.Admin{AccountID: acc.ID, Name: seed.Name, Surname: seed.Surname, Email: seed.Email})
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrAlreadyExists):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
}
