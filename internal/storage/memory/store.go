// Package memory provides an in-process storage.AccountStore. Writes are
// staged on a private copy per transaction and published only on commit.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/storage"
)

// Ensure Store satisfies the storage.AccountStore interface at compile time.
var _ storage.AccountStore = (*Store)(nil)

type state struct {
	accounts map[int64]models.Account
	garages  map[int64]models.Garage
	admins   map[int64]models.Admin
	nextID   int64
}

func (s *state) clone() *state {
	out := &state{
		accounts: make(map[int64]models.Account, len(s.accounts)),
		garages:  make(map[int64]models.Garage, len(s.garages)),
		admins:   make(map[int64]models.Admin, len(s.admins)),
		nextID:   s.nextID,
	}
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.garages {
		out.garages[k] = v
	}
	for k, v := range s.admins {
		out.admins[k] = v
	}
	return out
}

// Store keeps accounts in memory.
type Store struct {
	// txMu serialises transactions so a staged copy always starts from the latest commit.
	txMu sync.Mutex
	mu   sync.RWMutex
	data *state
}

// New returns an empty store.
func New() *Store {
	return &Store{data: &state{
		accounts: map[int64]models.Account{},
		garages:  map[int64]models.Garage{},
		admins:   map[int64]models.Admin{},
	}}
}

// FindAccount returns the account with id only if it carries profile.
func (s *Store) FindAccount(ctx context.Context, id int64, profile models.Profile) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.data.accounts[id]
	if !ok || acc.Profile != profile {
		return models.Account{}, storage.ErrNotFound
	}
	return acc, nil
}

// FindByUsername returns the account registered under (username, profile).
func (s *Store) FindByUsername(ctx context.Context, username string, profile models.Profile) (models.Account, error) {
	if err := ctx.Err(); err != nil {
		return models.Account{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if acc, ok := s.data.byUsername(username, profile); ok {
		return acc, nil
	}
	return models.Account{}, storage.ErrNotFound
}

// UsernameExists reports whether (username, profile) is taken.
func (s *Store) UsernameExists(ctx context.Context, username string, profile models.Profile) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data.byUsername(username, profile)
	return ok, nil
}

// Garage returns the garage profile row of an account.
func (s *Store) Garage(accountID int64) (models.Garage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.data.garages {
		if g.AccountID == accountID {
			return g, true
		}
	}
	return models.Garage{}, false
}

// Counts returns the number of stored accounts, garages and admins.
func (s *Store) Counts() (accounts, garages, admins int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data.accounts), len(s.data.garages), len(s.data.admins)
}

// WithTx stages every write on a copy and publishes it only if fn succeeds.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx storage.AccountWriter) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	staged := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &writer{data: staged}); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = staged
	s.mu.Unlock()
	return nil
}

func (s *state) byUsername(username string, profile models.Profile) (models.Account, bool) {
	for _, acc := range s.accounts {
		if acc.Username == username && acc.Profile == profile {
			return acc, true
		}
	}
	return models.Account{}, false
}

type writer struct {
	data *state
}

func (w *writer) CreateAccount(_ context.Context, account models.Account) (models.Account, error) {
	if _, taken := w.data.byUsername(account.Username, account.Profile); taken {
		return models.Account{}, storage.ErrAlreadyExists
	}
	w.data.nextID++
	now := time.Now().UTC()
	account.ID = w.data.nextID
	account.CreatedAt = now
	account.UpdatedAt = now
	w.data.accounts[account.ID] = account
	return account, nil
}

func (w *writer) CreateGarage(_ context.Context, garage models.Garage) (models.Garage, error) {
	if _, ok := w.data.accounts[garage.AccountID]; !ok {
		return models.Garage{}, storage.ErrNotFound
	}
	garage.ID = int64(len(w.data.garages) + 1)
	w.data.garages[garage.ID] = garage
	return garage, nil
}

func (w *writer) CreateAdmin(_ context.Context, admin models.Admin) (models.Admin, error) {
	if _, ok := w.data.accounts[admin.AccountID]; !ok {
		return models.Admin{}, storage.ErrNotFound
	}
	admin.ID = int64(len(w.data.admins) + 1)
	w.data.admins[admin.ID] = admin
	return admin, nil
}

func (w *writer) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	acc, ok := w.data.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	acc.PasswordHash = passwordHash
	acc.UpdatedAt = time.Now().UTC()
	w.data.accounts[id] = acc
	return nil
}

func (w *writer) SetEnabled(_ context.Context, id int64, profile models.Profile, enabled bool) error {
	acc, ok := w.data.accounts[id]
	if !ok || acc.Profile != profile {
		return storage.ErrNotFound
	}
	acc.Enabled = enabled
	acc.UpdatedAt = time.Now().UTC()
	w.data.accounts[id] = acc
	return nil
}
