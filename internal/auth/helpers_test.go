package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/storage"
	"github.com/hongminglow/garage-be/internal/storage/memory"
)

var errStoreDown = errors.New("store down")

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) FindAccount(context.Context, int64, models.Profile) (models.Account, error) {
	return models.Account{}, errStoreDown
}

func (brokenStore) FindByUsername(context.Context, string, models.Profile) (models.Account, error) {
	return models.Account{}, errStoreDown
}

func (brokenStore) UsernameExists(context.Context, string, models.Profile) (bool, error) {
	return false, errStoreDown
}

func (brokenStore) WithTx(context.Context, func(context.Context, storage.AccountWriter) error) error {
	return errStoreDown
}

// failingIssuer never signs.
type failingIssuer struct{}

func (failingIssuer) Issue(Payload) (string, error) {
	return "", errors.New("signer unavailable")
}

// recordingHasher remembers the digests Verify was asked to compare against.
type recordingHasher struct {
	*Hasher
	verified []string
}

func (r *recordingHasher) Verify(ctx context.Context, plaintext, digest string) bool {
	r.verified = append(r.verified, digest)
	return r.Hasher.Verify(ctx, plaintext, digest)
}

func seedAccount(t *testing.T, s *memory.Store, h *Hasher, username, password string, profile models.Profile, enabled bool) models.Account {
	t.Helper()
	digest, err := h.Hash(context.Background(), password)
	require.NoError(t, err)

	var acc models.Account
	err = s.WithTx(context.Background(), func(ctx context.Context, tx storage.AccountWriter) error {
		acc, err = tx.CreateAccount(ctx, models.Account{Username: username, PasswordHash: digest, Profile: profile, Enabled: enabled})
		return err
	})
	require.NoError(t, err)
	return acc
}

func newTestService(t *testing.T) (*Service, *memory.Store, *Hasher, *TokenCodec) {
	t.Helper()
	store := memory.New()
	hasher := NewHasher(bcrypt.MinCost, 4)
	codec := newTestCodec(t)
	return NewService(store, hasher, codec, zerolog.Nop()), store, hasher, codec
}
