package auth

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/storage/memory"
)

func TestStatusResolver_Resolve(t *testing.T) {
	store := memory.New()
	h := NewHasher(bcrypt.MinCost, 1)
	admin := seedAccount(t, store, h, "sanexto", "secret123", models.ProfileAdmin, true)
	disabled := seedAccount(t, store, h, "parked", "secret123", models.ProfileGarage, false)

	r := NewStatusResolver(store, zerolog.Nop())
	ctx := context.Background()

	assert.Equal(t, StatusOK, r.Resolve(ctx, admin.ID, models.ProfileAdmin))
	assert.Equal(t, StatusNotExist, r.Resolve(ctx, admin.ID, models.ProfileGarage), "profile mismatch looks like a missing account")
	assert.Equal(t, StatusNotEnabled, r.Resolve(ctx, disabled.ID, models.ProfileGarage))
	assert.Equal(t, StatusNotExist, r.Resolve(ctx, 12345, models.ProfileAdmin))
}

func TestStatusResolver_StoreErrorFailsClosed(t *testing.T) {
	r := NewStatusResolver(brokenStore{}, zerolog.Nop())
	assert.Equal(t, StatusNotExist, r.Resolve(context.Background(), 1, models.ProfileAdmin))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "ok", StatusOK.String())
	assert.Equal(t, "not_enabled", StatusNotEnabled.String())
	assert.Equal(t, "not_exist", StatusNotExist.String())
	assert.Equal(t, "unknown", Status(0).String())
}

func TestPrincipal(t *testing.T) {
	_, ok := PrincipalFrom(context.Background())
	assert.False(t, ok)

	id, ok := PrincipalFrom(WithPrincipal(context.Background(), 9))
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
}
