package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/garage-be/internal/auth"
	"github.com/hongminglow/garage-be/internal/config"
	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/storage/memory"
)

type envelope struct {
	Status string          `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type fixture struct {
	handler http.Handler
	store   *memory.Store
	service *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Config{Port: "0", Secret: "routes-secret", MinID: 1, MaxID: 999999999, CORSOrigins: []string{"*"}}
	codec, err := auth.NewTokenCodec(auth.TokenConfig{Secret: cfg.Secret, MinID: cfg.MinID, MaxID: cfg.MaxID})
	require.NoError(t, err)

	store := memory.New()
	service := auth.NewService(store, auth.NewHasher(bcrypt.MinCost, 2), codec, zerolog.Nop())
	handler := Routes(cfg, Deps{
		Tokens:   codec,
		Service:  service,
		Resolver: auth.NewStatusResolver(store, zerolog.Nop()),
		Log:      zerolog.Nop(),
	})
	return &fixture{handler: handler, store: store, service: service}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func (f *fixture) login(t *testing.T, profile models.Profile, username, password string) string {
	t.Helper()
	rec, env := f.do(t, http.MethodPost, "/"+profile.String()+"/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		State   int `json:"state"`
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &result))
	require.Equal(t, 3, result.State)
	require.NotEmpty(t, result.Session.Token)
	return result.Session.Token
}

func (f *fixture) signup(t *testing.T, username string) string {
	t.Helper()
	rec, env := f.do(t, http.MethodPost, "/garage/auth/signup", "", map[string]string{
		"garage-name":    "Taller " + username,
		"email":          username + "@example.com",
		"username":       username,
		"password":       "garagepass",
		"repeatPassword": "garagepass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var result struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &result))
	return result.Session.Token
}

func message(t *testing.T, env envelope) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(env.Body, &body))
	return body.Message
}

func TestRoutes_AdminLoginReachesOnlyAdminRoutes(t *testing.T) {
	f := newFixture(t)
	created, err := f.service.ProvisionAdmin(context.Background(), auth.AdminSeed{Username: "sanexto", Password: "secret123"})
	require.NoError(t, err)
	require.True(t, created)

	token := f.login(t, models.ProfileAdmin, "sanexto", "secret123")

	rec, env := f.do(t, http.MethodGet, "/admin/", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var acc models.Account
	require.NoError(t, json.Unmarshal(env.Body, &acc))
	assert.Equal(t, int64(1), acc.ID)
	assert.Equal(t, "sanexto", acc.Username)
	assert.NotContains(t, string(env.Body), "password")

	rec, env = f.do(t, http.MethodGet, "/garage/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, auth.ErrIdentityNotFound.Error(), message(t, env))
}

func TestRoutes_SharedLogin(t *testing.T) {
	f := newFixture(t)
	f.signup(t, "taller_uno")

	rec, _ := f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"profile": "garage", "username": "taller_uno", "password": "garagepass",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := f.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"profile": "admin", "username": "taller_uno", "password": "garagepass",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", env.Status)
}

func TestRoutes_GuardCoversUnknownTenantPaths(t *testing.T) {
	f := newFixture(t)

	rec, env := f.do(t, http.MethodGet, "/garage/does-not-exist", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "authorization header missing/empty", message(t, env))

	token := f.signup(t, "taller_dos")
	rec, _ = f.do(t, http.MethodGet, "/garage/does-not-exist", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_DisabledGarageIsForbiddenButCanStillLogIn(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.ProvisionAdmin(context.Background(), auth.AdminSeed{Username: "sanexto", Password: "secret123"})
	require.NoError(t, err)
	adminToken := f.login(t, models.ProfileAdmin, "sanexto", "secret123")
	garageToken := f.signup(t, "taller_tres")

	rec, _ := f.do(t, http.MethodGet, "/garage/", garageToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/admin/garage/2/enabled", adminToken, map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := f.do(t, http.MethodGet, "/garage/", garageToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, auth.ErrAccountDisabled.Error(), message(t, env))

	fresh := f.login(t, models.ProfileGarage, "taller_tres", "garagepass")
	rec, _ = f.do(t, http.MethodGet, "/garage/", fresh, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = f.do(t, http.MethodPut, "/admin/garage/2/enabled", adminToken, map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = f.do(t, http.MethodGet, "/garage/", garageToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_GarageCannotManageGarages(t *testing.T) {
	f := newFixture(t)
	token := f.signup(t, "taller_cuatro")

	rec, _ := f.do(t, http.MethodPut, "/admin/garage/1/enabled", token, map[string]bool{"enabled": false})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_SignupMultibytePasswordIsValidationError(t *testing.T) {
	f := newFixture(t)
	long := strings.Repeat("ñ", 40)

	rec, env := f.do(t, http.MethodPost, "/garage/auth/signup", "", map[string]string{
		"garage-name":    "Taller",
		"email":          "taller@example.com",
		"username":       "taller_ene",
		"password":       long,
		"repeatPassword": long,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "bad_request", env.Status)
}

func TestRoutes_Health(t *testing.T) {
	f := newFixture(t)
	rec, env := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", env.Status)
}
