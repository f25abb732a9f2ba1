package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hongminglow/garage-be/internal/auth"
	"github.com/hongminglow/garage-be/internal/http/respond"
	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/models/dto"
)

const (
	msgInvalidInput      = "invalid input"
	msgSessionStarted    = "session started"
	msgSessionFailed     = "could not start session"
	msgAccountCreated    = "account created"
	msgAccountNotCreated = "could not create account"
)

// AuthFlows is what the auth endpoints need from the auth service.
type AuthFlows interface {
	Login(ctx context.Context, in auth.LoginInput) (string, error)
	Signup(ctx context.Context, in auth.SignupInput) (string, error)
}

// AuthHandler owns the public login/signup endpoints.
type AuthHandler struct {
	flows    AuthFlows
	validate *validator.Validate
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(flows AuthFlows) *AuthHandler {
	return &AuthHandler{flows: flows, validate: newValidator()}
}

// Register attaches the shared login route.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleProfileLogin)
}

// RegisterTenant attaches the public routes of one tenant, under its own prefix.
func (h *AuthHandler) RegisterTenant(r chi.Router, profile models.Profile) {
	r.Post("/auth/login", h.handleLogin(profile))
	if profile == models.ProfileGarage {
		r.Post("/auth/signup", h.handleSignup)
	}
}

func (h *AuthHandler) handleLogin(profile models.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dto.LoginRequest
		if err := decode(w, r, &req); err != nil {
			invalid(w, err.Error(), nil)
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		if fields := fieldErrors(h.validate, req); fields != nil {
			invalid(w, msgInvalidInput, fields)
			return
		}
		h.login(w, r, auth.LoginInput{Username: req.Username, Password: req.Password, Profile: profile})
	}
}

func (h *AuthHandler) handleProfileLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileLoginRequest
	if err := decode(w, r, &req); err != nil {
		invalid(w, err.Error(), nil)
		return
	}
	req.Profile = strings.TrimSpace(req.Profile)
	req.Username = strings.TrimSpace(req.Username)
	if fields := fieldErrors(h.validate, req); fields != nil {
		invalid(w, msgInvalidInput, fields)
		return
	}
	profile, err := models.ParseProfile(req.Profile)
	if err != nil {
		invalid(w, msgInvalidInput, map[string]string{"profile": err.Error()})
		return
	}
	h.login(w, r, auth.LoginInput{Username: req.Username, Password: req.Password, Profile: profile})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, in auth.LoginInput) {
	token, err := h.flows.Login(r.Context(), in)
	switch {
	case err == nil:
		respond.JSON(w, http.StatusOK, dto.AuthResult{State: dto.StateOK, Message: msgSessionStarted, Session: &dto.Session{Token: token}})
	case errors.Is(err, auth.ErrCredentialMismatch):
		respond.JSON(w, http.StatusUnauthorized, dto.AuthResult{State: dto.StateFailed, Message: auth.ErrCredentialMismatch.Error()})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("profile", in.Profile.String()).Msg("login failed")
		respond.JSON(w, http.StatusInternalServerError, dto.AuthResult{State: dto.StateFailed, Message: msgSessionFailed})
	}
}

func (h *AuthHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decode(w, r, &req); err != nil {
		invalid(w, err.Error(), nil)
		return
	}
	req.GarageName = strings.TrimSpace(req.GarageName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if fields := fieldErrors(h.validate, req); fields != nil {
		invalid(w, msgInvalidInput, fields)
		return
	}

	token, err := h.flows.Signup(r.Context(), auth.SignupInput{
		GarageName: req.GarageName,
		Email:      req.Email,
		Username:   req.Username,
		Password:   req.Password,
	})
	switch {
	case err == nil:
		respond.JSON(w, http.StatusCreated, dto.AuthResult{State: dto.StateOK, Message: msgAccountCreated, Session: &dto.Session{Token: token}})
	case errors.Is(err, auth.ErrUsernameTaken):
		respond.JSON(w, http.StatusConflict, dto.AuthResult{
			State:   dto.StateFailed,
			Message: auth.ErrUsernameTaken.Error(),
			Field:   map[string]string{"username": auth.ErrUsernameTaken.Error()},
		})
	case errors.Is(err, auth.ErrPasswordTooLong):
		invalid(w, msgInvalidInput, map[string]string{"password": passwordTooLong})
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("signup failed")
		respond.JSON(w, http.StatusInternalServerError, dto.AuthResult{State: dto.StateFailed, Message: msgAccountNotCreated})
	}
}

func invalid(w http.ResponseWriter, message string, fields map[string]string) {
	respond.JSON(w, http.StatusBadRequest, dto.AuthResult{State: dto.StateInvalid, Message: message, Field: fields})
}
