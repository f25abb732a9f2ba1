package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/hongminglow/garage-be/internal/auth"
	"github.com/hongminglow/garage-be/internal/http/respond"
	"github.com/hongminglow/garage-be/internal/models"
	"github.com/hongminglow/garage-be/internal/models/dto"
)

// AccountFlows is what the guarded account endpoints need from the auth service.
type AccountFlows interface {
	Account(ctx context.Context, id int64, profile models.Profile) (models.Account, error)
	UpdatePassword(ctx context.Context, id int64, profile models.Profile, current, next string) error
	SetEnabled(ctx context.Context, id int64, profile models.Profile, enabled bool) error
}

// IDRange bounds every numeric id accepted from clients.
type IDRange struct {
	Min int64
	Max int64
}

// AccountHandler serves the routes behind the auth guard.
type AccountHandler struct {
	flows    AccountFlows
	ids      IDRange
	validate *validator.Validate
}

// NewAccountHandler constructs the handler.
func NewAccountHandler(flows AccountFlows, ids IDRange) *AccountHandler {
	return &AccountHandler{flows: flows, ids: ids, validate: newValidator()}
}

// RegisterTenant attaches the guarded routes shared by every tenant. r must
// already carry the guard for profile.
func (h *AccountHandler) RegisterTenant(r chi.Router, profile models.Profile) {
	r.Get("/", h.handleHome(profile))
	r.Put("/password/update", h.handleUpdatePassword(profile))
}

// RegisterAdmin attaches the admin-only account management routes.
func (h *AccountHandler) RegisterAdmin(r chi.Router) {
	r.Put("/garage/{userId}/enabled", h.handleSetGarageEnabled)
}

func (h *AccountHandler) handleHome(profile models.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.PrincipalFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, auth.ErrIdentityNotFound.Error())
			return
		}
		acc, err := h.flows.Account(r.Context(), id, profile)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, acc)
	}
}

func (h *AccountHandler) handleUpdatePassword(profile models.Profile) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.PrincipalFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, auth.ErrIdentityNotFound.Error())
			return
		}
		var req dto.UpdatePasswordRequest
		if err := decode(w, r, &req); err != nil {
			invalid(w, err.Error(), nil)
			return
		}
		if fields := fieldErrors(h.validate, req); fields != nil {
			invalid(w, msgInvalidInput, fields)
			return
		}

		err := h.flows.UpdatePassword(r.Context(), id, profile, req.CurrentPassword, req.NewPassword)
		switch {
		case errors.Is(err, auth.ErrCredentialMismatch):
			invalid(w, msgInvalidInput, map[string]string{"currentPassword": "is incorrect"})
			return
		case errors.Is(err, auth.ErrPasswordTooLong):
			invalid(w, msgInvalidInput, map[string]string{"newPassword": passwordTooLong})
			return
		}
		if err != nil {
			h.fail(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, dto.AuthResult{State: dto.StateOK, Message: "password updated"})
	}
}

func (h *AccountHandler) handleSetGarageEnabled(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil || id < h.ids.Min || id > h.ids.Max {
		invalid(w, msgInvalidInput, map[string]string{"userId": "must be an integer id"})
		return
	}
	var req dto.SetEnabledRequest
	if err := decode(w, r, &req); err != nil {
		invalid(w, err.Error(), nil)
		return
	}
	if fields := fieldErrors(h.validate, req); fields != nil {
		invalid(w, msgInvalidInput, fields)
		return
	}

	if err := h.flows.SetEnabled(r.Context(), id, models.ProfileGarage, *req.Enabled); err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"id": id, "enabled": *req.Enabled})
}

func (h *AccountHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrIdentityNotFound):
		respond.Error(w, http.StatusNotFound, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("account request failed")
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}
