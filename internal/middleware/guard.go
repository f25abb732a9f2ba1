package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/garage-be/internal/auth"
	"github.com/hongminglow/garage-be/internal/http/respond"
	"github.com/hongminglow/garage-be/internal/models"
)

const (
	msgHeaderMissing = "authorization header missing/empty"
	msgInvalidToken  = "invalid access token"
	bearerPrefix     = "bearer "
)

// TokenVerifier decodes a bearer token into its payload.
type TokenVerifier interface {
	Verify(raw string) (auth.Payload, error)
}

// StatusChecker reports whether an account may act under a profile.
type StatusChecker interface {
	Resolve(ctx context.Context, id int64, profile models.Profile) auth.Status
}

// BearerToken extracts the token from an Authorization header value. The
// "Bearer " scheme is optional and matched case-insensitively. It reports
// false when nothing usable remains.
func BearerToken(header string) (string, bool) {
	token := strings.TrimLeft(header, " \t")
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = token[len(bearerPrefix):]
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireProfile builds the guard for routes reserved to profile. Every
// request re-verifies the token and re-reads the account, so disabling an
// account takes effect on its next request.
func RequireProfile(tokens TokenVerifier, statuses StatusChecker, profile models.Profile) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := zerolog.Ctx(r.Context()).With().Str("profile", profile.String()).Logger()

			raw, ok := BearerToken(r.Header.Get("Authorization"))
			if !ok {
				respond.Error(w, http.StatusUnauthorized, msgHeaderMissing)
				return
			}

			payload, err := tokens.Verify(raw)
			if err != nil {
				log.Debug().Err(err).Msg("guard: token rejected")
				respond.Error(w, http.StatusUnauthorized, msgInvalidToken)
				return
			}

			switch status := statuses.Resolve(r.Context(), payload.ID, profile); status {
			case auth.StatusOK:
				next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), payload.ID)))
			case auth.StatusNotEnabled:
				log.Debug().Int64("account_id", payload.ID).Msg("guard: account disabled")
				respond.Error(w, http.StatusForbidden, auth.ErrAccountDisabled.Error())
			default:
				log.Debug().Int64("account_id", payload.ID).Stringer("status", status).Msg("guard: account not found")
				respond.Error(w, http.StatusUnauthorized, auth.ErrIdentityNotFound.Error())
			}
		})
	}
}
