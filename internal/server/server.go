package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hongminglow/garage-be/internal/auth"
	"github.com/hongminglow/garage-be/internal/config"
	"github.com/hongminglow/garage-be/internal/http/handlers"
	"github.com/hongminglow/garage-be/internal/http/respond"
	"github.com/hongminglow/garage-be/internal/middleware"
	"github.com/hongminglow/garage-be/internal/models"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Deps are the collaborators the routes are built from.
type Deps struct {
	Pinger   handlers.Pinger
	Tokens   *auth.TokenCodec
	Service  *auth.Service
	Resolver *auth.StatusResolver
	Log      zerolog.Logger
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Routes(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Routes builds the route table. Each tenant prefix gets its guard once,
// here, with its own login/signup endpoints left public.
func Routes(cfg config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(deps.Log))
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	handlers.NewHealthHandler(time.Now(), deps.Pinger).Register(r)

	authHandler := handlers.NewAuthHandler(deps.Service)
	authHandler.Register(r)

	accounts := handlers.NewAccountHandler(deps.Service, handlers.IDRange{Min: cfg.MinID, Max: cfg.MaxID})

	for _, profile := range models.Profiles {
		guard := middleware.RequireProfile(deps.Tokens, deps.Resolver, profile)
		r.Route("/"+profile.String(), func(r chi.Router) {
			authHandler.RegisterTenant(r, profile)
			r.NotFound(guard(http.HandlerFunc(notFound)).ServeHTTP)

			r.Group(func(r chi.Router) {
				r.Use(guard)
				accounts.RegisterTenant(r, profile)
				if profile == models.ProfileAdmin {
					accounts.RegisterAdmin(r)
				}
			})
		})
	}

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	respond.Error(w, http.StatusNotFound, "not found")
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
