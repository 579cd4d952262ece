package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"alertaya/internal/handler"
	"alertaya/internal/httputil"
	authmw "alertaya/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	PanicHandler        *handler.PanicHandler
	ContactHandler      *handler.ContactHandler
	EntityHandler       *handler.EntityHandler
	NeighborhoodHandler *handler.NeighborhoodHandler
	MediaHandler        *handler.MediaHandler
	JWTSecret           string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public routes - no authentication required
	r.Post("/auth/login", cfg.AuthHandler.Login)
	r.Post("/auth/reset-password", cfg.AuthHandler.ResetPassword)
	r.Post("/notify/petition-reset", cfg.AuthHandler.PetitionReset)
	r.Post("/users/register", cfg.UserHandler.Register)
	r.Get("/neighborhood/all-neighborhood", cfg.NeighborhoodHandler.List)

	// Protected routes - require authentication
	r.Group(func(r chi.Router) {
		r.Use(authmw.AuthMiddleware(cfg.JWTSecret))

		r.Put("/auth/update-password", cfg.AuthHandler.UpdatePassword)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", cfg.UserHandler.List)
			r.Get("/{id}", cfg.UserHandler.Get)
			r.Put("/{id}", cfg.UserHandler.Update)
			r.Post("/token", cfg.UserHandler.RegisterToken)
		})

		r.Route("/panic", func(r chi.Router) {
			r.Post("/alerta", cfg.PanicHandler.Alert)
			r.Get("/history", cfg.PanicHandler.History)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/all-contacts", cfg.ContactHandler.List)
			r.Post("/register", cfg.ContactHandler.Register)
		})

		r.Route("/entity", func(r chi.Router) {
			r.Get("/", cfg.EntityHandler.List)
			r.Post("/petition", cfg.EntityHandler.Petition)
			r.Post("/unsubscribe", cfg.EntityHandler.Unsubscribe)
		})

		r.Get("/media/packages/list", cfg.MediaHandler.ListPackages)
		r.Post("/media/avatar", cfg.MediaHandler.UploadAvatar)
	})

	return r
}
