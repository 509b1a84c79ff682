package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adminbank/backend/internal/middleware"
	"github.com/adminbank/backend/internal/models"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// API bundles the handlers mounted by NewRouter.
type API struct {
	Auth         *AuthHandler
	Admins       *AdminHandler
	Users        *UserHandler
	Transactions *TransactionHandler
}

// NewRouter wires the HTTP surface. authenticate guards everything except
// /login and /health.
func NewRouter(api *API, authenticate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.SecurityHeaders)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Post("/login", api.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/logout", api.Auth.Logout)

		r.Get("/admins", api.Admins.ListAdmins)
		r.With(middleware.RequireRole(models.RoleSuper)).Post("/admins", api.Admins.CreateAdmin)
		r.Get("/admins/{code}/actions", api.Admins.AdminAction)
		r.Post("/admins/{code}/actions", api.Admins.AdminAction)
		r.Get("/admins/{code}/transactions", api.Admins.ListAdminTransactions)
		r.Get("/admins/{code}/user", api.Admins.ListAdminUsers)

		r.Post("/users", api.Users.RegisterUser)

		r.Post("/transactions", api.Transactions.Execute)
	})

	return r
}
