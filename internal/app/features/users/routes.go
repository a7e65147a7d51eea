package users

import (
	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/app/system/ratelimit"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the account endpoints (typically under /api/users).
// Registration shares the public form limiter; login has its own.
func Routes(h *Handler, forms *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.With(ratelimit.PerIP(forms, "Too many requests. Please try again later.")).Post("/register", h.HandleRegister)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/me", h.ServeMe)
		pr.Put("/me", h.HandleUpdateMe)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
	})

	return r
}
