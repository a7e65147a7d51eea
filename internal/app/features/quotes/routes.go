package quotes

import (
	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/app/system/ratelimit"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the quote endpoints (typically under /api/quotes).
// Public submissions share the form limiter.
func Routes(h *Handler, forms *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()
	r.With(ratelimit.PerIP(forms, "Too many submissions. Please try again later.")).Post("/", h.HandleCreate)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Get("/", h.ServeList)
		pr.Patch("/{id}/read", h.HandleMarkRead)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
