package equipment

import (
	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the catalog endpoints (typically under /api/equipment).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
		pr.Put("/{id}", h.HandleUpdate)
		pr.Delete("/{id}", h.HandleDelete)
	})
	return r
}
