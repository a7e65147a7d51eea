// internal/app/features/reports/routes.go
package reports

import (
	"github.com/dalemusser/blend/internal/app/store/queries/reportqueries"
	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin reports (typically under /api/reports).
// Every report accepts start, end and format=xlsx.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(rr chi.Router) {
		rr.Use(auth.RequireRole(models.RoleAdmin))
		rr.Get("/quotes", h.dailyReport(reportqueries.CollQuotes, "Quotes"))
		rr.Get("/messages", h.dailyReport(reportqueries.CollMessages, "Messages"))
		rr.Get("/bookings", h.dailyReport(reportqueries.CollBookings, "Bookings"))
		rr.Get("/equipment-usage", h.ServeEquipmentUsage)
		rr.Get("/summary", h.ServeSummary)
	})

	return r
}
