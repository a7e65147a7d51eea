package reports

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/blend/internal/app/store/queries/reportqueries"
	"github.com/dalemusser/blend/internal/app/system/dateparam"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// wantsXLSX reports whether the caller asked for a spreadsheet.
func wantsXLSX(r *http.Request) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("format")), "xlsx")
}

// rangeFromRequest parses start/end, writing a 400 on failure.
func rangeFromRequest(w http.ResponseWriter, r *http.Request) (dateparam.Range, bool) {
	rg, err := dateparam.FromRequest(r)
	if err != nil {
		if errors.Is(err, dateparam.ErrInvertedRange) {
			respond.BadRequest(w, "Start date must not be after end date.")
		} else {
			respond.BadRequest(w, "Dates must be YYYY-MM-DD or RFC 3339.")
		}
		return dateparam.Range{}, false
	}
	return rg, true
}

// dailyReport serves per-day creation counts for one collection.
func (h *Handler) dailyReport(coll, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rg, ok := rangeFromRequest(w, r)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
		defer cancel()

		rows, err := reportqueries.CountsByDay(ctx, h.DB, coll, rg)
		if err != nil {
			respond.ServerError(w, h.Log, "daily report failed", err, zap.String("collection", coll))
			return
		}

		if wantsXLSX(r) {
			h.writeXLSX(w, coll, dailySheet(title, rg, rows))
			return
		}
		respond.OK(w, "", rows)
	}
}

// ServeEquipmentUsage totals booked quantities per equipment name.
func (h *Handler) ServeEquipmentUsage(w http.ResponseWriter, r *http.Request) {
	rg, ok := rangeFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	rows, err := reportqueries.EquipmentUsage(ctx, h.DB, rg)
	if err != nil {
		respond.ServerError(w, h.Log, "equipment usage report failed", err)
		return
	}

	if wantsXLSX(r) {
		h.writeXLSX(w, "equipment-usage", usageSheet(rg, rows))
		return
	}
	respond.OK(w, "", rows)
}

// ServeSummary returns collection totals and bookings by status.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	rg, ok := rangeFromRequest(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sum, err := reportqueries.Summary(ctx, h.DB, rg)
	if err != nil {
		respond.ServerError(w, h.Log, "summary report failed", err)
		return
	}

	if wantsXLSX(r) {
		h.writeXLSX(w, "summary", summarySheet(rg, sum))
		return
	}
	respond.OK(w, "", sum)
}
