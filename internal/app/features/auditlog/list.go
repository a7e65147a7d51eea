// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/blend/internal/app/store/audit"
	"github.com/dalemusser/blend/internal/app/system/dateparam"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const pageSize = 50

// listItem is one audit event as returned to the admin UI.
type listItem struct {
	ID            string            `json:"_id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	ActorName     string            `json:"actor,omitempty"`
	TargetName    string            `json:"user,omitempty"`
	TargetID      string            `json:"targetId,omitempty"`
	IP            string            `json:"ip"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listPage struct {
	Events     []listItem `json:"events"`
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	Total      int64      `json:"total"`
}

// ServeList handles GET /api/audit with optional category, event_type,
// user, start, end and page query parameters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	if category != "" && category != audit.CategoryAuth && category != audit.CategoryAdmin {
		respond.BadRequest(w, "Invalid category")
		return
	}

	rg, err := dateparam.FromRequest(r)
	if err != nil {
		respond.BadRequest(w, "Dates must be YYYY-MM-DD or RFC 3339, with start before end.")
		return
	}

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		Category:  category,
		EventType: strings.TrimSpace(q.Get("event_type")),
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if s := strings.TrimSpace(q.Get("user")); s != "" {
		uid, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			respond.BadRequest(w, "Invalid user id")
			return
		}
		filter.UserID = &uid
	}
	if !rg.From.IsZero() {
		filter.StartTime = &rg.From
	}
	if !rg.To.IsZero() {
		// Range.To is exclusive; the store filter is inclusive.
		end := rg.To.Add(-time.Millisecond)
		filter.EndTime = &end
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to query audit events", err)
		return
	}
	total, err := h.Events.CountByFilter(ctx, filter)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to count audit events", err)
		return
	}

	items := h.toItems(r, events)

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	respond.OK(w, "", listPage{
		Events:     items,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	})
}

func (h *Handler) toItems(r *http.Request, events []audit.Event) []listItem {
	names := h.userNames(r, events)

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			IP:            e.IP,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.ActorID != nil {
			item.ActorName = nameOr(names, *e.ActorID)
		}
		if e.UserID != nil {
			item.TargetName = nameOr(names, *e.UserID)
		}
		if e.TargetID != nil {
			item.TargetID = e.TargetID.Hex()
		}
		items = append(items, item)
	}
	return items
}

// userNames batch-loads the names of every actor and affected user.
// A lookup failure is logged and ids are shown instead.
func (h *Handler) userNames(r *http.Request, events []audit.Event) map[primitive.ObjectID]string {
	seen := make(map[primitive.ObjectID]struct{})
	for _, e := range events {
		if e.ActorID != nil {
			seen[*e.ActorID] = struct{}{}
		}
		if e.UserID != nil {
			seen[*e.UserID] = struct{}{}
		}
	}
	names := make(map[primitive.ObjectID]string, len(seen))
	if len(seen) == 0 || h.Users == nil {
		return names
	}

	ids := make([]primitive.ObjectID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "audit user names")
	defer cancel()
	users, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		h.Log.Warn("failed to fetch user names for audit log", zap.Error(err))
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}

func nameOr(names map[primitive.ObjectID]string, id primitive.ObjectID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id.Hex()
}
