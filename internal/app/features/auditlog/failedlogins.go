// internal/app/features/auditlog/failedlogins.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/blend/internal/app/system/dateparam"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/app/system/timeouts"
)

const (
	failedLoginWindow = 24 * time.Hour
	failedLoginLimit  = 200
)

type failedLoginsPage struct {
	Since  time.Time  `json:"since"`
	Events []listItem `json:"events"`
}

// ServeFailedLogins handles GET /api/audit/failed-logins. The optional
// since parameter defaults to the last 24 hours.
func (h *Handler) ServeFailedLogins(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-failedLoginWindow)
	if s := strings.TrimSpace(r.URL.Query().Get("since")); s != "" {
		t, err := dateparam.ParseDate(s)
		if err != nil {
			respond.BadRequest(w, "since must be YYYY-MM-DD or RFC 3339.")
			return
		}
		since = t
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "audit failed logins")
	defer cancel()

	events, err := h.Events.GetFailedLogins(ctx, since, failedLoginLimit)
	if err != nil {
		respond.ServerError(w, h.Log, "failed to query failed logins", err)
		return
	}

	respond.OK(w, "", failedLoginsPage{Since: since, Events: h.toItems(r, events)})
}
