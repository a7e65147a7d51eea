// internal/app/features/socket/handler.go
package socket

import (
	"net/http"
	"strings"

	"github.com/dalemusser/blend/internal/app/system/auth"
	"github.com/dalemusser/blend/internal/app/system/realtime"
	"github.com/dalemusser/blend/internal/app/system/respond"
	"github.com/dalemusser/blend/internal/domain/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler upgrades admin connections and hands them to the hub.
type Handler struct {
	Hub      *realtime.Hub
	Tokens   *auth.Tokens
	Upgrader websocket.Upgrader
	Log      *zap.Logger
}

// NewHandler only accepts upgrades whose Origin equals allowedOrigin.
// Requests without an Origin header (non-browser clients) are accepted.
func NewHandler(hub *realtime.Hub, tokens *auth.Tokens, allowedOrigin string, logger *zap.Logger) *Handler {
	allowed := strings.TrimRight(allowedOrigin, "/")
	return &Handler{
		Hub:    hub,
		Tokens: tokens,
		Log:    logger,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || strings.EqualFold(strings.TrimRight(origin, "/"), allowed)
			},
		},
	}
}

// token reads the bearer token from ?token= or the Authorization header.
// Browsers cannot set headers on a websocket handshake, hence the query.
func token(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("token")); t != "" {
		return t
	}
	return auth.BearerToken(r)
}

// Serve authenticates the caller as an admin, upgrades, and blocks until
// the connection closes.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	raw := token(r)
	if raw == "" {
		respond.Error(w, http.StatusUnauthorized, "Not authorized, please log in.")
		return
	}
	claims, err := h.Tokens.Parse(raw)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "Not authorized, please log in.")
		return
	}
	if claims.Role != models.RoleAdmin {
		respond.Error(w, http.StatusForbidden, "Access denied.")
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	h.Log.Debug("realtime client connected", zap.String("user_id", claims.Subject))
	h.Hub.Serve(conn)
}
