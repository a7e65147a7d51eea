package socket

import "github.com/go-chi/chi/v5"

// Routes mounts the websocket endpoint (typically at /socket).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve)
	return r
}
