package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sas-esd/esdmail/services/esd-service/internal/event"
)

const EventsPath = "/api/_info/events.json"

type Handler struct {
	definitions func() []event.Definition
}

func New() *Handler {
	return &Handler{definitions: event.Definitions}
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc(EventsPath, h.ListEvents)
}

// ListEvents returns every declared event with the data it exposes to templates.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.definitions())
}
