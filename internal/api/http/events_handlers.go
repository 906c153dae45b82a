package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	syncx "github.com/studyforge/studyforge/internal/sync"
)

type eventDTO struct {
	Offset    int64           `json:"offset"`
	Type      string          `json:"type"`
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt int64           `json:"created_at"`
}

// MountEvents exposes the grading audit trail (read-only).
// GET /events/recent?limit=N
func MountEvents(r chi.Router, events *syncx.EventRepo) {
	r.Get("/events/recent", func(w http.ResponseWriter, req *http.Request) {
		limit := 50
		if v := req.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		evs, err := events.Recent(req.Context(), limit)
		if err != nil {
			http.Error(w, "events: "+err.Error(), http.StatusInternalServerError)
			return
		}
		out := make([]eventDTO, 0, len(evs))
		for _, e := range evs {
			out = append(out, eventDTO{
				Offset:    e.Offset,
				Type:      e.Type,
				Key:       e.Key,
				Data:      json.RawMessage(e.DataJSON),
				CreatedAt: e.CreatedAt,
			})
		}
		writeJSON(w, out)
	})
}
