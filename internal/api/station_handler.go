package api

import (
	"net/http"

	"github.com/shaiso/railbot/internal/stations"
)

// SearchStations ищет станции по коду или названию.
// GET /api/v1/stations?q=...
func (h *Handler) SearchStations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		BadRequest(w, "q is required")
		return
	}

	result := stations.Search(query)
	List(w, result, len(result))
}
