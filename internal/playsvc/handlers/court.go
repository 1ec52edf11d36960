package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
)

func (h *Handler) GetCourt(w http.ResponseWriter, r *http.Request) {
	courtID := chi.URLParam(r, "courtID")

	court, err := h.courts.FindCourt(r.Context(), courtID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	if court == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"reason":  "CourtDoesNotExist",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "court": court})
}

// FindCourtByHoops resolves a court from the two hoop markers the client
// scanned on site.
func (h *Handler) FindCourtByHoops(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Hoops []string `json:"hoops"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Hoops) != 2 {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	court, err := h.courts.FindCourtByHoops(r.Context(), body.Hoops[0], body.Hoops[1])
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	if court == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"reason":  "CourtDoesNotExist",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "courtId": court.ID})
}
