package adapthttp

import (
	"net/http"
)

type weightRequest struct {
	User   string `json:"user"`
	Weight number `json:"weight"`
	Unit   string `json:"unit"`
}

func (s *Server) handleWeight(w http.ResponseWriter, r *http.Request) {
	var req weightRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := s.weight.RecordWeight(r.Context(), req.User, req.Weight.Value, req.Unit)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})
}

func (s *Server) handleWeightLatest(w http.ResponseWriter, r *http.Request) {
	entry, err := s.weight.LastWeight(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": entry})
}
