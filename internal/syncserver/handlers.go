package syncserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/FairHead/GymFit/internal/models"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetRoutine(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	routineID := chi.URLParam(r, "id")

	agg, err := s.store.Get(r.Context(), userID, routineID)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		s.log.Error("get routine", "routine", routineID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handlePutRoutine(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	routineID := chi.URLParam(r, "id")

	var agg models.RoutineAggregate
	if err := json.NewDecoder(r.Body).Decode(&agg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if agg.Routine.ID != routineID {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "routine id mismatch"})
		return
	}

	if err := s.store.Put(r.Context(), userID, &agg); err != nil {
		s.log.Error("put routine", "routine", routineID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRoutine(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	routineID := chi.URLParam(r, "id")

	if err := s.store.Delete(r.Context(), userID, routineID); err != nil {
		s.log.Error("delete routine", "routine", routineID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangedSince(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")

	since := int64(0)
	if v := r.URL.Query().Get("since"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid since parameter"})
			return
		}
		since = parsed
	}

	heads, err := s.store.ChangedSince(r.Context(), userID, since)
	if err != nil {
		s.log.Error("change feed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if heads == nil {
		heads = []Head{}
	}
	writeJSON(w, http.StatusOK, heads)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
