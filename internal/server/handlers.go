package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/macrobasket/etf-server/internal/modules/history"
	"github.com/macrobasket/etf-server/internal/modules/valuation"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "etf-server",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSummary returns the top-N display table for the current snapshot.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.cache.GetOrRefresh(r.Context(), s.snapshotMaxAge)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":         snapshot.RunID,
		"built_at":       snapshot.BuiltAt,
		"profile":        snapshot.Profile,
		"value":          snapshot.Value,
		"summary":        snapshot.Summary,
		"dropped":        snapshot.Dropped,
		"filter_skipped": snapshot.FilterSkipped,
		"score_fallback": snapshot.ScoreFallback,
	})
}

// handleValue returns just the USD value of one basket unit.
func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.cache.GetOrRefresh(r.Context(), s.snapshotMaxAge)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"value":    snapshot.Value,
		"built_at": snapshot.BuiltAt,
	})
}

// handleTable returns the full weight table plus the wide table.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.cache.GetOrRefresh(r.Context(), s.snapshotMaxAge)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  snapshot.RunID,
		"weights": snapshot.Weights,
		"wide":    snapshot.Wide,
	})
}

// handleRefresh forces a rebuild regardless of snapshot age.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.cache.Refresh(r.Context())
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":   snapshot.RunID,
		"built_at": snapshot.BuiltAt,
		"value":    snapshot.Value,
	})
}

// handleHistory lists logged basket values, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := s.history.List(limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

// handleHistoryCSV streams the history log in the CSV export format.
func (s *Server) handleHistoryCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := s.history.List(0)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="etf_history.csv"`)

	if err := history.WriteCSV(w, entries); err != nil {
		s.log.Error().Err(err).Msg("Failed to write history CSV")
	}
}

// askRequest is the assistant question payload.
type askRequest struct {
	Question string `json:"question"`
}

// handleAsk answers a question about the current summary table.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.assistant == nil {
		s.writeError(w, http.StatusServiceUnavailable, "assistant is not configured")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := s.cache.GetOrRefresh(r.Context(), s.snapshotMaxAge)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	answer, err := s.assistant.Ask(r.Context(), req.Question, valuation.Markdown(snapshot.Summary))
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"answer": answer,
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
