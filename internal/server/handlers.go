package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/answerscope/answerscope/pkg/scoring"
)

type auditScoreResponse struct {
	AuditID int64           `json:"audit_id"`
	Domain  string          `json:"domain"`
	Score   *scoring.Result `json:"score"`
}

func (s *Server) handleAuditScore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid audit id", http.StatusBadRequest)
		return
	}
	domain, result, err := s.DB.AuditResult(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "audit not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(auditScoreResponse{AuditID: id, Domain: domain, Score: result})
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))

	scores, err := s.DB.VisibilityScores(r.Context(), q.Get("domain"), q.Get("assistant"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(scores)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	weekStart := q.Get("week")
	if weekStart == "" {
		http.Error(w, "week query parameter is required (YYYY-MM-DD, a Monday)", http.StatusBadRequest)
		return
	}

	rankings, err := s.DB.Rankings(r.Context(), weekStart, q.Get("assistant"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(rankings)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.GetStats(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}
