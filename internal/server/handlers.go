package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bugloc/bugloc/internal/models"
	"github.com/bugloc/bugloc/internal/search"
)

type rankRequest struct {
	BugID   string   `json:"bug_id"`
	Family  string   `json:"family"`
	Variant string   `json:"variant"`
	Query   string   `json:"query"`
	Alpha   *float64 `json:"alpha,omitempty"`
	TopN    int      `json:"top_n,omitempty"`
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	family, err := models.ParseFamily(req.Family)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	variant, err := models.ParseVariant(req.Variant)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Alpha != nil && (*req.Alpha < 0 || *req.Alpha > 1) {
		s.respondError(w, http.StatusBadRequest, "alpha must be in [0,1]")
		return
	}
	q := &models.Query{
		BugID:   req.BugID,
		Family:  family,
		Variant: variant,
		Text:    req.Query,
	}
	if err := q.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("rank request",
		zap.String("bug_id", q.BugID),
		zap.String("family", string(q.Family)),
		zap.String("variant", string(q.Variant)),
	)
	opts := &search.Options{LexicalWeight: req.Alpha, TopN: req.TopN}
	rl, err := s.engine.Rank(r.Context(), s.Project(), q, opts)
	if err != nil {
		s.logger.Error("ranking failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, rl)
}

func (s *Server) handleGetResults(w http.ResponseWriter, r *http.Request) {
	bugID := chi.URLParam(r, "bugID")
	ctx := r.Context()
	runID, err := s.store.LatestRunID(ctx, s.Project().Name)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no runs recorded")
		return
	}
	lists, err := s.store.ListRankedListsForBug(ctx, runID, bugID)
	if err != nil {
		s.logger.Error("results lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(lists) == 0 {
		s.respondError(w, http.StatusNotFound, "no results for bug")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":  runID,
		"bug_id":  bugID,
		"results": lists,
	})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	family, err := models.ParseFamily(chi.URLParam(r, "family"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := s.store.LatestReport(r.Context(), s.Project().Name, family)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "report not found")
		return
	}
	s.respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	proj := s.Project()
	resp := map[string]interface{}{
		"project":              proj.Name,
		"files":                len(proj.Lexical.Files()),
		"chunks":               proj.Lexical.Len(),
		"vector_index_size":    proj.Vectors.Size(),
		"embedding_dimensions": proj.Vectors.Dimensions(),
	}
	if runID, err := s.store.LatestRunID(r.Context(), proj.Name); err == nil {
		resp["latest_run_id"] = runID
		if n, err := s.store.CountRankedLists(r.Context(), runID); err == nil {
			resp["latest_run_ranked_lists"] = n
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
