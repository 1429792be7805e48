package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/hireflow/internal/adapters/export"
	"github.com/okian/hireflow/pkg/logger"
)

// handleScore handles GET /api/v1/jobs/{job}/candidates/{id}/score. A score
// computed from partial inputs is still returned with the missing sources
// named.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	app, err := s.deps.Score(r.Context(), chi.URLParam(r, "job"), chi.URLParam(r, "id"))
	if err != nil && !partial(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// handleFunnel handles GET /api/v1/jobs/{job}/funnel[?scores=true].
func (s *Server) handleFunnel(w http.ResponseWriter, r *http.Request) {
	scores, _ := strconv.ParseBool(r.URL.Query().Get("scores"))
	f, err := s.deps.Funnel(r.Context(), chi.URLParam(r, "job"), scores)
	if err != nil && !partial(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handleFunnelExport handles GET /api/v1/jobs/{job}/funnel.xlsx. Rows always
// carry scores.
func (s *Server) handleFunnelExport(w http.ResponseWriter, r *http.Request) {
	job := chi.URLParam(r, "job")
	f, err := s.deps.Funnel(r.Context(), job, true)
	if err != nil && !partial(err) {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteFunnel(&buf, f, s.now()); err != nil {
		s.log.Error(r.Context(), "funnel export failed", logger.String("job_id", job), logger.Error(err))
		writeError(w, fmt.Errorf("%w: %w", ErrExport, err))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "funnel-"+job+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
