package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/hireflow/internal/app"
	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/internal/domain/pipeline"
)

// checkResponse answers GET /candidates/{id}/transitions/{event}.
type checkResponse struct {
	Event   model.Event `json:"event"`
	Allowed bool        `json:"allowed"`
	Reason  string      `json:"reason,omitempty"`
}

// evaluationRequest mirrors the body of POST /candidates/{id}/evaluation.
type evaluationRequest struct {
	JobID  string `json:"job_id"`
	Notes  string `json:"notes"`
	Rating int    `json:"rating"`
}

// handleTrack handles PUT /api/v1/candidates/{id}.
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	var c model.Candidate
	if err := decodeBody(r, &c); err != nil {
		writeError(w, err)
		return
	}
	c.ID = chi.URLParam(r, "id")
	tracked, err := s.deps.Track(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tracked)
}

// handleCandidate handles GET /api/v1/candidates/{id}.
func (s *Server) handleCandidate(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Candidate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleCheck handles GET /api/v1/candidates/{id}/transitions/{event}. The
// payload an event needs is read from the query string.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	ev, err := model.ParseEvent(chi.URLParam(r, "event"))
	if err != nil {
		writeError(w, model.WrapKind("check", model.ErrInvalidInput, err))
		return
	}
	q := r.URL.Query()
	manual, _ := strconv.ParseBool(q.Get("manual"))
	req := service.ActionRequest{
		CandidateID: chi.URLParam(r, "id"),
		JobID:       q.Get("job_id"),
		Payload: pipeline.Payload{
			Date:        q.Get("date"),
			Time:        q.Get("time"),
			InterviewID: q.Get("interview_id"),
			Manual:      manual,
			Message:     q.Get("message"),
			OfferID:     q.Get("offer_id"),
		},
	}

	err = s.deps.Check(r.Context(), ev, req)
	switch model.KindOf(err) {
	case nil:
		writeJSON(w, http.StatusOK, checkResponse{Event: ev, Allowed: true})
	case model.ErrInvalidTransition, model.ErrMissingIdentifier, model.ErrInvalidInput:
		writeJSON(w, http.StatusOK, checkResponse{Event: ev, Reason: model.Message(err)})
	default:
		writeError(w, err)
	}
}

// handleAction handles POST /api/v1/candidates/{id}/actions/{action}.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	ev, err := model.ParseEvent(chi.URLParam(r, "action"))
	if err != nil {
		writeError(w, model.WrapKind("action", model.ErrInvalidInput, err))
		return
	}
	var req service.ActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.CandidateID = chi.URLParam(r, "id")

	c, err := s.deps.Dispatch(r.Context(), operatorFrom(r), ev, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleEvaluation handles POST /api/v1/candidates/{id}/evaluation.
func (s *Server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	var body evaluationRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	err := s.deps.Evaluate(r.Context(), operatorFrom(r), chi.URLParam(r, "id"), body.JobID,
		model.Evaluation{Notes: body.Notes, Rating: body.Rating})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
}

// handleProfile handles GET /api/v1/candidates/{id}/profile. Sections that
// could not be read are listed in missing.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !partial(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
