package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/logger"
)

const (
	hrPrefix        = "/api/hr"
	candidatePrefix = "/api/candidate"
)

// FetchQuestions returns the application questions with the candidate's
// responses, in the service's order.
func (c *Client) FetchQuestions(ctx context.Context, jobID, candidateID string) ([]model.Question, error) {
	const op = "fetch_questions"
	raw, err := c.doRequest(ctx, op, http.MethodGet, path(hrPrefix+"/applicationQuestions", jobID, candidateID), nil)
	if err != nil {
		return nil, err
	}
	qs, err := decodeList[model.Question](raw)
	if err != nil {
		return nil, wrapDecode(op, err)
	}
	return qs, nil
}

// FetchApplicationScore returns the rubric score. The total may arrive as
// total_score or candidate_application_score, bare or in a data envelope.
func (c *Client) FetchApplicationScore(ctx context.Context, jobID, candidateID string) (model.BackendScore, error) {
	const op = "fetch_application_score"
	raw, err := c.doRequest(ctx, op, http.MethodGet, path(hrPrefix+"/applicationScore", jobID, candidateID), nil)
	if err != nil {
		return model.BackendScore{}, err
	}

	var env struct {
		Data *scoreWire `json:"data"`
		scoreWire
	}
	if err := json.Unmarshal(bytes.TrimSpace(raw), &env); err != nil {
		return model.BackendScore{}, wrapDecode(op, err)
	}
	w := env.scoreWire
	if env.Data != nil {
		w = *env.Data
	}

	total := w.TotalScore
	if total == nil {
		total = w.ApplicationScore
	}
	if total == nil {
		return model.BackendScore{}, wrapDecode(op, errors.New("response carries no total score"))
	}
	return model.BackendScore{
		ExperienceScore:    w.ExperienceScore,
		LocationScore:      w.LocationScore,
		QualificationScore: w.QualificationScore,
		SalaryScore:        w.SalaryScore,
		TotalScore:         *total,
	}, nil
}

// UpdateApplicationStatus records stage as the candidate's application status.
func (c *Client) UpdateApplicationStatus(ctx context.Context, employeeID, candidateID string, stage model.Stage) error {
	_, err := c.doRequest(ctx, "update_application_status", http.MethodPost,
		path(hrPrefix+"/updateApplicationStatus", employeeID, candidateID),
		statusRequest{EmployeeID: employeeID, CandidateID: candidateID, ApplicationStatus: stage})
	return err
}

// ScheduleInterview books iv and returns the interview id the service
// assigned, if it reported one.
func (c *Client) ScheduleInterview(ctx context.Context, employeeID string, iv model.Interview) (string, error) {
	const op = "schedule_interview"
	raw, err := c.doRequest(ctx, op, http.MethodPost,
		path(hrPrefix+"/interviewCandidate", employeeID, iv.CandidateID, iv.JobID),
		scheduleRequest{
			EmployeeID:  employeeID,
			CandidateID: iv.CandidateID,
			JobID:       iv.JobID,
			Date:        iv.Date,
			Time:        iv.Time,
			Location:    iv.Location,
			Type:        iv.Type,
			Details:     iv.Details,
		})
	if err != nil {
		return "", err
	}

	var created struct {
		interviewWire
		Data *interviewWire `json:"data"`
	}
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &created) != nil {
		c.log.Debug(ctx, "schedule response carried no interview", logger.String("candidate_id", iv.CandidateID))
		return "", nil
	}
	if created.Data != nil {
		return created.Data.interview().ID, nil
	}
	return created.interview().ID, nil
}

// RescheduleInterview moves an existing interview.
func (c *Client) RescheduleInterview(ctx context.Context, employeeID string, iv model.Interview) error {
	_, err := c.doRequest(ctx, "reschedule_interview", http.MethodPost,
		path(hrPrefix+"/rescheduleInterview", employeeID, iv.CandidateID, iv.ID),
		rescheduleRequest{EmployeeID: employeeID, CandidateID: iv.CandidateID, InterviewID: iv.ID, Date: iv.Date, Time: iv.Time})
	return err
}

// SendOffer sends an offer with message to the candidate.
func (c *Client) SendOffer(ctx context.Context, employeeID, candidateID, jobID, message string) error {
	_, err := c.doRequest(ctx, "send_offer", http.MethodPost,
		path(hrPrefix+"/sendOffer", employeeID, candidateID, jobID),
		offerRequest{EmployeeID: employeeID, CandidateID: candidateID, JobID: jobID, Message: message})
	return err
}

// FetchCandidateOffers lists the offers made to a candidate.
func (c *Client) FetchCandidateOffers(ctx context.Context, candidateID string) ([]model.Offer, error) {
	const op = "fetch_candidate_offers"
	raw, err := c.doRequest(ctx, op, http.MethodGet, path(hrPrefix+"/candidateOffers", candidateID), nil)
	if err != nil {
		return nil, err
	}
	ws, err := decodeList[offerWire](raw)
	if err != nil {
		return nil, wrapDecode(op, err)
	}
	out := make([]model.Offer, 0, len(ws))
	for _, w := range ws {
		o := w.offer()
		if o.CandidateID == "" {
			o.CandidateID = candidateID
		}
		out = append(out, o)
	}
	return out, nil
}

// OnboardEmployee converts the candidate into an employee of the operator's
// company under the accepted offer.
func (c *Client) OnboardEmployee(ctx context.Context, employeeID, candidateID string, o model.Onboarding) error {
	_, err := c.doRequest(ctx, "onboard_employee", http.MethodPost,
		path(hrPrefix+"/onboardEmployee", employeeID, candidateID),
		onboardRequest{
			EmployeeID:    employeeID,
			CandidateID:   candidateID,
			JobID:         o.JobID,
			OfferID:       o.OfferID,
			CompanyDomain: o.CompanyDomain,
		})
	return err
}

// SubmitEvaluation stores an operator's evaluation of the candidate.
func (c *Client) SubmitEvaluation(ctx context.Context, employeeID, candidateID, jobID string, ev model.Evaluation) error {
	_, err := c.doRequest(ctx, "submit_evaluation", http.MethodPost,
		path(hrPrefix+"/candidateEvaluation", employeeID, candidateID, jobID),
		evaluationRequest{EmployeeID: employeeID, CandidateID: candidateID, JobID: jobID, Notes: ev.Notes, Rating: ev.Rating})
	return err
}
