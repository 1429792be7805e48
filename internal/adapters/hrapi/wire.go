package hrapi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/okian/hireflow/internal/domain/model"
)

// id decodes identifiers the service sends either as strings or numbers.
type id string

func (i *id) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*i = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*i = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*i = id(n.String())
	return nil
}

// first returns the first non-empty value.
func first[T ~string](vals ...T) string {
	for _, v := range vals {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

// legacyStatus maps status words older HR records use to stages.
var legacyStatus = map[string]model.Stage{ //nolint:gochecknoglobals // immutable lookup table
	"new":         model.Applied,
	"pending":     model.Applied,
	"review":      model.Screening,
	"shortlisted": model.ReadyToInterview,
	"interview":   model.InterviewScheduled,
	"interviewed": model.InterviewCompleted,
	"offered":     model.OfferSent,
	"hired":       model.Onboarded,
}

// parseStatus resolves an application_status value. Unknown values are
// reported as not ok so callers can decide.
func parseStatus(status string) (model.Stage, bool) {
	if s, err := model.ParseStage(status); err == nil {
		return s, true
	}
	s, ok := legacyStatus[strings.ToLower(strings.TrimSpace(status))]
	return s, ok
}

type applicantWire struct {
	ApplicantID       id     `json:"applicant_id"`
	CandidateID       id     `json:"candidate_id"`
	Name              string `json:"name"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email"`
	Phone             string `json:"phone_number"`
	JobID             id     `json:"job_id"`
	ApplicationStatus string `json:"application_status"`
	Status            string `json:"status"`
}

func (w applicantWire) candidate() (model.Candidate, bool) {
	c := model.Candidate{
		ID:      first(w.CandidateID, w.ApplicantID),
		Name:    first(w.Name, strings.TrimSpace(w.FirstName+" "+w.LastName)),
		Contact: model.Contact{Email: w.Email, Phone: w.Phone},
		JobID:   first(w.JobID),
	}
	status := first(w.ApplicationStatus, w.Status)
	stage, ok := parseStatus(status)
	c.Stage = stage
	if !ok {
		c.UnknownStatus = status
		if status == "" {
			c.UnknownStatus = "(none)"
		}
	}
	return c, ok
}

type interviewWire struct {
	InterviewID   id     `json:"interview_id"`
	ID            id     `json:"id"`
	CandidateID   id     `json:"candidate_id"`
	JobID         id     `json:"job_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	Type          string `json:"type"`
	InterviewType string `json:"interview_type"`
	Details       string `json:"details"`
}

func (w interviewWire) interview() model.Interview {
	return model.Interview{
		ID:          first(w.InterviewID, w.ID),
		CandidateID: first(w.CandidateID),
		JobID:       first(w.JobID),
		Date:        w.Date,
		Time:        w.Time,
		Location:    w.Location,
		Type:        first(w.Type, w.InterviewType),
		Details:     w.Details,
	}
}

type offerWire struct {
	OfferID     id     `json:"offer_id"`
	ID          id     `json:"id"`
	CandidateID id     `json:"candidate_id"`
	JobID       id     `json:"job_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

func (w offerWire) offer() model.Offer {
	return model.Offer{
		ID:          first(w.OfferID, w.ID),
		CandidateID: first(w.CandidateID),
		JobID:       first(w.JobID),
		Status:      w.Status,
		Message:     w.Message,
	}
}

type scoreWire struct {
	ExperienceScore    float64  `json:"experience_score"`
	LocationScore      float64  `json:"location_score"`
	QualificationScore float64  `json:"qualification_score"`
	SalaryScore        float64  `json:"salary_score"`
	TotalScore         *float64 `json:"total_score"`
	ApplicationScore   *float64 `json:"candidate_application_score"`
}

type statusRequest struct {
	EmployeeID        string      `json:"employee_id"`
	CandidateID       string      `json:"candidate_id"`
	ApplicationStatus model.Stage `json:"application_status"`
}

type scheduleRequest struct {
	EmployeeID  string `json:"employee_id"`
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Type        string `json:"interview_type,omitempty"`
	Details     string `json:"details"`
}

type rescheduleRequest struct {
	EmployeeID  string `json:"employee_id"`
	CandidateID string `json:"candidate_id"`
	InterviewID string `json:"interview_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

type offerRequest struct {
	EmployeeID  string `json:"employee_id"`
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Message     string `json:"message"`
}

type onboardRequest struct {
	EmployeeID    string `json:"employee_id"`
	CandidateID   string `json:"candidate_id"`
	JobID         string `json:"job_id"`
	OfferID       string `json:"offer_id"`
	CompanyDomain string `json:"company_domain,omitempty"`
}

type evaluationRequest struct {
	EmployeeID  string `json:"employee_id"`
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Notes       string `json:"notes"`
	Rating      int    `json:"rating"`
}
