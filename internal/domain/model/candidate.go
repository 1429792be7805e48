package model

import (
	"fmt"
	"time"
)

// Wire formats for interview dates and times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Contact holds how a candidate can be reached.
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Candidate is a person pursuing a job. Stage is written only by the pipeline
// controller.
//
// UnknownStatus holds the HR service's status text when it names no stage.
// Stage carries no meaning for such a candidate.
type Candidate struct {
	ID            string     `json:"candidate_id"`
	Name          string     `json:"name"`
	Contact       Contact    `json:"contact"`
	Stage         Stage      `json:"current_stage"`
	JobID         string     `json:"job_id"`
	Interview     *Interview `json:"interview,omitempty"`
	UnknownStatus string     `json:"unknown_status,omitempty"`
}

// Interview is a scheduled conversation with a candidate.
type Interview struct {
	ID          string `json:"interview_id"`
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location,omitempty"`
	Type        string `json:"type,omitempty"`
	Details     string `json:"details,omitempty"`
}

// ScheduledAt returns the interview start in loc.
func (i Interview) ScheduledAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, i.Date+" "+i.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("interview schedule %q %q: %w", i.Date, i.Time, err)
	}
	return t, nil
}

// Offer is a job offer a candidate must hold before onboarding.
type Offer struct {
	ID          string `json:"offer_id"`
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// Onboarding is what the HR service needs to turn a candidate into an
// employee.
type Onboarding struct {
	JobID         string
	OfferID       string
	CompanyDomain string
}

// Operator is the authenticated HR user driving an action. It is resolved once
// per operation and passed explicitly.
type Operator struct {
	EmployeeID    string `json:"employee_id"`
	CompanyDomain string `json:"company_domain,omitempty"`
}

// Evaluation is an operator's free-form assessment of a candidate.
type Evaluation struct {
	Notes  string `json:"notes"`
	Rating int    `json:"rating"`
}

// MaxRating bounds Evaluation.Rating.
const MaxRating = 5

// Profile gathers the sections shown on a candidate's detail tabs. A nil
// section was unavailable and is named in Missing.
type Profile struct {
	CandidateID  string           `json:"candidate_id"`
	PersonalInfo map[string]any   `json:"personal_info,omitempty"`
	Education    []map[string]any `json:"education,omitempty"`
	Experience   []map[string]any `json:"experience,omitempty"`
	Skills       []map[string]any `json:"skills,omitempty"`
	Missing      []string         `json:"missing,omitempty"`
}
