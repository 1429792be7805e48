// Package report builds per-job pipeline statistics from the HR service's
// applicant, interview and offer listings.
package report

import (
	"math"
	"sort"

	"github.com/okian/hireflow/internal/domain/model"
)

// Inputs are the listings a funnel is built from. Sources that could not be
// loaded are named in Missing; their slices are ignored.
type Inputs struct {
	Applicants []model.Candidate
	Interviews []model.Interview
	Offers     []model.Offer
	Missing    []string
}

// StageCount is the number of applicants currently at Stage.
type StageCount struct {
	Stage model.Stage `json:"stage"`
	Count int         `json:"count"`
}

// Row is one candidate line of a report export.
type Row struct {
	CandidateID string      `json:"candidate_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Stage       model.Stage `json:"stage"`
	Score       *float64    `json:"score,omitempty"`
	Level       string      `json:"level,omitempty"`
	JobID       string      `json:"job_id"`

	// UnknownStatus is the HR status text of an applicant whose status
	// names no stage. Stage is meaningless then.
	UnknownStatus string `json:"unknown_status,omitempty"`
}

// Funnel summarizes how a job's applicants progress. Rates are whole
// percentages, 0 when their denominator is 0.
type Funnel struct {
	JobID           string       `json:"job_id"`
	TotalApplicants int          `json:"total_applicants"`
	InReview        int          `json:"in_review"`
	Interviews      int          `json:"interviews"`
	Offers          int          `json:"offers"`
	Hires           int          `json:"hires"`
	Rejected        int          `json:"rejected"`
	Unrecognized    int          `json:"unrecognized"`
	InterviewRate   int          `json:"interview_rate"`
	OfferRate       int          `json:"offer_rate"`
	HireRate        int          `json:"hire_rate"`
	ByStage         []StageCount `json:"by_stage"`
	Rows            []Row        `json:"rows,omitempty"`
	Missing         []string     `json:"missing,omitempty"`
}

// Build computes the funnel for jobID. An empty jobID covers every job.
func Build(jobID string, in Inputs) Funnel {
	f := Funnel{JobID: jobID, Missing: append([]string(nil), in.Missing...)}
	missing := make(map[string]bool, len(in.Missing))
	for _, m := range in.Missing {
		missing[m] = true
	}
	match := func(id string) bool { return jobID == "" || id == jobID }

	counts := make(map[model.Stage]int)
	if !missing[model.SourceApplicants] {
		for _, c := range in.Applicants {
			if !match(c.JobID) {
				continue
			}
			f.TotalApplicants++
			row := Row{CandidateID: c.ID, JobID: c.JobID, Name: c.Name, Email: c.Contact.Email, Stage: c.Stage}
			if c.UnknownStatus != "" {
				f.Unrecognized++
				row.UnknownStatus = c.UnknownStatus
			} else {
				counts[c.Stage]++
			}
			f.Rows = append(f.Rows, row)
		}
	}
	f.InReview = counts[model.Screening] + counts[model.ReadyToInterview]
	f.Hires = counts[model.Onboarded]
	f.Rejected = counts[model.Rejected]
	for _, s := range model.Stages() {
		f.ByStage = append(f.ByStage, StageCount{Stage: s, Count: counts[s]})
	}
	sort.SliceStable(f.Rows, func(i, j int) bool { return f.Rows[i].Stage < f.Rows[j].Stage })

	if !missing[model.SourceInterviews] {
		for _, iv := range in.Interviews {
			if match(iv.JobID) {
				f.Interviews++
			}
		}
	}
	if !missing[model.SourceOffers] {
		for _, o := range in.Offers {
			if match(o.JobID) {
				f.Offers++
			}
		}
	}

	f.InterviewRate = Rate(f.Interviews, f.TotalApplicants)
	f.OfferRate = Rate(f.Offers, f.Interviews)
	f.HireRate = Rate(f.Hires, f.Offers)
	return f
}

// Rate returns part/total as a whole percentage rounded half up, or 0 when
// total is not positive.
func Rate(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(part)*100/float64(total) + 0.5))
}
