// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Stage is a candidate's position in the hiring pipeline.
type Stage uint8

// Pipeline stages. The zero value is Applied, the initial stage.
const (
	Applied Stage = iota
	Screening
	ReadyToInterview
	InterviewScheduled
	InterviewCompleted
	OfferSent
	Onboarded
	Rejected
)

// stageNames holds the wire names used by the HR service (application_status).
var stageNames = [...]string{
	Applied:            "applied",
	Screening:          "screening",
	ReadyToInterview:   "ready_to_interview",
	InterviewScheduled: "interview_scheduled",
	InterviewCompleted: "interview_completed",
	OfferSent:          "offer_sent",
	Onboarded:          "onboarded",
	Rejected:           "rejected",
}

// Stages lists every stage in pipeline order, Rejected last.
func Stages() []Stage {
	return []Stage{Applied, Screening, ReadyToInterview, InterviewScheduled, InterviewCompleted, OfferSent, Onboarded, Rejected}
}

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", s)
}

// Valid reports whether s is one of the declared stages.
func (s Stage) Valid() bool {
	return int(s) < len(stageNames)
}

// IsTerminal reports whether no further event may leave s.
func (s Stage) IsTerminal() bool {
	switch s {
	case Onboarded, Rejected:
		return true
	case Applied, Screening, ReadyToInterview, InterviewScheduled, InterviewCompleted, OfferSent:
		return false
	default:
		return false
	}
}

// ParseStage resolves a wire name. Matching ignores case and surrounding space
// but the name must otherwise be exact.
func ParseStage(name string) (Stage, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range stageNames {
		if candidate == n {
			return Stage(i), nil
		}
	}
	return Applied, fmt.Errorf("unknown stage %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(b []byte) error {
	parsed, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
