package model

import "time"

// Notice announces a committed stage change so open views of the candidate
// can drop stale state.
type Notice struct {
	CandidateID string     `json:"candidate_id"`
	JobID       string     `json:"job_id,omitempty"`
	Event       Event      `json:"event"`
	From        Stage      `json:"from"`
	To          Stage      `json:"to"`
	Interview   *Interview `json:"interview,omitempty"`
	OperatorID  string     `json:"employee_id,omitempty"`
	At          time.Time  `json:"at"`
}
