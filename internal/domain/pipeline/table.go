// Package pipeline owns a candidate's stage: it validates transition requests
// against the hiring state machine and commits a new stage only after the
// external write for it succeeded.
package pipeline

import "github.com/okian/hireflow/internal/domain/model"

type edge struct {
	from  model.Stage
	event model.Event
}

// transitions is the hiring state machine. Terminal stages have no outgoing
// edges.
var transitions = map[edge]model.Stage{ //nolint:gochecknoglobals // immutable lookup table
	{model.Applied, model.Screen}:                        model.Screening,
	{model.Screening, model.MarkReady}:                   model.ReadyToInterview,
	{model.ReadyToInterview, model.ScheduleInterview}:    model.InterviewScheduled,
	{model.InterviewScheduled, model.CompleteInterview}:  model.InterviewCompleted,
	{model.InterviewScheduled, model.Reschedule}:         model.InterviewScheduled,
	{model.InterviewCompleted, model.SendOffer}:          model.OfferSent,
	{model.OfferSent, model.Onboard}:                     model.Onboarded,
	{model.Applied, model.Reject}:                        model.Rejected,
	{model.Screening, model.Reject}:                      model.Rejected,
	{model.ReadyToInterview, model.Reject}:               model.Rejected,
	{model.InterviewScheduled, model.Reject}:             model.Rejected,
	{model.InterviewCompleted, model.Reject}:             model.Rejected,
}

// targets maps each event to the stage it leads to.
var targets = map[model.Event]model.Stage{ //nolint:gochecknoglobals // immutable lookup table
	model.Screen:            model.Screening,
	model.MarkReady:         model.ReadyToInterview,
	model.ScheduleInterview: model.InterviewScheduled,
	model.CompleteInterview: model.InterviewCompleted,
	model.Reschedule:        model.InterviewScheduled,
	model.SendOffer:         model.OfferSent,
	model.Onboard:           model.Onboarded,
	model.Reject:            model.Rejected,
}

// Target returns the stage ev leads to.
func Target(ev model.Event) (model.Stage, bool) {
	s, ok := targets[ev]
	return s, ok
}

// Next returns the stage reached from `from` via ev, if that edge exists.
func Next(from model.Stage, ev model.Event) (model.Stage, bool) {
	s, ok := transitions[edge{from, ev}]
	return s, ok
}

// Allowed lists the events defined for stage s, in declaration order.
func Allowed(s model.Stage) []model.Event {
	var out []model.Event
	for _, ev := range model.Events() {
		if _, ok := transitions[edge{s, ev}]; ok {
			out = append(out, ev)
		}
	}
	return out
}
