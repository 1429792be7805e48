package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/logger"
	"github.com/okian/hireflow/pkg/metrics"
)

// Payload carries the operator input a transition may need.
type Payload struct {
	// Interview fields for schedule and reschedule.
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Location string `json:"location,omitempty"`
	Type     string `json:"type,omitempty"`
	Details  string `json:"details,omitempty"`

	// InterviewID overrides the candidate's active interview on reschedule.
	InterviewID string `json:"interview_id,omitempty"`

	// Manual marks an interview complete regardless of the clock.
	Manual bool `json:"manual,omitempty"`

	// Message is the offer text for send_offer.
	Message string `json:"message,omitempty"`

	// OfferID selects the offer to onboard against; Offers are the
	// candidate's existing offers it must match.
	OfferID string        `json:"offer_id,omitempty"`
	Offers  []model.Offer `json:"-"`
}

// Transition describes a validated stage change handed to a Persister.
type Transition struct {
	Event     model.Event
	From      model.Stage
	To        model.Stage
	Candidate model.Candidate
	Payload   Payload

	// Interview is the interview as it will be after the change, set for
	// schedule and reschedule.
	Interview *model.Interview
	// Offer is the selected offer, set for onboard.
	Offer *model.Offer
}

// Receipt is what the external write reports back.
type Receipt struct {
	// InterviewID is the id assigned to a newly scheduled interview.
	InterviewID string
}

// Persister performs the external write for a transition. It is invoked at
// most once per RequestTransition call.
type Persister func(ctx context.Context, t Transition) (Receipt, error)

// Controller validates and executes stage transitions. It holds no candidate
// state; every call works on the candidate value it is given.
type Controller struct {
	now func() time.Time
	loc *time.Location
	log logger.Logger
}

// New creates a Controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		now: time.Now,
		loc: time.UTC,
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// plan is the outcome of validating a request.
type plan struct {
	noop   bool
	reason error
	t      Transition
}

// CanTransition reports whether ev is defined for c's stage and its
// preconditions hold. It never performs I/O.
func (ctl *Controller) CanTransition(c model.Candidate, ev model.Event, p Payload) bool {
	return ctl.Check(c, ev, p) == nil
}

// Check explains CanTransition: nil when the transition may be requested,
// otherwise an ErrMissingIdentifier or ErrInvalidTransition kind. A request
// that would be a no-op is reported as not allowed.
func (ctl *Controller) Check(c model.Candidate, ev model.Event, p Payload) error {
	pl, err := ctl.validate(c, ev, p)
	if err != nil {
		return err
	}
	if pl.noop {
		return model.WrapKind("check", model.ErrInvalidTransition, pl.reason)
	}
	return nil
}

// RequestTransition validates ev for c and, when it is defined for c's stage,
// invokes persist once. Only a successful write yields the candidate at the new
// stage; on failure the original candidate is returned with an
// ErrRemoteFailure kind. Repeating a transition whose target stage c already
// holds succeeds without calling persist. Nothing is retried.
func (ctl *Controller) RequestTransition(ctx context.Context, c model.Candidate, ev model.Event, p Payload, persist Persister) (model.Candidate, error) {
	op := "transition " + ev.String()
	ctx = logger.WithFields(ctx, logger.String("candidate_id", c.ID), logger.String("event", ev.String()))

	pl, err := ctl.validate(c, ev, p)
	if err != nil {
		outcome := metrics.OutcomeInvalid
		if errors.Is(err, model.ErrMissingIdentifier) {
			outcome = metrics.OutcomeMissingIdentifier
		}
		metrics.RecordTransition(ev.String(), outcome)
		ctl.log.Debug(ctx, "transition refused", logger.String("stage", c.Stage.String()), logger.Error(err))
		return c, err
	}
	if pl.noop {
		metrics.RecordTransition(ev.String(), metrics.OutcomeNoop)
		ctl.log.Debug(ctx, "transition already satisfied", logger.String("stage", c.Stage.String()))
		return c, nil
	}
	if persist == nil {
		return c, model.WrapKind(op, model.ErrRemoteFailure, errors.New("no persister configured"))
	}

	receipt, err := persist(ctx, pl.t)
	if err != nil {
		metrics.RecordTransition(ev.String(), metrics.OutcomeRemoteFailure)
		ctl.log.Warn(ctx, "transition not persisted", logger.String("stage", c.Stage.String()), logger.Error(err))
		if errors.Is(err, model.ErrRemoteFailure) {
			return c, err
		}
		return c, model.WrapKind(op, model.ErrRemoteFailure, err)
	}

	next := c
	next.Stage = pl.t.To
	if pl.t.Interview != nil {
		iv := *pl.t.Interview
		if receipt.InterviewID != "" {
			iv.ID = receipt.InterviewID
		}
		next.Interview = &iv
	}
	metrics.RecordTransition(ev.String(), metrics.OutcomeCommitted)
	ctl.log.Info(ctx, "transition committed",
		logger.String("from", pl.t.From.String()), logger.String("to", pl.t.To.String()))
	return next, nil
}

func (ctl *Controller) validate(c model.Candidate, ev model.Event, p Payload) (plan, error) {
	op := "transition " + ev.String()
	target, ok := Target(ev)
	if !ok {
		return plan{}, model.WrapKind(op, model.ErrInvalidTransition, fmt.Errorf("unknown event %s", ev))
	}
	if !c.Stage.Valid() {
		return plan{}, model.WrapKind(op, model.ErrInvalidTransition, fmt.Errorf("unknown stage %s", c.Stage))
	}
	if c.UnknownStatus != "" {
		return plan{}, model.WrapKind(op, model.ErrInvalidTransition,
			fmt.Errorf("HR status %q names no pipeline stage", c.UnknownStatus))
	}
	if c.Stage.IsTerminal() {
		return plan{}, model.WrapKind(op, model.ErrInvalidTransition,
			fmt.Errorf("candidate is %s, no further changes are possible", c.Stage))
	}
	if strings.TrimSpace(c.ID) == "" {
		return plan{}, model.WrapKind(op, model.ErrMissingIdentifier, errors.New("candidate id is required"))
	}

	to, defined := Next(c.Stage, ev)
	if !defined {
		if target == c.Stage {
			return plan{noop: true, reason: fmt.Errorf("candidate is already %s", c.Stage)}, nil
		}
		return plan{}, model.WrapKind(op, model.ErrInvalidTransition,
			fmt.Errorf("cannot %s a candidate who is %s", strings.ReplaceAll(ev.String(), "_", " "), c.Stage))
	}

	t := Transition{Event: ev, From: c.Stage, To: to, Candidate: c, Payload: p}
	if err := ctl.preconditions(&t); err != nil {
		if errors.Is(err, errSameSchedule) {
			return plan{noop: true, reason: err}, nil
		}
		return plan{}, err
	}
	return plan{t: t}, nil
}

var errSameSchedule = errors.New("interview already at this time")

// preconditions checks the per-event requirements and fills in the derived
// parts of t.
func (ctl *Controller) preconditions(t *Transition) error {
	op := "transition " + t.Event.String()
	c, p := t.Candidate, t.Payload

	switch t.Event {
	case model.Screen, model.Reject:
		return nil

	case model.MarkReady:
		if strings.TrimSpace(c.JobID) == "" {
			return model.WrapKind(op, model.ErrMissingIdentifier, errors.New("candidate has no job assignment"))
		}
		return nil

	case model.ScheduleInterview:
		if err := ctl.checkSchedule(op, p); err != nil {
			return err
		}
		t.Interview = &model.Interview{
			CandidateID: c.ID,
			JobID:       c.JobID,
			Date:        strings.TrimSpace(p.Date),
			Time:        strings.TrimSpace(p.Time),
			Location:    p.Location,
			Type:        p.Type,
			Details:     p.Details,
		}
		return nil

	case model.Reschedule:
		if err := ctl.checkSchedule(op, p); err != nil {
			return err
		}
		iv := model.Interview{CandidateID: c.ID, JobID: c.JobID}
		if c.Interview != nil {
			iv = *c.Interview
		}
		if id := strings.TrimSpace(p.InterviewID); id != "" {
			iv.ID = id
		}
		if iv.ID == "" {
			return model.WrapKind(op, model.ErrMissingIdentifier, errors.New("interview id is required"))
		}
		date, tm := strings.TrimSpace(p.Date), strings.TrimSpace(p.Time)
		if c.Interview != nil && c.Interview.ID == iv.ID && c.Interview.Date == date && c.Interview.Time == tm {
			return errSameSchedule
		}
		iv.Date, iv.Time = date, tm
		t.Interview = &iv
		return nil

	case model.CompleteInterview:
		if p.Manual {
			return nil
		}
		if c.Interview == nil {
			return model.WrapKind(op, model.ErrInvalidTransition, errors.New("no interview is scheduled"))
		}
		at, err := c.Interview.ScheduledAt(ctl.loc)
		if err != nil {
			return model.WrapKind(op, model.ErrInvalidTransition, err)
		}
		if ctl.now().Before(at) {
			return model.WrapKind(op, model.ErrInvalidTransition,
				fmt.Errorf("interview is scheduled for %s and has not taken place", at.Format(model.DateLayout+" "+model.TimeLayout)))
		}
		return nil

	case model.SendOffer:
		if strings.TrimSpace(p.Message) == "" {
			return model.WrapKind(op, model.ErrInvalidTransition, errors.New("offer message must not be empty"))
		}
		return nil

	case model.Onboard:
		id := strings.TrimSpace(p.OfferID)
		if id == "" {
			return model.WrapKind(op, model.ErrMissingIdentifier, errors.New("no offer selected"))
		}
		var match *model.Offer
		n := 0
		for i := range p.Offers {
			o := p.Offers[i]
			if o.ID != id || (o.CandidateID != "" && o.CandidateID != c.ID) {
				continue
			}
			n++
			match = &p.Offers[i]
		}
		if n != 1 {
			return model.WrapKind(op, model.ErrInvalidTransition,
				fmt.Errorf("offer %s does not identify exactly one offer for this candidate", id))
		}
		sel := *match
		t.Offer = &sel
		return nil

	default:
		return model.WrapKind(op, model.ErrInvalidTransition, fmt.Errorf("unknown event %s", t.Event))
	}
}

func (ctl *Controller) checkSchedule(op string, p Payload) error {
	date, tm := strings.TrimSpace(p.Date), strings.TrimSpace(p.Time)
	if date == "" || tm == "" {
		return model.WrapKind(op, model.ErrInvalidTransition, errors.New("interview date and time are required"))
	}
	if _, err := time.ParseInLocation(model.DateLayout, date, ctl.loc); err != nil {
		return model.WrapKind(op, model.ErrInvalidTransition, fmt.Errorf("date %q is not YYYY-MM-DD", date))
	}
	if _, err := time.ParseInLocation(model.TimeLayout, tm, ctl.loc); err != nil {
		return model.WrapKind(op, model.ErrInvalidTransition, fmt.Errorf("time %q is not HH:MM", tm))
	}
	return nil
}
