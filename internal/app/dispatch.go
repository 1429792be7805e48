package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/hireflow/internal/domain/inflight"
	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/internal/domain/pipeline"
	"github.com/okian/hireflow/pkg/logger"
)

// ActionRequest identifies the candidate an action targets and carries its
// input. JobID assigns the candidate to a job when the session does not know
// one yet.
type ActionRequest struct {
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id,omitempty"`
	pipeline.Payload
}

// Screen moves an applicant into screening.
func (s *Service) Screen(ctx context.Context, op model.Operator, req ActionRequest) (model.Candidate, error) {
	return s.Dispatch(ctx, op, model.Screen, req)
}

// MarkReady marks a screened candidate ready to interview.
func (s *Service) MarkReady(ctx context.Context, op model.Operator, req ActionRequest) (model.Candidate, error) {
	return s.Dispatch(ctx, op, model.MarkReady, req)
}

// ScheduleInterview books an interview at req's date and time.
func (s *Service) ScheduleInterview(ctx context.Context, op model.Operator, req ActionRequest) (model.Candidate, error) {
	return s.Dispatch(ctx, op, model.ScheduleInterview, req)
}

// CompleteInterview records that the scheduled interview took place.
func (s *Service) CompleteInterview(ctx context.Context, op model.Operator, req ActionRequest) (model.Candidate, error) {
	return s.Dispatch(ctx, op, model.CompleteInterview, req)
}

// RescheduleInterview moves the candidate's interview.
func (s *Service) RescheduleInterview(ctx context.Context, op model.Operator, req ActionRequest) (model.Candidate, error) {
	return s.Dispatch(ctx, op, model.Reschedule, req)
}

// SendOffer sends req.Message as a job offer.
func (s *Service) SendOffer(ctx context.Context, op model.Operator, req ActionRequest) (model.Candidate, error) {
	return s.Dispatch(ctx, op, model.SendOffer, req)
}

// Onboard converts the candidate to an employee against req.OfferID.
func (s *Service) Onboard(ctx context.Context, op model.Operator, req ActionRequest) (model.Candidate, error) {
	return s.Dispatch(ctx, op, model.Onboard, req)
}

// Reject ends the candidate's application.
func (s *Service) Reject(ctx context.Context, op model.Operator, req ActionRequest) (model.Candidate, error) {
	return s.Dispatch(ctx, op, model.Reject, req)
}

// Dispatch runs ev for the candidate in req on behalf of op. The HR service
// is called at most once, and never when an identifier is missing or the
// transition is not allowed. On any failure the candidate is returned as it
// was before the call.
func (s *Service) Dispatch(ctx context.Context, op model.Operator, ev model.Event, req ActionRequest) (model.Candidate, error) {
	name := "dispatch " + ev.String()
	if err := requireIDs(name, op.EmployeeID, req.CandidateID); err != nil {
		return model.Candidate{ID: req.CandidateID}, err
	}
	ctx = logger.WithFields(ctx,
		logger.String("employee_id", op.EmployeeID),
		logger.String("candidate_id", req.CandidateID),
		logger.String("event", ev.String()))

	release, err := inflight.Acquire(ctx, s.guard, req.CandidateID)
	if err != nil {
		s.log.Info(ctx, "action refused", logger.Error(err))
		return model.Candidate{ID: req.CandidateID}, err
	}
	defer release()

	c, err := s.load(ctx, req.CandidateID)
	if err != nil {
		return model.Candidate{ID: req.CandidateID}, err
	}
	loaded := c

	c, p, err := s.prepare(ctx, name, c, ev, req)
	if err != nil {
		return loaded, err
	}

	next, err := s.ctl.RequestTransition(ctx, c, ev, p, s.persister(op))
	if err != nil {
		return loaded, err
	}

	committed := next.Stage != c.Stage || next.Interview != c.Interview
	if committed || next.JobID != loaded.JobID {
		if perr := s.store.Put(ctx, next); perr != nil {
			// The HR service already holds the change. Dropping the stale
			// entry makes the next load read it back from there.
			s.log.Error(ctx, "failed to save session candidate", logger.Error(perr))
			if derr := s.store.Delete(ctx, next.ID); derr != nil {
				s.log.Error(ctx, "failed to drop stale session candidate", logger.Error(derr))
			}
		}
	}
	if committed {
		s.publisher.Publish(ctx, model.Notice{
			CandidateID: next.ID,
			JobID:       next.JobID,
			Event:       ev,
			From:        c.Stage,
			To:          next.Stage,
			Interview:   next.Interview,
			OperatorID:  op.EmployeeID,
			At:          s.now(),
		})
	}
	return next, nil
}

// Check reports whether ev may be requested for the candidate with req's
// payload. It loads the candidate but never writes to the HR service.
func (s *Service) Check(ctx context.Context, ev model.Event, req ActionRequest) error {
	name := "check " + ev.String()
	if strings.TrimSpace(req.CandidateID) == "" {
		return model.WrapKind(name, model.ErrMissingIdentifier, errors.New("candidate id is required"))
	}
	c, err := s.load(ctx, req.CandidateID)
	if err != nil {
		return err
	}
	c, p, err := s.prepare(ctx, name, c, ev, req)
	if err != nil {
		return err
	}
	return s.ctl.Check(c, ev, p)
}

// Evaluate submits an operator's assessment of a candidate for a job.
func (s *Service) Evaluate(ctx context.Context, op model.Operator, candidateID, jobID string, ev model.Evaluation) error {
	const name = "evaluate"
	if err := requireIDs(name, op.EmployeeID, candidateID); err != nil {
		return err
	}
	if strings.TrimSpace(jobID) == "" {
		return model.WrapKind(name, model.ErrMissingIdentifier, errors.New("job id is required"))
	}
	if ev.Rating < 0 || ev.Rating > model.MaxRating {
		return model.WrapKind(name, model.ErrInvalidInput, fmt.Errorf("rating must be between 0 and %d", model.MaxRating))
	}
	ctx = logger.WithFields(ctx, logger.String("employee_id", op.EmployeeID), logger.String("candidate_id", candidateID))
	if err := s.hr.SubmitEvaluation(ctx, op.EmployeeID, candidateID, jobID, ev); err != nil {
		s.log.Warn(ctx, "evaluation not submitted", logger.Error(err))
		return remote(name, err)
	}
	s.log.Info(ctx, "evaluation submitted", logger.Int("rating", ev.Rating))
	return nil
}

// prepare resolves the job assignment and the inputs the controller needs
// for ev. Offers are only fetched when onboarding is reachable from c's stage.
func (s *Service) prepare(ctx context.Context, name string, c model.Candidate, ev model.Event, req ActionRequest) (model.Candidate, pipeline.Payload, error) {
	p := req.Payload
	if job := strings.TrimSpace(req.JobID); job != "" {
		switch {
		case c.JobID == "":
			c.JobID = job
		case c.JobID != job:
			return c, p, model.WrapKind(name, model.ErrInvalidInput,
				fmt.Errorf("candidate %s applied to job %s, not %s", c.ID, c.JobID, job))
		}
	}

	_, defined := pipeline.Next(c.Stage, ev)
	if !defined || c.Stage.IsTerminal() {
		return c, p, nil
	}
	switch ev {
	case model.ScheduleInterview, model.SendOffer:
		if strings.TrimSpace(c.JobID) == "" {
			return c, p, model.WrapKind(name, model.ErrMissingIdentifier, errors.New("job id is required"))
		}
	case model.Onboard:
		if strings.TrimSpace(c.JobID) == "" {
			return c, p, model.WrapKind(name, model.ErrMissingIdentifier, errors.New("job id is required"))
		}
		if strings.TrimSpace(p.OfferID) == "" {
			return c, p, nil
		}
		offers, err := s.hr.FetchCandidateOffers(ctx, c.ID)
		if err != nil {
			return c, p, remote(name, err)
		}
		p.Offers = offers
	}
	return c, p, nil
}

// persister maps a validated transition to its HR service write.
func (s *Service) persister(op model.Operator) pipeline.Persister {
	return func(ctx context.Context, t pipeline.Transition) (pipeline.Receipt, error) {
		c := t.Candidate
		switch t.Event {
		case model.ScheduleInterview:
			id, err := s.hr.ScheduleInterview(ctx, op.EmployeeID, *t.Interview)
			return pipeline.Receipt{InterviewID: id}, err
		case model.Reschedule:
			return pipeline.Receipt{}, s.hr.RescheduleInterview(ctx, op.EmployeeID, *t.Interview)
		case model.SendOffer:
			return pipeline.Receipt{}, s.hr.SendOffer(ctx, op.EmployeeID, c.ID, c.JobID, strings.TrimSpace(t.Payload.Message))
		case model.Onboard:
			return pipeline.Receipt{}, s.hr.OnboardEmployee(ctx, op.EmployeeID, c.ID, model.Onboarding{
				JobID:         c.JobID,
				OfferID:       t.Offer.ID,
				CompanyDomain: op.CompanyDomain,
			})
		default:
			return pipeline.Receipt{}, s.hr.UpdateApplicationStatus(ctx, op.EmployeeID, c.ID, t.To)
		}
	}
}

func requireIDs(name, employeeID, candidateID string) error {
	switch {
	case strings.TrimSpace(employeeID) == "":
		return model.WrapKind(name, model.ErrMissingIdentifier, errors.New("employee id is required"))
	case strings.TrimSpace(candidateID) == "":
		return model.WrapKind(name, model.ErrMissingIdentifier, errors.New("candidate id is required"))
	}
	return nil
}

// remote marks err as a remote failure unless it already carries a kind.
func remote(name string, err error) error {
	if model.KindOf(err) != nil {
		return err
	}
	return model.WrapKind(name, model.ErrRemoteFailure, err)
}
