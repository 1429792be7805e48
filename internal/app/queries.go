package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/internal/domain/report"
	"github.com/okian/hireflow/pkg/logger"
	"github.com/okian/hireflow/pkg/metrics"
)

// Track places c in the session. A candidate the session already holds keeps
// the stage, job and interview the pipeline gave it; only its name and
// contact are refreshed, and asking for a different stage is an
// ErrInvalidTransition.
func (s *Service) Track(ctx context.Context, c model.Candidate) (model.Candidate, error) {
	const name = "track"
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return c, model.WrapKind(name, model.ErrMissingIdentifier, errors.New("candidate id is required"))
	}
	if !c.Stage.Valid() {
		return c, model.WrapKind(name, model.ErrInvalidInput, fmt.Errorf("unknown stage %s", c.Stage))
	}

	held, err := s.store.Get(ctx, c.ID)
	switch {
	case err == nil:
		if c.Stage != held.Stage {
			return held, model.WrapKind(name, model.ErrInvalidTransition,
				fmt.Errorf("candidate %s is %s; stages only change through actions", c.ID, held.Stage))
		}
		if c.JobID != "" && held.JobID != "" && c.JobID != held.JobID {
			return held, model.WrapKind(name, model.ErrInvalidInput,
				fmt.Errorf("candidate %s is assigned to job %s", c.ID, held.JobID))
		}
		if held.JobID == "" {
			held.JobID = c.JobID
		}
		held.Name, held.Contact = c.Name, c.Contact
		c = held
	case !errors.Is(err, model.ErrNotFound):
		return c, fmt.Errorf("%s: %w", name, err)
	}

	if err := s.store.Put(ctx, c); err != nil {
		return c, fmt.Errorf("%s: %w", name, err)
	}
	return c, nil
}

// Candidate returns the session view of a candidate, loading it from the HR
// service the first time it is asked for.
func (s *Service) Candidate(ctx context.Context, id string) (model.Candidate, error) {
	if strings.TrimSpace(id) == "" {
		return model.Candidate{}, model.WrapKind("candidate", model.ErrMissingIdentifier, errors.New("candidate id is required"))
	}
	return s.load(ctx, id)
}

func (s *Service) load(ctx context.Context, id string) (model.Candidate, error) {
	c, err := s.store.Get(ctx, id)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return model.Candidate{}, fmt.Errorf("load candidate %s: %w", id, err)
	}
	c, err = s.hr.FetchApplicant(ctx, id)
	if err != nil {
		return model.Candidate{}, remote("load candidate "+id, err)
	}
	if err := s.store.Put(ctx, c); err != nil {
		s.log.Warn(ctx, "failed to cache candidate", logger.String("candidate_id", id), logger.Error(err))
	}
	return c, nil
}

// Score computes the application score of a candidate for a job. A partial
// result comes with an ErrPartialDataUnavailable error.
func (s *Service) Score(ctx context.Context, jobID, candidateID string) (model.Application, error) {
	return s.agg.Aggregate(ctx, jobID, candidateID)
}

// Profile reads the candidate's detail sections concurrently. Sections that
// fail are named in Missing; the rest are still returned.
func (s *Service) Profile(ctx context.Context, candidateID string) (model.Profile, error) {
	p := model.Profile{CandidateID: candidateID}
	if strings.TrimSpace(candidateID) == "" {
		return p, model.WrapKind("profile", model.ErrMissingIdentifier, errors.New("candidate id is required"))
	}

	var (
		g                                 errgroup.Group
		infoErr, eduErr, expErr, skillErr error
	)
	g.Go(func() error {
		p.PersonalInfo, infoErr = s.hr.FetchPersonalInfo(ctx, candidateID)
		return nil
	})
	g.Go(func() error {
		p.Education, eduErr = s.hr.FetchEducation(ctx, candidateID)
		return nil
	})
	g.Go(func() error {
		p.Experience, expErr = s.hr.FetchExperience(ctx, candidateID)
		return nil
	})
	g.Go(func() error {
		p.Skills, skillErr = s.hr.FetchSkills(ctx, candidateID)
		return nil
	})
	_ = g.Wait()

	var errs []error
	for _, r := range []struct {
		source string
		err    error
	}{
		{model.SourcePersonalInfo, infoErr},
		{model.SourceEducation, eduErr},
		{model.SourceExperience, expErr},
		{model.SourceSkills, skillErr},
	} {
		if r.err == nil {
			continue
		}
		p.Missing = append(p.Missing, r.source)
		errs = append(errs, fmt.Errorf("%s: %w", r.source, r.err))
		metrics.RecordPartialData(r.source)
	}
	if len(errs) > 0 {
		s.log.Warn(ctx, "profile incomplete", logger.String("candidate_id", candidateID), logger.Any("missing", p.Missing))
		return p, model.WrapKind("profile", model.ErrPartialDataUnavailable, errors.Join(errs...))
	}
	return p, nil
}

// Funnel builds the pipeline report for jobID. With scores set, every row
// also carries the candidate's application score; a row whose score cannot
// be computed is left without one.
func (s *Service) Funnel(ctx context.Context, jobID string, scores bool) (report.Funnel, error) {
	const name = "funnel"
	if strings.TrimSpace(jobID) == "" {
		return report.Funnel{}, model.WrapKind(name, model.ErrMissingIdentifier, errors.New("job id is required"))
	}

	var (
		g                     errgroup.Group
		in                    report.Inputs
		appErr, ivErr, offErr error
	)
	g.Go(func() error {
		in.Applicants, appErr = s.hr.FetchApplicants(ctx)
		return nil
	})
	g.Go(func() error {
		in.Interviews, ivErr = s.hr.FetchInterviews(ctx)
		return nil
	})
	g.Go(func() error {
		in.Offers, offErr = s.hr.FetchOffers(ctx)
		return nil
	})
	_ = g.Wait()

	var errs []error
	for _, r := range []struct {
		source string
		err    error
	}{
		{model.SourceApplicants, appErr},
		{model.SourceInterviews, ivErr},
		{model.SourceOffers, offErr},
	} {
		if r.err == nil {
			continue
		}
		in.Missing = append(in.Missing, r.source)
		errs = append(errs, fmt.Errorf("%s: %w", r.source, r.err))
		metrics.RecordPartialData(r.source)
	}

	f := report.Build(jobID, in)
	if scores {
		s.scoreRows(ctx, f.Rows)
	}
	if len(errs) > 0 {
		return f, model.WrapKind(name, model.ErrPartialDataUnavailable, errors.Join(errs...))
	}
	return f, nil
}

func (s *Service) scoreRows(ctx context.Context, rows []report.Row) {
	var g errgroup.Group
	g.SetLimit(s.scoreConcurrency)
	for i := range rows {
		row := &rows[i]
		g.Go(func() error {
			app, err := s.agg.Aggregate(ctx, row.JobID, row.CandidateID)
			if err != nil {
				s.log.Debug(ctx, "score unavailable for report row",
					logger.String("candidate_id", row.CandidateID), logger.Error(err))
			}
			row.Score = app.Score
			if app.Performance != nil {
				row.Level = app.Performance.Level
			}
			return nil
		})
	}
	_ = g.Wait()
}
