package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/logger"
	"github.com/okian/hireflow/pkg/metrics"
)

// Source supplies the inputs of an application score.
type Source interface {
	FetchQuestions(ctx context.Context, jobID, candidateID string) ([]model.Question, error)
	FetchApplicationScore(ctx context.Context, jobID, candidateID string) (model.BackendScore, error)
}

// Aggregate fetches questions and the backend score concurrently and computes
// the application. A failing source is marked unavailable and named in
// Missing; the application is still returned, together with an
// ErrPartialDataUnavailable error describing what could not be loaded.
func (a *Aggregator) Aggregate(ctx context.Context, jobID, candidateID string) (model.Application, error) {
	app := model.Application{CandidateID: candidateID, JobID: jobID}
	if strings.TrimSpace(jobID) == "" || strings.TrimSpace(candidateID) == "" {
		return app, model.WrapKind("aggregate", model.ErrMissingIdentifier, errors.New("job id and candidate id are required"))
	}
	if a.src == nil {
		return app, model.WrapKind("aggregate", model.ErrPartialDataUnavailable, errors.New("no score source configured"))
	}

	var (
		questions    []model.Question
		backend      model.BackendScore
		questionsErr error
		scoreErr     error
		g            errgroup.Group
	)
	// Each read records its own error so one failure never cancels the other.
	g.Go(func() error {
		questions, questionsErr = a.src.FetchQuestions(ctx, jobID, candidateID)
		return nil
	})
	g.Go(func() error {
		backend, scoreErr = a.src.FetchApplicationScore(ctx, jobID, candidateID)
		return nil
	})
	_ = g.Wait()

	var errs []error
	if questionsErr == nil {
		app.Questions = questions
		app.QuestionsAvailable = true
	} else {
		app.Missing = append(app.Missing, model.SourceQuestions)
		errs = append(errs, fmt.Errorf("%s: %w", model.SourceQuestions, questionsErr))
	}
	var backendPtr *model.BackendScore
	if scoreErr == nil {
		backendPtr = &backend
		app.BackendScore = backendPtr
	} else {
		app.Missing = append(app.Missing, model.SourceScore)
		errs = append(errs, fmt.Errorf("%s: %w", model.SourceScore, scoreErr))
	}

	res := a.Compute(app.Questions, backendPtr)
	res.Apply(&app)
	app.ScoreAvailable = app.Score != nil

	a.observe(ctx, app)

	if len(errs) > 0 {
		return app, model.WrapKind("aggregate", model.ErrPartialDataUnavailable, errors.Join(errs...))
	}
	return app, nil
}

func (a *Aggregator) observe(ctx context.Context, app model.Application) {
	ctx = logger.WithFields(ctx, logger.String("candidate_id", app.CandidateID), logger.String("job_id", app.JobID))
	for _, src := range app.Missing {
		metrics.RecordPartialData(src)
		a.log.Warn(ctx, "score source unavailable", logger.String("source", src))
	}
	if app.Performance == nil {
		metrics.RecordScoreComputation("unavailable")
		return
	}
	metrics.RecordScoreComputation(app.Performance.Level)
	if app.Consistency.Checked && !app.Consistency.Consistent {
		metrics.RecordScoreDrift()
		a.log.Info(ctx, "derived score diverges from backend score",
			logger.Float64("normalized", app.Consistency.Normalized),
			logger.Float64("drift", app.Consistency.Drift))
	}
}
