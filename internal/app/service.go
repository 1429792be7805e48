// Package service turns operator intents into pipeline transitions backed by
// the HR service, and serves the read models the HTTP API exposes.
package service

import (
	"context"
	"time"

	"github.com/okian/hireflow/internal/adapters/repository"
	"github.com/okian/hireflow/internal/domain/inflight"
	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/internal/domain/pipeline"
	"github.com/okian/hireflow/internal/domain/scoring"
	"github.com/okian/hireflow/pkg/logger"
)

// Writer performs the HR service writes behind each pipeline event.
type Writer interface {
	UpdateApplicationStatus(ctx context.Context, employeeID, candidateID string, stage model.Stage) error
	ScheduleInterview(ctx context.Context, employeeID string, iv model.Interview) (string, error)
	RescheduleInterview(ctx context.Context, employeeID string, iv model.Interview) error
	SendOffer(ctx context.Context, employeeID, candidateID, jobID, message string) error
	FetchCandidateOffers(ctx context.Context, candidateID string) ([]model.Offer, error)
	OnboardEmployee(ctx context.Context, employeeID, candidateID string, o model.Onboarding) error
	SubmitEvaluation(ctx context.Context, employeeID, candidateID, jobID string, ev model.Evaluation) error
}

// Directory reads candidates and listings from the HR service.
type Directory interface {
	FetchApplicant(ctx context.Context, candidateID string) (model.Candidate, error)
	FetchApplicants(ctx context.Context) ([]model.Candidate, error)
	FetchInterviews(ctx context.Context) ([]model.Interview, error)
	FetchOffers(ctx context.Context) ([]model.Offer, error)
	FetchPersonalInfo(ctx context.Context, candidateID string) (map[string]any, error)
	FetchEducation(ctx context.Context, candidateID string) ([]map[string]any, error)
	FetchExperience(ctx context.Context, candidateID string) ([]map[string]any, error)
	FetchSkills(ctx context.Context, candidateID string) ([]map[string]any, error)
}

// HR is everything the service needs from the HR service.
type HR interface {
	Writer
	Directory
	scoring.Source
}

// Publisher receives a notice for every committed transition.
type Publisher interface {
	Publish(ctx context.Context, n model.Notice)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.Notice) {}

// Service dispatches operator actions and answers read queries.
type Service struct {
	hr        HR
	store     repository.Store
	guard     inflight.Guard
	ctl       *pipeline.Controller
	agg       *scoring.Aggregator
	publisher Publisher
	log       logger.Logger
	now       func() time.Time

	scoreConcurrency int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the candidate session store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithGuard sets the in-flight guard.
func WithGuard(g inflight.Guard) Option {
	return func(s *Service) {
		if g != nil {
			s.guard = g
		}
	}
}

// WithController sets the pipeline controller.
func WithController(ctl *pipeline.Controller) Option {
	return func(s *Service) {
		if ctl != nil {
			s.ctl = ctl
		}
	}
}

// WithAggregator sets the score aggregator.
func WithAggregator(agg *scoring.Aggregator) Option {
	return func(s *Service) {
		if agg != nil {
			s.agg = agg
		}
	}
}

// WithPublisher sets where committed transitions are announced.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock sets the time source stamped on notices.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithScoreConcurrency bounds how many application scores a funnel export
// computes at once.
func WithScoreConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scoreConcurrency = n
		}
	}
}

// New constructs a Service backed by hr.
func New(hr HR, opts ...Option) *Service {
	s := &Service{
		hr:               hr,
		publisher:        nopPublisher{},
		log:              logger.Nop(),
		now:              time.Now,
		scoreConcurrency: 4,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	if s.guard == nil {
		s.guard = inflight.NewInMemoryGuard()
	}
	if s.ctl == nil {
		s.ctl = pipeline.New(pipeline.WithLogger(s.log))
	}
	if s.agg == nil {
		s.agg = scoring.New(hr, scoring.WithLogger(s.log))
	}
	return s
}

// Stats returns session counters for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]any {
	stats := map[string]any{
		"inflight_actions": s.guard.Size(),
	}
	if n, err := s.store.Count(ctx); err != nil {
		s.log.Warn(ctx, "failed to count session candidates", logger.Error(err))
	} else {
		stats["session_candidates"] = n
	}
	if c, ok := s.publisher.(interface{ Clients() int }); ok {
		stats["stream_clients"] = c.Clients()
	}
	return stats
}
