package service_test

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/hireflow/internal/domain/model"
)

var errDown = errors.New("hr service unavailable")

// fakeHR is an in-process HR service that records every call.
type fakeHR struct {
	mu         sync.Mutex
	calls      []string
	applicants map[string]model.Candidate
	offers     []model.Offer
	interviews []model.Interview
	questions  []model.Question
	score      *model.BackendScore
	sections   map[string][]map[string]any
	fail       map[string]error
	block      chan struct{}
	entered    chan struct{}
	lastIv     model.Interview
	lastEval   model.Evaluation
	lastStage  model.Stage

	lastOnboard model.Onboarding
}

func newFakeHR() *fakeHR {
	return &fakeHR{
		applicants: map[string]model.Candidate{},
		sections:   map[string][]map[string]any{},
		fail:       map[string]error{},
	}
}

func (f *fakeHR) record(name string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	err := f.fail[name]
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return err
}

func (f *fakeHR) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeHR) writes() []string {
	var out []string
	for _, c := range f.Calls() {
		switch c {
		case "update_status", "schedule", "reschedule", "send_offer", "onboard", "evaluate":
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeHR) UpdateApplicationStatus(_ context.Context, _, _ string, stage model.Stage) error {
	f.mu.Lock()
	f.lastStage = stage
	f.mu.Unlock()
	return f.record("update_status")
}

func (f *fakeHR) ScheduleInterview(_ context.Context, _ string, iv model.Interview) (string, error) {
	f.mu.Lock()
	f.lastIv = iv
	f.mu.Unlock()
	if err := f.record("schedule"); err != nil {
		return "", err
	}
	return "iv-100", nil
}

func (f *fakeHR) RescheduleInterview(_ context.Context, _ string, iv model.Interview) error {
	f.mu.Lock()
	f.lastIv = iv
	f.mu.Unlock()
	return f.record("reschedule")
}

func (f *fakeHR) SendOffer(context.Context, string, string, string, string) error {
	return f.record("send_offer")
}

func (f *fakeHR) FetchCandidateOffers(context.Context, string) ([]model.Offer, error) {
	if err := f.record("offers"); err != nil {
		return nil, err
	}
	return f.offers, nil
}

func (f *fakeHR) OnboardEmployee(_ context.Context, _, _ string, o model.Onboarding) error {
	f.mu.Lock()
	f.lastOnboard = o
	f.mu.Unlock()
	return f.record("onboard")
}

func (f *fakeHR) SubmitEvaluation(_ context.Context, _, _, _ string, ev model.Evaluation) error {
	f.mu.Lock()
	f.lastEval = ev
	f.mu.Unlock()
	return f.record("evaluate")
}

func (f *fakeHR) FetchApplicant(_ context.Context, id string) (model.Candidate, error) {
	if err := f.record("applicant"); err != nil {
		return model.Candidate{}, err
	}
	c, ok := f.applicants[id]
	if !ok {
		return model.Candidate{}, model.NewKind("applicant "+id, model.ErrNotFound)
	}
	return c, nil
}

func (f *fakeHR) FetchApplicants(context.Context) ([]model.Candidate, error) {
	if err := f.record("applicants"); err != nil {
		return nil, err
	}
	out := make([]model.Candidate, 0, len(f.applicants))
	for _, c := range f.applicants {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeHR) FetchInterviews(context.Context) ([]model.Interview, error) {
	if err := f.record("interviews"); err != nil {
		return nil, err
	}
	return f.interviews, nil
}

func (f *fakeHR) FetchOffers(context.Context) ([]model.Offer, error) {
	if err := f.record("all_offers"); err != nil {
		return nil, err
	}
	return f.offers, nil
}

func (f *fakeHR) FetchPersonalInfo(context.Context, string) (map[string]any, error) {
	if err := f.record(model.SourcePersonalInfo); err != nil {
		return nil, err
	}
	return map[string]any{"first_name": "Ada"}, nil
}

func (f *fakeHR) FetchEducation(context.Context, string) ([]map[string]any, error) {
	return f.section(model.SourceEducation)
}

func (f *fakeHR) FetchExperience(context.Context, string) ([]map[string]any, error) {
	return f.section(model.SourceExperience)
}

func (f *fakeHR) FetchSkills(context.Context, string) ([]map[string]any, error) {
	return f.section(model.SourceSkills)
}

func (f *fakeHR) section(name string) ([]map[string]any, error) {
	if err := f.record(name); err != nil {
		return nil, err
	}
	return f.sections[name], nil
}

func (f *fakeHR) FetchQuestions(context.Context, string, string) ([]model.Question, error) {
	if err := f.record(model.SourceQuestions); err != nil {
		return nil, err
	}
	return f.questions, nil
}

func (f *fakeHR) FetchApplicationScore(context.Context, string, string) (model.BackendScore, error) {
	if err := f.record(model.SourceScore); err != nil {
		return model.BackendScore{}, err
	}
	if f.score == nil {
		return model.BackendScore{}, errDown
	}
	return *f.score, nil
}

// recorder collects published notices.
type recorder struct {
	mu      sync.Mutex
	notices []model.Notice
}

func (r *recorder) Publish(_ context.Context, n model.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) Notices() []model.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Notice(nil), r.notices...)
}
