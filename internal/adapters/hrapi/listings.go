package hrapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/logger"
)

// FetchApplicants lists every applicant. Records whose status cannot be read
// are kept with UnknownStatus set and logged.
func (c *Client) FetchApplicants(ctx context.Context) ([]model.Candidate, error) {
	const op = "fetch_applicants"
	raw, err := c.doRequest(ctx, op, http.MethodGet, hrPrefix+"/all_applicants", nil)
	if err != nil {
		return nil, err
	}
	ws, err := decodeList[applicantWire](raw)
	if err != nil {
		return nil, wrapDecode(op, err)
	}
	out := make([]model.Candidate, 0, len(ws))
	for _, w := range ws {
		cand, ok := w.candidate()
		if !ok {
			c.log.Warn(ctx, "unrecognized application status",
				logger.String("candidate_id", cand.ID), logger.String("status", first(w.ApplicationStatus, w.Status)))
		}
		out = append(out, cand)
	}
	return out, nil
}

// FetchApplicant returns one applicant from the full listing, or an
// ErrNotFound kind. An applicant whose status names no stage comes back with
// an ErrRemoteFailure kind, since nothing may act on it.
func (c *Client) FetchApplicant(ctx context.Context, candidateID string) (model.Candidate, error) {
	all, err := c.FetchApplicants(ctx)
	if err != nil {
		return model.Candidate{}, err
	}
	for _, cand := range all {
		if cand.ID != candidateID {
			continue
		}
		if cand.UnknownStatus != "" {
			return cand, model.WrapKind("applicant "+candidateID, model.ErrRemoteFailure,
				fmt.Errorf("unrecognized application status %q", cand.UnknownStatus))
		}
		return cand, nil
	}
	return model.Candidate{}, model.NewKind("applicant "+candidateID, model.ErrNotFound)
}

// FetchInterviews lists every interview.
func (c *Client) FetchInterviews(ctx context.Context) ([]model.Interview, error) {
	const op = "fetch_interviews"
	raw, err := c.doRequest(ctx, op, http.MethodGet, hrPrefix+"/allInterviews", nil)
	if err != nil {
		return nil, err
	}
	ws, err := decodeList[interviewWire](raw)
	if err != nil {
		return nil, wrapDecode(op, err)
	}
	out := make([]model.Interview, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.interview())
	}
	return out, nil
}

// FetchOffers lists every offer.
func (c *Client) FetchOffers(ctx context.Context) ([]model.Offer, error) {
	const op = "fetch_offers"
	raw, err := c.doRequest(ctx, op, http.MethodGet, hrPrefix+"/allOffers", nil)
	if err != nil {
		return nil, err
	}
	ws, err := decodeList[offerWire](raw)
	if err != nil {
		return nil, wrapDecode(op, err)
	}
	out := make([]model.Offer, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.offer())
	}
	return out, nil
}

// FetchPersonalInfo returns the candidate's personal details.
func (c *Client) FetchPersonalInfo(ctx context.Context, candidateID string) (map[string]any, error) {
	const op = "fetch_personal_info"
	raw, err := c.doRequest(ctx, op, http.MethodGet, path(candidatePrefix+"/personalInfo", candidateID), nil)
	if err != nil {
		return nil, err
	}
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, wrapDecode(op, err)
	}
	return obj, nil
}

// FetchEducation returns the candidate's education entries.
func (c *Client) FetchEducation(ctx context.Context, candidateID string) ([]map[string]any, error) {
	return c.fetchSection(ctx, "fetch_education", "education", candidateID)
}

// FetchExperience returns the candidate's work experience entries.
func (c *Client) FetchExperience(ctx context.Context, candidateID string) ([]map[string]any, error) {
	return c.fetchSection(ctx, "fetch_experience", "experience", candidateID)
}

// FetchSkills returns the candidate's skills.
func (c *Client) FetchSkills(ctx context.Context, candidateID string) ([]map[string]any, error) {
	return c.fetchSection(ctx, "fetch_skills", "skills", candidateID)
}

func (c *Client) fetchSection(ctx context.Context, op, section, candidateID string) ([]map[string]any, error) {
	raw, err := c.doRequest(ctx, op, http.MethodGet, path(candidatePrefix+"/"+section, candidateID), nil)
	if err != nil {
		return nil, err
	}
	entries, err := decodeList[map[string]any](raw)
	if err != nil {
		return nil, wrapDecode(op, err)
	}
	return entries, nil
}
