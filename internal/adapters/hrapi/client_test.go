package hrapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/okian/hireflow/internal/adapters/hrapi"
	"github.com/okian/hireflow/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type captured struct {
	Method string
	Path   string
	Body   map[string]any
	Header http.Header
}

// fakeHR serves canned bodies per path and records requests.
type fakeHR struct {
	mu       sync.Mutex
	requests []captured
	routes   map[string]func(w http.ResponseWriter)
}

func (f *fakeHR) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c := captured{Method: r.Method, Path: r.URL.EscapedPath(), Header: r.Header.Clone()}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &c.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, c)
	f.mu.Unlock()

	if h, ok := f.routes[r.URL.EscapedPath()]; ok {
		h(w)
		return
	}
	http.NotFound(w, r)
}

func (f *fakeHR) last() captured {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func respond(status int, body string) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestClientReads(t *testing.T) {
	Convey("Given an HR service", t, func() {
		hr := &fakeHR{routes: map[string]func(http.ResponseWriter){}}
		srv := httptest.NewServer(hr)
		defer srv.Close()
		client := hrapi.New(srv.URL+"/", hrapi.WithToken("secret"))
		ctx := context.Background()

		Convey("When listings come bare or wrapped", func() {
			hr.routes["/api/hr/all_applicants"] = respond(200,
				`[{"applicant_id": 7, "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com", "job_id": "j1", "application_status": "screening"}]`)
			hr.routes["/api/hr/allInterviews"] = respond(200,
				`{"data": [{"interview_id": "iv1", "candidate_id": "7", "job_id": "j1", "date": "2025-03-01", "time": "10:00"}]}`)
			hr.routes["/api/hr/allOffers"] = respond(200, `{"data": null}`)

			applicants, aerr := client.FetchApplicants(ctx)
			interviews, ierr := client.FetchInterviews(ctx)
			offers, oerr := client.FetchOffers(ctx)

			Convey("Then both shapes decode to the same typed lists", func() {
				So(aerr, ShouldBeNil)
				So(ierr, ShouldBeNil)
				So(oerr, ShouldBeNil)
				So(applicants, ShouldResemble, []model.Candidate{{
					ID: "7", Name: "Ada Lovelace", Contact: model.Contact{Email: "ada@example.com"},
					JobID: "j1", Stage: model.Screening,
				}})
				So(interviews, ShouldHaveLength, 1)
				So(interviews[0].ID, ShouldEqual, "iv1")
				So(offers, ShouldBeEmpty)
			})

			Convey("Then requests carry the credentials and a request id", func() {
				h := hr.last().Header
				So(h.Get("Authorization"), ShouldEqual, "Bearer secret")
				So(h.Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When legacy statuses are listed", func() {
			hr.routes["/api/hr/all_applicants"] = respond(200,
				`{"data": [{"candidate_id": "c1", "name": "Bo", "status": "hired"}, {"candidate_id": "c2", "status": "mystery"}]}`)
			applicants, err := client.FetchApplicants(ctx)

			Convey("Then known words map to stages and unknown ones are flagged", func() {
				So(err, ShouldBeNil)
				So(applicants[0].Stage, ShouldEqual, model.Onboarded)
				So(applicants[0].UnknownStatus, ShouldBeEmpty)
				So(applicants[1].UnknownStatus, ShouldEqual, "mystery")
			})
		})

		Convey("When fetching one applicant whose status names no stage", func() {
			hr.routes["/api/hr/all_applicants"] = respond(200,
				`[{"candidate_id": "c1", "application_status": "Offer Declined"}]`)
			cand, err := client.FetchApplicant(ctx, "c1")

			Convey("Then it is not passed off as applied", func() {
				So(errors.Is(err, model.ErrRemoteFailure), ShouldBeTrue)
				So(model.Message(err), ShouldContainSubstring, `"Offer Declined"`)
				So(cand.UnknownStatus, ShouldEqual, "Offer Declined")
			})
		})

		Convey("When fetching one applicant that does not exist", func() {
			hr.routes["/api/hr/all_applicants"] = respond(200, `[]`)
			_, err := client.FetchApplicant(ctx, "nobody")

			Convey("Then it is not found", func() {
				So(errors.Is(err, model.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When fetching questions", func() {
			hr.routes["/api/hr/applicationQuestions/j1/c1"] = respond(200,
				`[{"question": "Can you relocate?", "response": "Yes", "points_obtained": 2, "total_points": 2}]`)
			qs, err := client.FetchQuestions(ctx, "j1", "c1")

			Convey("Then they decode in order", func() {
				So(err, ShouldBeNil)
				So(qs, ShouldHaveLength, 1)
				So(qs[0].Response, ShouldEqual, "Yes")
			})
		})

		Convey("When the score uses either total field", func() {
			hr.routes["/api/hr/applicationScore/j1/c1"] = respond(200, `{"candidate_application_score": 9.2, "salary_score": 1}`)
			hr.routes["/api/hr/applicationScore/j1/c2"] = respond(200, `{"data": {"total_score": 6.5}}`)
			hr.routes["/api/hr/applicationScore/j1/c3"] = respond(200, `{"salary_score": 1}`)

			s1, err1 := client.FetchApplicationScore(ctx, "j1", "c1")
			s2, err2 := client.FetchApplicationScore(ctx, "j1", "c2")
			_, err3 := client.FetchApplicationScore(ctx, "j1", "c3")

			Convey("Then the total is found and a missing one is a failure", func() {
				So(err1, ShouldBeNil)
				So(s1.TotalScore, ShouldEqual, 9.2)
				So(s1.SalaryScore, ShouldEqual, 1)
				So(err2, ShouldBeNil)
				So(s2.TotalScore, ShouldEqual, 6.5)
				So(errors.Is(err3, model.ErrRemoteFailure), ShouldBeTrue)
			})
		})

		Convey("When profile sections are fetched", func() {
			hr.routes["/api/candidate/personalInfo/c1"] = respond(200, `{"data": {"first_name": "Ada"}}`)
			hr.routes["/api/candidate/skills/c1"] = respond(200, `{"data": [{"name": "Go"}]}`)

			info, ierr := client.FetchPersonalInfo(ctx, "c1")
			skills, serr := client.FetchSkills(ctx, "c1")
			_, eerr := client.FetchEducation(ctx, "c1")

			Convey("Then present sections decode and absent ones fail", func() {
				So(ierr, ShouldBeNil)
				So(info["first_name"], ShouldEqual, "Ada")
				So(serr, ShouldBeNil)
				So(skills[0]["name"], ShouldEqual, "Go")
				So(errors.Is(eerr, model.ErrRemoteFailure), ShouldBeTrue)
			})
		})
	})
}

func TestClientWrites(t *testing.T) {
	Convey("Given an HR service", t, func() {
		hr := &fakeHR{routes: map[string]func(http.ResponseWriter){}}
		srv := httptest.NewServer(hr)
		defer srv.Close()
		client := hrapi.New(srv.URL)
		ctx := context.Background()

		Convey("When updating an application status", func() {
			hr.routes["/api/hr/updateApplicationStatus/e1/c1"] = respond(200, `{"ok": true}`)
			err := client.UpdateApplicationStatus(ctx, "e1", "c1", model.ReadyToInterview)

			Convey("Then the wire name of the stage is posted", func() {
				So(err, ShouldBeNil)
				req := hr.last()
				So(req.Method, ShouldEqual, http.MethodPost)
				So(req.Body["application_status"], ShouldEqual, "ready_to_interview")
				So(req.Body["employee_id"], ShouldEqual, "e1")
			})
		})

		Convey("When scheduling an interview", func() {
			hr.routes["/api/hr/interviewCandidate/e1/c1/j1"] = respond(201, `{"data": {"interview_id": 55}}`)
			id, err := client.ScheduleInterview(ctx, "e1", model.Interview{
				CandidateID: "c1", JobID: "j1", Date: "2025-03-01", Time: "10:00", Location: "HQ",
			})

			Convey("Then the assigned id is returned", func() {
				So(err, ShouldBeNil)
				So(id, ShouldEqual, "55")
				So(hr.last().Body["date"], ShouldEqual, "2025-03-01")
				So(hr.last().Body["location"], ShouldEqual, "HQ")
			})
		})

		Convey("When scheduling gets an empty answer", func() {
			hr.routes["/api/hr/interviewCandidate/e1/c1/j1"] = respond(200, ``)
			id, err := client.ScheduleInterview(ctx, "e1", model.Interview{CandidateID: "c1", JobID: "j1"})

			Convey("Then it still succeeds without an id", func() {
				So(err, ShouldBeNil)
				So(id, ShouldBeEmpty)
			})
		})

		Convey("When rescheduling", func() {
			hr.routes["/api/hr/rescheduleInterview/e1/c1/iv1"] = respond(200, `{}`)
			err := client.RescheduleInterview(ctx, "e1", model.Interview{ID: "iv1", CandidateID: "c1", Date: "2025-03-05", Time: "14:00"})

			Convey("Then the new slot is posted", func() {
				So(err, ShouldBeNil)
				So(hr.last().Body["interview_id"], ShouldEqual, "iv1")
				So(hr.last().Body["time"], ShouldEqual, "14:00")
			})
		})

		Convey("When onboarding an employee", func() {
			hr.routes["/api/hr/onboardEmployee/e1/c1"] = respond(200, `{}`)
			err := client.OnboardEmployee(ctx, "e1", "c1",
				model.Onboarding{JobID: "j1", OfferID: "o1", CompanyDomain: "acme.io"})

			Convey("Then the job, offer and company are posted", func() {
				So(err, ShouldBeNil)
				req := hr.last()
				So(req.Path, ShouldEqual, "/api/hr/onboardEmployee/e1/c1")
				So(req.Body, ShouldResemble, map[string]any{
					"employee_id":    "e1",
					"candidate_id":   "c1",
					"job_id":         "j1",
					"offer_id":       "o1",
					"company_domain": "acme.io",
				})
			})
		})

		Convey("When the service rejects an offer", func() {
			hr.routes["/api/hr/sendOffer/e1/c1/j1"] = respond(422, `{"message": "Job is closed"}`)
			err := client.SendOffer(ctx, "e1", "c1", "j1", "Welcome")

			Convey("Then the service's message comes back unchanged", func() {
				So(errors.Is(err, model.ErrRemoteFailure), ShouldBeTrue)
				So(model.Message(err), ShouldEqual, "HR service request failed: Job is closed")
				var se *hrapi.StatusError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Code, ShouldEqual, 422)
			})
		})

		Convey("When a plain text error arrives", func() {
			hr.routes["/api/hr/onboardEmployee/e1/c1"] = respond(500, "  database down \n")
			err := client.OnboardEmployee(ctx, "e1", "c1", model.Onboarding{JobID: "j1", OfferID: "o1"})

			Convey("Then the text is trimmed and kept", func() {
				So(model.Message(err), ShouldEqual, "HR service request failed: database down")
			})
		})

		Convey("When listing a candidate's offers", func() {
			hr.routes["/api/hr/candidateOffers/c1"] = respond(200, `[{"id": "o1", "status": "sent"}]`)
			offers, err := client.FetchCandidateOffers(ctx, "c1")

			Convey("Then offers are attributed to the candidate", func() {
				So(err, ShouldBeNil)
				So(offers, ShouldResemble, []model.Offer{{ID: "o1", CandidateID: "c1", Status: "sent"}})
			})
		})

		Convey("When submitting an evaluation", func() {
			hr.routes["/api/hr/candidateEvaluation/e1/c1/j1"] = respond(200, `{}`)
			err := client.SubmitEvaluation(ctx, "e1", "c1", "j1", model.Evaluation{Notes: "Strong", Rating: 4})

			Convey("Then notes and rating are posted", func() {
				So(err, ShouldBeNil)
				So(hr.last().Body["notes"], ShouldEqual, "Strong")
				So(hr.last().Body["rating"], ShouldEqual, 4.0)
			})
		})

		Convey("When identifiers contain reserved characters", func() {
			hr.routes["/api/hr/candidateOffers/a%2Fb"] = respond(200, `[]`)
			_, err := client.FetchCandidateOffers(ctx, "a/b")

			Convey("Then they are escaped into one segment", func() {
				So(err, ShouldBeNil)
				So(hr.last().Path, ShouldEqual, "/api/hr/candidateOffers/a%2Fb")
			})
		})
	})

	Convey("Given an unreachable HR service", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		client := hrapi.New(url)

		Convey("When writing", func() {
			err := client.UpdateApplicationStatus(context.Background(), "e1", "c1", model.Screening)

			Convey("Then it is a remote failure", func() {
				So(errors.Is(err, model.ErrRemoteFailure), ShouldBeTrue)
			})
		})
	})
}
