package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/hireflow/internal/domain/model"
	scoring "github.com/okian/hireflow/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func questions(responses ...string) []model.Question {
	out := make([]model.Question, len(responses))
	for i, r := range responses {
		out[i] = model.Question{Question: "q", Response: r}
	}
	return out
}

func TestMapResponse(t *testing.T) {
	Convey("Given free-text responses", t, func() {
		Convey("Then yes wins over no and matching ignores case", func() {
			So(scoring.MapResponse("Yes"), ShouldEqual, scoring.High)
			So(scoring.MapResponse("YES, I have"), ShouldEqual, scoring.High)
			So(scoring.MapResponse("yes and no"), ShouldEqual, scoring.High)
			So(scoring.MapResponse("No"), ShouldEqual, scoring.Low)
			So(scoring.MapResponse("not really"), ShouldEqual, scoring.Low)
		})

		Convey("Then other text, whitespace included, is neutral and only an empty response is unanswered", func() {
			So(scoring.MapResponse("Maybe later"), ShouldEqual, scoring.Neutral)
			So(scoring.MapResponse("   "), ShouldEqual, scoring.Neutral)
			So(scoring.MapResponse(""), ShouldEqual, scoring.Unanswered)
		})
	})
}

func TestTiers(t *testing.T) {
	Convey("Given the default tiers", t, func() {
		tiers := scoring.DefaultTiers()

		Convey("When classifying a 9.2 score", func() {
			Convey("Then it is Excellent", func() {
				So(tiers.Classify(9.2).Level, ShouldEqual, "Excellent")
			})
		})

		Convey("Then boundaries belong to the upper tier", func() {
			So(tiers.Classify(0).Level, ShouldEqual, "Needs Improvement")
			So(tiers.Classify(3.999).Level, ShouldEqual, "Needs Improvement")
			So(tiers.Classify(4).Level, ShouldEqual, "Average")
			So(tiers.Classify(7).Level, ShouldEqual, "Good")
			So(tiers.Classify(8.5).Level, ShouldEqual, "Excellent")
			So(tiers.Classify(10).Level, ShouldEqual, "Excellent")
		})

		Convey("Then every score in range falls in exactly one tier", func() {
			for s := 0.0; s <= 10.0; s += 0.01 {
				matches := 0
				for i, tier := range tiers {
					upper := math.Inf(1)
					if i+1 < len(tiers) {
						upper = tiers[i+1].Min
					}
					if s >= tier.Min && s < upper {
						matches++
						So(tiers.Classify(s), ShouldResemble, tier.Performance)
					}
				}
				So(matches, ShouldEqual, 1)
			}
		})

		Convey("Then out of range scores are clamped", func() {
			So(tiers.Classify(-2).Level, ShouldEqual, "Needs Improvement")
			So(tiers.Classify(14).Level, ShouldEqual, "Excellent")
		})

		Convey("Then the defaults pass validation", func() {
			_, err := scoring.NewTiers(tiers...)
			So(err, ShouldBeNil)
		})
	})

	Convey("Given invalid tier definitions", t, func() {
		perf := func(l string) model.Performance { return model.Performance{Level: l} }

		Convey("Then a gap at zero is rejected", func() {
			_, err := scoring.NewTiers(scoring.Tier{Min: 1, Performance: perf("a")})
			So(errors.Is(err, scoring.ErrInvalidTiers), ShouldBeTrue)
		})

		Convey("Then overlapping or unordered tiers are rejected", func() {
			_, err := scoring.NewTiers(
				scoring.Tier{Min: 0, Performance: perf("a")},
				scoring.Tier{Min: 5, Performance: perf("b")},
				scoring.Tier{Min: 5, Performance: perf("c")},
			)
			So(errors.Is(err, scoring.ErrInvalidTiers), ShouldBeTrue)
		})

		Convey("Then a tier starting at the top of the scale is rejected", func() {
			_, err := scoring.NewTiers(
				scoring.Tier{Min: 0, Performance: perf("a")},
				scoring.Tier{Min: 10, Performance: perf("b")},
			)
			So(errors.Is(err, scoring.ErrInvalidTiers), ShouldBeTrue)
		})

		Convey("Then no tiers at all is rejected", func() {
			_, err := scoring.NewTiers()
			So(errors.Is(err, scoring.ErrInvalidTiers), ShouldBeTrue)
		})
	})
}

func TestCompute(t *testing.T) {
	Convey("Given an aggregator with default points", t, func() {
		agg := scoring.New(nil)

		Convey("When computing with a backend score", func() {
			qs := questions("Yes", "No", "Maybe", "")
			backend := &model.BackendScore{TotalScore: 9.2}
			r := agg.Compute(qs, backend)

			Convey("Then the backend total is published and tiered", func() {
				So(*r.Score, ShouldEqual, 9.2)
				So(r.Performance.Level, ShouldEqual, "Excellent")
				So(r.Performance.Color, ShouldEqual, "green")
			})

			Convey("Then the derived score only feeds the consistency check", func() {
				So(r.DerivedScore, ShouldEqual, 3)
				So(r.MaxDerivedScore, ShouldEqual, 8)
				So(r.Consistency.Checked, ShouldBeTrue)
				So(r.Consistency.Normalized, ShouldAlmostEqual, 3.75)
				So(r.Consistency.Drift, ShouldAlmostEqual, 5.45)
				So(r.Consistency.Consistent, ShouldBeFalse)
			})

			Convey("Then computing again yields identical output", func() {
				again := agg.Compute(qs, backend)
				So(again, ShouldResemble, r)
			})
		})

		Convey("When the backend score is unavailable", func() {
			r := agg.Compute(questions("yes"), nil)

			Convey("Then no score or tier is published", func() {
				So(r.Score, ShouldBeNil)
				So(r.Performance, ShouldBeNil)
				So(r.DerivedScore, ShouldEqual, 2)
				So(r.Consistency.Checked, ShouldBeFalse)
			})
		})

		Convey("When the backend score is not a number", func() {
			r := agg.Compute(nil, &model.BackendScore{TotalScore: math.NaN()})

			Convey("Then it is treated as unavailable", func() {
				So(r.Score, ShouldBeNil)
			})
		})

		Convey("When the backend score is out of range", func() {
			r := agg.Compute(nil, &model.BackendScore{TotalScore: 12})

			Convey("Then it is clamped to the scale", func() {
				So(*r.Score, ShouldEqual, 10)
				So(r.Consistency.Checked, ShouldBeFalse)
			})
		})
	})

	Convey("Given configured option points and tolerance", t, func() {
		agg := scoring.New(nil,
			scoring.WithOptionPoints(map[string]float64{"high": 4, "neutral": 2, "bogus": 9}),
			scoring.WithDriftTolerance(1),
		)

		Convey("Then the points are applied", func() {
			So(agg.Points(scoring.High), ShouldEqual, 4)
			So(agg.Points(scoring.Neutral), ShouldEqual, 2)
			So(agg.Points(scoring.Low), ShouldEqual, 0)

			r := agg.Compute(questions("yes", "yes"), &model.BackendScore{TotalScore: 9.5})
			So(r.DerivedScore, ShouldEqual, 8)
			So(r.Consistency.Consistent, ShouldBeTrue)
		})
	})
}

type fakeSource struct {
	questions   []model.Question
	score       model.BackendScore
	questionErr error
	scoreErr    error
}

func (f *fakeSource) FetchQuestions(context.Context, string, string) ([]model.Question, error) {
	return f.questions, f.questionErr
}

func (f *fakeSource) FetchApplicationScore(context.Context, string, string) (model.BackendScore, error) {
	return f.score, f.scoreErr
}

func TestAggregate(t *testing.T) {
	Convey("Given an aggregator over a source", t, func() {
		src := &fakeSource{questions: questions("yes", "no"), score: model.BackendScore{TotalScore: 6}}
		agg := scoring.New(src)
		ctx := context.Background()

		Convey("When both sources answer", func() {
			app, err := agg.Aggregate(ctx, "job-1", "cand-1")

			Convey("Then the application is complete", func() {
				So(err, ShouldBeNil)
				So(app.QuestionsAvailable, ShouldBeTrue)
				So(app.ScoreAvailable, ShouldBeTrue)
				So(*app.Score, ShouldEqual, 6)
				So(app.Performance.Level, ShouldEqual, "Average")
				So(app.Missing, ShouldBeEmpty)
			})
		})

		Convey("When the score fetch fails", func() {
			src.scoreErr = errors.New("connection refused")
			app, err := agg.Aggregate(ctx, "job-1", "cand-1")

			Convey("Then questions are populated and the score is unavailable", func() {
				So(errors.Is(err, model.ErrPartialDataUnavailable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "connection refused")
				So(app.Questions, ShouldHaveLength, 2)
				So(app.QuestionsAvailable, ShouldBeTrue)
				So(app.ScoreAvailable, ShouldBeFalse)
				So(app.Score, ShouldBeNil)
				So(app.Performance, ShouldBeNil)
				So(app.Missing, ShouldResemble, []string{model.SourceScore})
			})
		})

		Convey("When the question fetch fails", func() {
			src.questionErr = errors.New("timeout")
			app, err := agg.Aggregate(ctx, "job-1", "cand-1")

			Convey("Then the score is still published", func() {
				So(errors.Is(err, model.ErrPartialDataUnavailable), ShouldBeTrue)
				So(app.QuestionsAvailable, ShouldBeFalse)
				So(app.ScoreAvailable, ShouldBeTrue)
				So(app.Missing, ShouldResemble, []string{model.SourceQuestions})
			})
		})

		Convey("When identifiers are missing", func() {
			_, err := agg.Aggregate(ctx, "", "cand-1")

			Convey("Then nothing is fetched", func() {
				So(errors.Is(err, model.ErrMissingIdentifier), ShouldBeTrue)
			})
		})
	})
}
