// Package scoring turns an application's question responses and the HR
// service's rubric score into one published score and a performance tier.
package scoring

import (
	"math"
	"strings"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/logger"
)

// Default scoring configuration constants.
const (
	defaultDriftTolerance = 3.0
	defaultHighPoints     = 2
	defaultNeutralPoints  = 1
)

// Answer is the coarse category a free-text response maps to.
type Answer uint8

// Answer categories, lowest value first.
const (
	Unanswered Answer = iota
	Low
	Neutral
	High
)

var answerNames = [...]string{
	Unanswered: "unanswered",
	Low:        "low",
	Neutral:    "neutral",
	High:       "high",
}

func (a Answer) String() string {
	if int(a) < len(answerNames) {
		return answerNames[a]
	}
	return "unknown"
}

// MapResponse categorizes a response: an empty one is Unanswered, one
// containing "yes" is High, otherwise one containing "no" is Low and anything
// else, whitespace included, is Neutral. Matching is case-insensitive.
func MapResponse(resp string) Answer {
	lower := strings.ToLower(resp)
	switch {
	case resp == "":
		return Unanswered
	case strings.Contains(lower, "yes"):
		return High
	case strings.Contains(lower, "no"):
		return Low
	default:
		return Neutral
	}
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithOptionPoints overrides answer points by name (high, neutral, low,
// unanswered). Unknown names and negative values are ignored.
func WithOptionPoints(points map[string]float64) Option {
	return func(a *Aggregator) {
		for i, name := range answerNames {
			if pts, ok := points[name]; ok && pts >= 0 {
				a.points[i] = pts
			}
		}
	}
}

// WithTiers sets the performance tiers. Build them with NewTiers.
func WithTiers(tiers Tiers) Option {
	return func(a *Aggregator) {
		if len(tiers) > 0 {
			a.tiers = tiers
		}
	}
}

// WithDriftTolerance sets how far the derived score may sit from the backend
// score before the application is flagged inconsistent.
func WithDriftTolerance(tolerance float64) Option {
	return func(a *Aggregator) {
		if tolerance >= 0 {
			a.tolerance = tolerance
		}
	}
}

// WithLogger sets the aggregator logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// Aggregator computes application scores. Compute is pure; Aggregate fetches
// its inputs from a Source first.
type Aggregator struct {
	src       Source
	points    [len(answerNames)]float64
	tiers     Tiers
	tolerance float64
	log       logger.Logger
}

// New creates an Aggregator reading from src.
func New(src Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		src:       src,
		tiers:     DefaultTiers(),
		tolerance: defaultDriftTolerance,
		log:       logger.Nop(),
	}
	a.points[High] = defaultHighPoints
	a.points[Neutral] = defaultNeutralPoints

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Points returns the points awarded for answer.
func (a *Aggregator) Points(answer Answer) float64 {
	if int(answer) >= len(a.points) {
		return 0
	}
	return a.points[answer]
}

// Result is the outcome of Compute.
type Result struct {
	DerivedScore    float64
	MaxDerivedScore float64
	// Score is the published score, nil when the backend score is unavailable.
	Score       *float64
	Performance *model.Performance
	Consistency model.Consistency
}

// Compute derives the multiple-choice score from questions and publishes the
// backend total, classified into a tier. The derived score is only compared
// against the backend score, never blended into it. A nil or non-finite
// backend score leaves Score and Performance nil.
func (a *Aggregator) Compute(questions []model.Question, backend *model.BackendScore) Result {
	var r Result
	for _, q := range questions {
		r.DerivedScore += a.Points(MapResponse(q.Response))
	}
	r.MaxDerivedScore = float64(len(questions)) * a.points[High]

	if backend == nil || math.IsNaN(backend.TotalScore) || math.IsInf(backend.TotalScore, 0) {
		return r
	}
	score := Clamp(backend.TotalScore)
	perf := a.tiers.Classify(score)
	r.Score = &score
	r.Performance = &perf

	if r.MaxDerivedScore > 0 {
		normalized := r.DerivedScore / r.MaxDerivedScore * MaxScore
		drift := math.Abs(normalized - score)
		r.Consistency = model.Consistency{
			Checked:    true,
			Normalized: normalized,
			Drift:      drift,
			Consistent: drift <= a.tolerance,
		}
	}
	return r
}

// Apply copies r into app.
func (r Result) Apply(app *model.Application) {
	app.DerivedScore = r.DerivedScore
	app.MaxDerivedScore = r.MaxDerivedScore
	app.Score = r.Score
	app.Performance = r.Performance
	app.Consistency = r.Consistency
}
