package scoring

import (
	"fmt"
	"math"

	"github.com/okian/hireflow/internal/domain/model"
)

// Score scale bounds.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Tier is a performance band starting at Min (inclusive) and ending where the
// next tier starts. The last tier includes MaxScore.
type Tier struct {
	Min         float64
	Performance model.Performance
}

// Tiers is an ordered partition of [MinScore, MaxScore].
type Tiers []Tier

// DefaultTiers returns the standard four bands.
func DefaultTiers() Tiers {
	return Tiers{
		{Min: 0, Performance: model.Performance{Level: "Needs Improvement", Color: "red",
			Message: "Candidate falls short of the role requirements."}},
		{Min: 4, Performance: model.Performance{Level: "Average", Color: "yellow",
			Message: "Candidate meets some requirements; review the responses before proceeding."}},
		{Min: 7, Performance: model.Performance{Level: "Good", Color: "blue",
			Message: "Candidate is a solid match for the role."}},
		{Min: 8.5, Performance: model.Performance{Level: "Excellent", Color: "green",
			Message: "Candidate is a strong match; consider moving them to interview."}},
	}
}

// NewTiers validates that tiers start at MinScore, increase strictly and stay
// below MaxScore, so every score in range falls in exactly one tier.
func NewTiers(tiers ...Tier) (Tiers, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: at least one tier is required", ErrInvalidTiers)
	}
	if tiers[0].Min != MinScore {
		return nil, fmt.Errorf("%w: first tier must start at %v, got %v", ErrInvalidTiers, MinScore, tiers[0].Min)
	}
	for i, t := range tiers {
		if math.IsNaN(t.Min) || t.Min >= MaxScore {
			return nil, fmt.Errorf("%w: tier %q starts outside [%v,%v)", ErrInvalidTiers, t.Performance.Level, MinScore, MaxScore)
		}
		if t.Performance.Level == "" {
			return nil, fmt.Errorf("%w: tier %d has no level", ErrInvalidTiers, i)
		}
		if i > 0 && t.Min <= tiers[i-1].Min {
			return nil, fmt.Errorf("%w: tier %q does not start above %q", ErrInvalidTiers, t.Performance.Level, tiers[i-1].Performance.Level)
		}
	}
	out := make(Tiers, len(tiers))
	copy(out, tiers)
	return out, nil
}

// Clamp limits score to [MinScore, MaxScore].
func Clamp(score float64) float64 {
	return math.Max(MinScore, math.Min(MaxScore, score))
}

// Classify returns the tier containing score after clamping it into range.
func (ts Tiers) Classify(score float64) model.Performance {
	score = Clamp(score)
	perf := ts[0].Performance
	for _, t := range ts {
		if score < t.Min {
			break
		}
		perf = t.Performance
	}
	return perf
}
