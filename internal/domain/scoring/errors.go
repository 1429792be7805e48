package scoring

import "errors"

// Sentinel error kinds for this package.
var (
	ErrInvalidTiers = errors.New("invalid performance tiers")
)
