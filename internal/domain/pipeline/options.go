package pipeline

import (
	"time"

	"github.com/okian/hireflow/pkg/logger"
)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the time source used to decide whether an interview has
// taken place.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLocation sets the zone interview dates and times are read in.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithLogger sets the controller logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}
