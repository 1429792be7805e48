package repository

import "time"

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	ttl    time.Duration
	now    func() time.Time
	prefix string
}

func defaultOptions() options {
	return options{
		now:    time.Now,
		prefix: "hireflow:candidate:",
	}
}

// WithTTL expires entries ttl after their last Put. Zero keeps them.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl >= 0 {
			o.ttl = ttl
		}
	}
}

// WithClock sets the time source used for expiry in the memory store.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithKeyPrefix sets the Redis key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}
