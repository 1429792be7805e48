package metrics

import (
	"errors"
)

// ErrRegisterFailed wraps a collector the custom registry refused.
var ErrRegisterFailed = errors.New("metrics collector registration failed")
