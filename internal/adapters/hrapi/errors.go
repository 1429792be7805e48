package hrapi

import "fmt"

// StatusError is a non-2xx answer from the HR service. Message is the
// service's own text.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Code)
	}
	return e.Message
}
