package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by the pipeline, the aggregator and the
// dispatcher. Match them with errors.Is.
var (
	ErrMissingIdentifier      = errors.New("missing identifier")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrRemoteFailure          = errors.New("remote failure")
	ErrPartialDataUnavailable = errors.New("partial data unavailable")
	ErrBusy                   = errors.New("another action is in progress")
	ErrNotFound               = errors.New("not found")
	ErrInvalidInput           = errors.New("invalid input")
)

// Error attaches an operation name and a kind to an underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
	}
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind for op with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind returns an error of kind for op wrapping err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

var kinds = []error{ErrMissingIdentifier, ErrInvalidTransition, ErrInvalidInput, ErrBusy, ErrNotFound, ErrRemoteFailure, ErrPartialDataUnavailable} //nolint:gochecknoglobals // fixed precedence

// KindOf returns the kind of the outermost *Error in err's chain, so a
// partial result wrapping remote causes still reads as partial. Errors
// without one fall back to the first sentinel err matches, or nil.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Kind != nil {
		for _, kind := range kinds {
			if errors.Is(e.Kind, kind) {
				return kind
			}
		}
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Message renders err for an operator. Each kind produces a distinct prefix so
// no failure reads as a generic error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	detail := err.Error()
	if errors.As(err, &e) && e.Err != nil {
		detail = e.Err.Error()
	}
	switch KindOf(err) {
	case ErrMissingIdentifier:
		return "Missing required information: " + detail
	case ErrInvalidTransition:
		return "Action not allowed: " + detail
	case ErrInvalidInput:
		return "Invalid input: " + detail
	case ErrBusy:
		return "Try again shortly: " + detail
	case ErrNotFound:
		return "Not found: " + detail
	case ErrRemoteFailure:
		return "HR service request failed: " + detail
	case ErrPartialDataUnavailable:
		return "Some data could not be loaded: " + detail
	default:
		return detail
	}
}
