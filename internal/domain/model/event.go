package model

import (
	"fmt"
	"strings"
)

// Event is an operator intent that may move a candidate between stages.
type Event uint8

// Pipeline events.
const (
	Screen Event = iota
	MarkReady
	ScheduleInterview
	CompleteInterview
	Reschedule
	SendOffer
	Onboard
	Reject
)

var eventNames = [...]string{
	Screen:            "screen",
	MarkReady:         "mark_ready",
	ScheduleInterview: "schedule_interview",
	CompleteInterview: "complete_interview",
	Reschedule:        "reschedule",
	SendOffer:         "send_offer",
	Onboard:           "onboard",
	Reject:            "reject",
}

// Events lists every event.
func Events() []Event {
	return []Event{Screen, MarkReady, ScheduleInterview, CompleteInterview, Reschedule, SendOffer, Onboard, Reject}
}

func (e Event) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return fmt.Sprintf("event(%d)", e)
}

// ParseEvent resolves an event name. Dashes are accepted in place of underscores
// so URL path segments like "mark-ready" resolve.
func ParseEvent(name string) (Event, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, candidate := range eventNames {
		if candidate == n {
			return Event(i), nil
		}
	}
	return Screen, fmt.Errorf("unknown event %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (e Event) MarshalText() ([]byte, error) {
	if int(e) >= len(eventNames) {
		return nil, fmt.Errorf("invalid event %d", e)
	}
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *Event) UnmarshalText(b []byte) error {
	parsed, err := ParseEvent(string(b))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
