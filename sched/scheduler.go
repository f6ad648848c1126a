package sched

import (
	"reflect"
	"time"
)

// A Scheduler keeps events in fire-time order and runs them when they are
// due.
type Scheduler interface {
	TimeTeller

	// Schedule queues an Unscheduled event to fire after delay. Negative
	// delays are treated as zero.
	Schedule(evt Event, delay time.Duration) (ScheduledEntry, error)

	// Cancel removes every pending cancellable event accepted by match and
	// returns how many were removed. A nil predicate matches every event.
	Cancel(match Predicate) int

	// Expedite moves a pending event to fire on the next drain pass. It
	// returns false when the event is unknown, not pending, or its
	// expedition callback declined.
	Expedite(eventID string) bool

	// Find returns the pending entries accepted by match, in fire order.
	Find(match Predicate) []ScheduledEntry
}

// Predicate selects events.
type Predicate func(evt Event) bool

// Any matches every event.
func Any() Predicate {
	return func(Event) bool { return true }
}

// RequestedBy matches the events requested by requestorID. When kinds are
// given, the event must also be one of those concrete types.
func RequestedBy(requestorID uint32, kinds ...reflect.Type) Predicate {
	return func(evt Event) bool {
		if evt.RequestorID() != requestorID {
			return false
		}

		if len(kinds) == 0 {
			return true
		}

		kind := KindOf(evt)
		for _, k := range kinds {
			if k == kind {
				return true
			}
		}

		return false
	}
}

// OfKind matches events of the given concrete types, whoever requested them.
func OfKind(kinds ...reflect.Type) Predicate {
	return func(evt Event) bool {
		kind := KindOf(evt)
		for _, k := range kinds {
			if k == kind {
				return true
			}
		}

		return false
	}
}

// All matches events accepted by every one of the predicates.
func All(predicates ...Predicate) Predicate {
	return func(evt Event) bool {
		for _, p := range predicates {
			if p != nil && !p(evt) {
				return false
			}
		}

		return true
	}
}

// KindOf returns the concrete type of an event. Pointer events report their
// element type so that kinds can be compared without allocating.
func KindOf(evt Event) reflect.Type {
	t := reflect.TypeOf(evt)
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}

	return t
}

// KindName returns a readable name of the concrete type of an event.
func KindName(evt Event) string {
	kind := KindOf(evt)
	if kind == nil {
		return "<nil>"
	}

	return kind.Name()
}
