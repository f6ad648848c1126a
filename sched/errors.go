package sched

import "errors"

// ErrInvalidEvent is returned when an event cannot be handed to the
// scheduler, either because it already finished or because the scheduler
// already owns it.
var ErrInvalidEvent = errors.New("sched: invalid event")

// ErrExecutionFault wraps any error or panic raised from an event's Execute.
var ErrExecutionFault = errors.New("sched: execution fault")
