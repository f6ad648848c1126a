package sched

import (
	"log"

	"github.com/fibula-mmo/fibula/hooking"
)

// EventLogger is a hook that prints one line for every executed event.
type EventLogger struct {
	Logger *log.Logger
}

// NewEventLogger returns a new EventLogger which will write into the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	now := VTime(0)
	if teller, ok := ctx.Domain.(TimeTeller); ok {
		now = teller.CurrentTime()
	}

	h.Logger.Printf("%s, %s %s requested by %d",
		now, KindName(evt), evt.ID(), evt.RequestorID())
}
