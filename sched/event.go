package sched

import (
	"log"
	"sync"
	"time"
)

// EventState is where an event stands in its lifecycle.
type EventState int

// Lifecycle states. An event starts Unscheduled, is Scheduled by the
// scheduler, moves to Executing when the drain loop picks it and ends as
// Completed or Cancelled. A repeating event goes back to Scheduled instead of
// completing.
const (
	EventStateUnscheduled EventState = iota
	EventStateScheduled
	EventStateExecuting
	EventStateCompleted
	EventStateCancelled
)

var eventStateNames = map[EventState]string{
	EventStateUnscheduled: "Unscheduled",
	EventStateScheduled:   "Scheduled",
	EventStateExecuting:   "Executing",
	EventStateCompleted:   "Completed",
	EventStateCancelled:   "Cancelled",
}

func (s EventState) String() string {
	if name, ok := eventStateNames[s]; ok {
		return name
	}

	return "Unknown"
}

// IsTerminal tells if no further transition can leave this state.
func (s EventState) IsTerminal() bool {
	return s == EventStateCompleted || s == EventStateCancelled
}

// EventContext is handed to every Execute call. Hosts extend it with the
// collaborators their events need.
type EventContext interface {
	Scheduler() Scheduler
	Logger() *log.Logger
}

// An Event is a unit of deferred work.
//
// Events are implemented by embedding *EventBase, which carries the identity
// and the lifecycle state the scheduler drives.
type Event interface {
	// ID returns the identifier assigned when the event was created.
	ID() string

	// RequestorID returns the entity that asked for the event, or 0 when the
	// system did.
	RequestorID() uint32

	// CanBeCancelled tells if Cancel may remove the event before it runs.
	CanBeCancelled() bool

	// RepeatAfter returns the delay before the event runs again. A
	// non-positive value means the event does not repeat.
	RepeatAfter() time.Duration

	// State returns the current lifecycle state.
	State() EventState

	// Execute performs the work. It runs on the drain loop and must not
	// block.
	Execute(ctx EventContext) error

	eventBase() *EventBase
}

// CancelledHandler is called after an event is cancelled.
type CancelledHandler func(evt Event)

// ExpeditedHandler is consulted before an event is expedited. Returning false
// declines the expedition.
type ExpeditedHandler func(evt Event) bool

// CompletedHandler is called after an event finished without repeating.
type CompletedHandler func(evt Event)

// EventBase provides the identity and lifecycle bookkeeping of events.
type EventBase struct {
	id          string
	requestorID uint32
	cancellable bool

	lock        sync.Mutex
	repeatAfter time.Duration
	state       EventState
	onCancelled CancelledHandler
	onExpedited ExpeditedHandler
	onCompleted CompletedHandler
}

// NewEventBase creates a new EventBase.
func NewEventBase(requestorID uint32, cancellable bool) *EventBase {
	b := new(EventBase)
	b.id = GetIDGenerator().Generate()
	b.requestorID = requestorID
	b.cancellable = cancellable
	b.state = EventStateUnscheduled

	return b
}

// ID returns the unique identifier of the event.
func (b *EventBase) ID() string {
	return b.id
}

// RequestorID returns the id of the entity that requested the event.
func (b *EventBase) RequestorID() uint32 {
	return b.requestorID
}

// CanBeCancelled tells if the event can be cancelled.
func (b *EventBase) CanBeCancelled() bool {
	return b.cancellable
}

// RepeatAfter returns the repeat interval.
func (b *EventBase) RepeatAfter() time.Duration {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.repeatAfter
}

// SetRepeatAfter sets the repeat interval. Events usually call it from their
// own Execute to decide whether to run again.
func (b *EventBase) SetRepeatAfter(d time.Duration) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.repeatAfter = d
}

// State returns the lifecycle state.
func (b *EventBase) State() EventState {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.state
}

// OnCancelled sets the callback fired after cancellation, replacing any
// previous one.
func (b *EventBase) OnCancelled(handler CancelledHandler) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.onCancelled = handler
}

// OnExpedited sets the callback consulted before expedition, replacing any
// previous one. Without a callback expedition is always accepted.
func (b *EventBase) OnExpedited(handler ExpeditedHandler) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.onExpedited = handler
}

// OnCompleted sets the callback fired on completion, replacing any previous
// one.
func (b *EventBase) OnCompleted(handler CompletedHandler) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.onCompleted = handler
}

// HasExpeditionHandler tells if an expedition callback is registered.
func (b *EventBase) HasExpeditionHandler() bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.onExpedited != nil
}

func (b *EventBase) eventBase() *EventBase {
	return b
}

func (b *EventBase) transit(from, to EventState) bool {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.state != from {
		return false
	}

	b.state = to

	return true
}

func (b *EventBase) cancelledHandler() CancelledHandler {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.onCancelled
}

func (b *EventBase) expeditedHandler() ExpeditedHandler {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.onExpedited
}

func (b *EventBase) completedHandler() CompletedHandler {
	b.lock.Lock()
	defer b.lock.Unlock()

	return b.onCompleted
}
