// Package notification turns world changes into messages for the players
// that should hear about them. Notifications are scheduled events, so they
// are delivered by the same drain loop that produced the change.
package notification

import (
	"errors"
	"fmt"

	"github.com/fibula-mmo/fibula/sched"
)

// ErrContextNotSupported is returned when a notification runs in a context
// that cannot dispatch.
var ErrContextNotSupported = errors.New(
	"notification: context does not provide a dispatcher")

// A Dispatcher delivers payloads to players.
type Dispatcher interface {
	Dispatch(playerID uint32, payload Payload) error
}

// Context is the execution context notifications need.
type Context interface {
	sched.EventContext
	Dispatcher() Dispatcher
}

// A TargetResolver returns the ids of the players to notify. It is called
// when the notification runs, not when it is created.
type TargetResolver func() []uint32

// Players returns a resolver with a fixed list of players.
func Players(ids ...uint32) TargetResolver {
	return func() []uint32 { return ids }
}

// A Notification is an event that dispatches a payload.
type Notification struct {
	*sched.EventBase

	payload Payload
	targets TargetResolver
}

// New creates a notification. Notifications are requested by the system and
// cannot be cancelled.
func New(payload Payload, targets TargetResolver) *Notification {
	return &Notification{
		EventBase: sched.NewEventBase(0, false),
		payload:   payload,
		targets:   targets,
	}
}

// Payload returns what the notification carries.
func (n *Notification) Payload() Payload {
	return n.payload
}

// Kind returns the kind of the payload.
func (n *Notification) Kind() string {
	return n.payload.Kind()
}

// Execute dispatches the payload to every resolved player.
func (n *Notification) Execute(ctx sched.EventContext) error {
	nctx, ok := ctx.(Context)
	if !ok {
		return fmt.Errorf("%w: %T", ErrContextNotSupported, ctx)
	}

	if n.targets == nil {
		return nil
	}

	dispatcher := nctx.Dispatcher()

	var errs []error
	for _, playerID := range n.targets() {
		if err := dispatcher.Dispatch(playerID, n.payload); err != nil {
			errs = append(errs,
				fmt.Errorf("dispatching %s to %d: %w", n.Kind(), playerID, err))
		}
	}

	return errors.Join(errs...)
}

// A Factory creates notifications.
type Factory interface {
	Create(payload Payload, targets TargetResolver) *Notification
}

// DefaultFactory creates plain notifications.
type DefaultFactory struct{}

// Create implements Factory.
func (DefaultFactory) Create(
	payload Payload,
	targets TargetResolver,
) *Notification {
	return New(payload, targets)
}
