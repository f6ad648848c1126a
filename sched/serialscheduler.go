package sched

import (
	"container/heap"
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/fibula-mmo/fibula/hooking"
)

// A SerialScheduler is a Scheduler that runs due events one after another on
// a single drain loop. Schedule, Cancel and Expedite may be called from any
// goroutine, including from inside an executing event.
type SerialScheduler struct {
	*hooking.HookableBase

	clock  Clock
	logger *log.Logger
	evtCtx EventContext

	queueLock sync.Mutex
	queue     entryHeap
	index     map[string]*ScheduledEntry
	nextSeq   uint64

	timeLock sync.RWMutex
	now      VTime

	wakeup chan struct{}

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSerialScheduler creates a SerialScheduler that reads time from clock.
func NewSerialScheduler(clock Clock) *SerialScheduler {
	if clock == nil {
		clock = NewRealClock()
	}

	s := &SerialScheduler{
		HookableBase: hooking.NewHookableBase(),
		clock:        clock,
		logger:       log.Default(),
		index:        make(map[string]*ScheduledEntry),
		wakeup:       make(chan struct{}, 1),
	}
	s.evtCtx = schedulerContext{s: s}
	heap.Init(&s.queue)

	return s
}

// UseContext sets the context handed to every executed event. Hosts call it
// during setup with a context that also carries their collaborators.
func (s *SerialScheduler) UseContext(ctx EventContext) {
	s.evtCtx = ctx
}

// UseLogger sets the logger that receives execution faults.
func (s *SerialScheduler) UseLogger(logger *log.Logger) {
	s.logger = logger
}

// Logger returns the logger of the scheduler.
func (s *SerialScheduler) Logger() *log.Logger {
	return s.logger
}

// CurrentTime returns the time of the current drain pass.
func (s *SerialScheduler) CurrentTime() VTime {
	return s.readNow()
}

func (s *SerialScheduler) readNow() VTime {
	s.timeLock.RLock()
	t := s.now
	s.timeLock.RUnlock()
	return t
}

func (s *SerialScheduler) advanceTime() VTime {
	s.timeLock.Lock()
	defer s.timeLock.Unlock()

	if t := s.clock.Now(); t > s.now {
		s.now = t
	}

	return s.now
}

// insertionTime returns the time a new delay counts from. Between drain
// passes the clock runs ahead of the current time, so delayed insertions
// count from the clock. Immediate ones stay in the current pass.
func (s *SerialScheduler) insertionTime(delay time.Duration) VTime {
	now := s.readNow()
	if delay == 0 {
		return now
	}

	if t := s.clock.Now(); t > now {
		return t
	}

	return now
}

// Schedule inserts an event to fire after delay.
func (s *SerialScheduler) Schedule(
	evt Event,
	delay time.Duration,
) (ScheduledEntry, error) {
	if evt == nil {
		return ScheduledEntry{}, fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}

	if delay < 0 {
		delay = 0
	}

	s.queueLock.Lock()

	if !evt.eventBase().transit(EventStateUnscheduled, EventStateScheduled) {
		s.queueLock.Unlock()
		return ScheduledEntry{}, fmt.Errorf("%w: event %s is %s",
			ErrInvalidEvent, evt.ID(), evt.State())
	}

	entry := s.push(evt, s.insertionTime(delay).Add(delay))
	snapshot := *entry
	isHead := entry.index == 0

	s.queueLock.Unlock()

	if isHead {
		s.wake()
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosEventScheduled,
		Item:   evt,
		Detail: snapshot,
	})

	return snapshot, nil
}

// push must be called with the queue lock held.
func (s *SerialScheduler) push(evt Event, fireTime VTime) *ScheduledEntry {
	entry := &ScheduledEntry{
		Event:    evt,
		FireTime: fireTime,
		Sequence: s.nextSeq,
	}
	s.nextSeq++

	heap.Push(&s.queue, entry)
	s.index[evt.ID()] = entry

	return entry
}

func (s *SerialScheduler) wake() {
	select {
	case s.wakeup <- struct{}{}:
	default:
	}
}

// Cancel removes the pending cancellable events accepted by match. The
// predicate runs while the queue is locked and must not call back into the
// scheduler.
func (s *SerialScheduler) Cancel(match Predicate) int {
	if match == nil {
		match = Any()
	}

	s.queueLock.Lock()

	var cancelled []Event
	for _, entry := range slices.Clone(s.queue) {
		evt := entry.Event
		if !evt.CanBeCancelled() || !match(evt) {
			continue
		}

		if !evt.eventBase().transit(EventStateScheduled, EventStateCancelled) {
			continue
		}

		heap.Remove(&s.queue, entry.index)
		delete(s.index, evt.ID())
		cancelled = append(cancelled, evt)
	}

	s.queueLock.Unlock()

	for _, evt := range cancelled {
		if handler := evt.eventBase().cancelledHandler(); handler != nil {
			s.runCallback(evt, "cancelled", func() { handler(evt) })
		}

		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosEventCancelled,
			Item:   evt,
		})
	}

	return len(cancelled)
}

// Expedite makes a pending event due on the next drain pass.
func (s *SerialScheduler) Expedite(eventID string) bool {
	s.queueLock.Lock()
	entry, found := s.index[eventID]
	s.queueLock.Unlock()

	if !found {
		return false
	}

	evt := entry.Event
	if handler := evt.eventBase().expeditedHandler(); handler != nil {
		accepted := false
		s.runCallback(evt, "expedited", func() { accepted = handler(evt) })
		if !accepted {
			return false
		}
	}

	s.queueLock.Lock()

	if s.index[eventID] != entry || evt.State() != EventStateScheduled {
		s.queueLock.Unlock()
		return false
	}

	if now := s.readNow(); entry.FireTime > now {
		entry.FireTime = now
		heap.Fix(&s.queue, entry.index)
	}

	s.queueLock.Unlock()

	s.wake()

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosEventExpedited,
		Item:   evt,
	})

	return true
}

// Find returns the pending entries accepted by match in fire order. The
// predicate runs while the queue is locked and must not call back into the
// scheduler.
func (s *SerialScheduler) Find(match Predicate) []ScheduledEntry {
	if match == nil {
		match = Any()
	}

	s.queueLock.Lock()

	found := make([]ScheduledEntry, 0)
	for _, entry := range s.queue {
		if match(entry.Event) {
			found = append(found, *entry)
		}
	}

	s.queueLock.Unlock()

	slices.SortFunc(found, compareEntries)

	return found
}

// Pending returns a snapshot of every pending entry in fire order.
func (s *SerialScheduler) Pending() []ScheduledEntry {
	return s.Find(nil)
}

// Len returns the number of pending entries.
func (s *SerialScheduler) Len() int {
	s.queueLock.Lock()
	defer s.queueLock.Unlock()

	return s.queue.Len()
}

// Tick performs one drain pass. It advances the current time to the clock
// and executes every entry that is due, including the ones scheduled with no
// delay by the events of this pass. It returns the number of executed
// events.
func (s *SerialScheduler) Tick() int {
	return s.drain(false)
}

// drain runs the due entries. When yieldToPause is set it stops as soon as
// the scheduler is paused instead of waiting for Continue.
func (s *SerialScheduler) drain(yieldToPause bool) int {
	s.advanceTime()

	count := 0
	for s.runNext(yieldToPause) {
		count++
	}

	return count
}

func (s *SerialScheduler) runNext(yieldToPause bool) bool {
	if yieldToPause {
		if !s.pauseLock.TryLock() {
			return false
		}
	} else {
		s.pauseLock.Lock()
	}
	defer s.pauseLock.Unlock()

	entry, ok := s.popDue()
	if !ok {
		return false
	}

	s.execute(entry)

	return true
}

func (s *SerialScheduler) popDue() (*ScheduledEntry, bool) {
	s.queueLock.Lock()
	defer s.queueLock.Unlock()

	if s.queue.Len() == 0 {
		return nil, false
	}

	if s.queue[0].FireTime > s.readNow() {
		return nil, false
	}

	entry := heap.Pop(&s.queue).(*ScheduledEntry)
	delete(s.index, entry.Event.ID())

	if !entry.Event.eventBase().transit(
		EventStateScheduled, EventStateExecuting) {
		log.Panicf("event %s popped in state %s",
			entry.Event.ID(), entry.Event.State())
	}

	return entry, true
}

func (s *SerialScheduler) execute(entry *ScheduledEntry) {
	evt := entry.Event

	hookCtx := hooking.HookCtx{
		Domain: s,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	s.InvokeHook(hookCtx)

	err := s.safeExecute(evt)

	hookCtx.Pos = HookPosAfterEvent
	hookCtx.Detail = err
	s.InvokeHook(hookCtx)

	if err != nil {
		s.logger.Printf("event %s (%s) requested by %d faulted: %v",
			evt.ID(), KindName(evt), evt.RequestorID(), err)
		s.complete(evt)

		return
	}

	if repeat := evt.RepeatAfter(); repeat > 0 && s.reschedule(evt, repeat) {
		return
	}

	s.complete(evt)
}

func (s *SerialScheduler) safeExecute(evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ErrExecutionFault, r)
		}
	}()

	if execErr := evt.Execute(s.evtCtx); execErr != nil {
		return fmt.Errorf("%w: %w", ErrExecutionFault, execErr)
	}

	return nil
}

func (s *SerialScheduler) reschedule(evt Event, repeat time.Duration) bool {
	s.queueLock.Lock()
	defer s.queueLock.Unlock()

	if !evt.eventBase().transit(EventStateExecuting, EventStateScheduled) {
		return false
	}

	s.push(evt, s.readNow().Add(repeat))

	return true
}

func (s *SerialScheduler) complete(evt Event) {
	if !evt.eventBase().transit(EventStateExecuting, EventStateCompleted) {
		return
	}

	if handler := evt.eventBase().completedHandler(); handler != nil {
		s.runCallback(evt, "completed", func() { handler(evt) })
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosEventCompleted,
		Item:   evt,
	})
}

func (s *SerialScheduler) runCallback(evt Event, name string, f func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Printf("%s callback of event %s (%s) panicked: %v",
				name, evt.ID(), KindName(evt), r)
		}
	}()

	f()
}

func (s *SerialScheduler) untilNextEvent() (time.Duration, bool) {
	s.queueLock.Lock()
	defer s.queueLock.Unlock()

	if s.queue.Len() == 0 {
		return 0, false
	}

	wait := s.queue[0].FireTime.Sub(s.clock.Now())
	if wait < 0 {
		wait = 0
	}

	return wait, true
}

// Run keeps draining the queue until ctx is done. While idle it sleeps
// until the next fire time or until an insertion or expedition needs an
// earlier pass. While paused it only waits for Continue or for ctx. Only one
// Run may be active at a time.
func (s *SerialScheduler) Run(ctx context.Context) error {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		var timeout <-chan time.Time
		if !s.IsPaused() {
			s.drain(true)

			if wait, ok := s.untilNextEvent(); ok && !s.IsPaused() {
				timer.Reset(wait)
				timeout = timer.C
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.wakeup:
		case <-timeout:
		}

		timer.Stop()
	}
}

// Pause prevents the SerialScheduler from executing more events.
func (s *SerialScheduler) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue allows the SerialScheduler to execute events again.
func (s *SerialScheduler) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false

	s.wake()
}

// IsPaused tells if the scheduler is paused.
func (s *SerialScheduler) IsPaused() bool {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	return s.isPaused
}

type schedulerContext struct {
	s *SerialScheduler
}

func (c schedulerContext) Scheduler() Scheduler {
	return c.s
}

func (c schedulerContext) Logger() *log.Logger {
	return c.s.logger
}

var _ Scheduler = (*SerialScheduler)(nil)
