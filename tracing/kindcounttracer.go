package tracing

import (
	"sort"
	"sync"
)

// KindStats summarizes the events of one kind.
type KindStats struct {
	Kind      string `json:"kind"`
	Scheduled uint64 `json:"scheduled"`
	Executed  uint64 `json:"executed"`
	Expedited uint64 `json:"expedited"`
	Completed uint64 `json:"completed"`
	Cancelled uint64 `json:"cancelled"`
	Faulted   uint64 `json:"faulted"`
	InFlight  uint64 `json:"in_flight"`
}

// KindCountTracer keeps per-kind counters of the event lifecycle.
type KindCountTracer struct {
	lock  sync.Mutex
	stats map[string]*KindStats
}

// NewKindCountTracer creates a new KindCountTracer.
func NewKindCountTracer() *KindCountTracer {
	return &KindCountTracer{
		stats: make(map[string]*KindStats),
	}
}

func (t *KindCountTracer) kind(name string) *KindStats {
	s, ok := t.stats[name]
	if !ok {
		s = &KindStats{Kind: name}
		t.stats[name] = s
	}

	return s
}

// StartTask counts a scheduled event.
func (t *KindCountTracer) StartTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	s := t.kind(task.Kind)
	s.Scheduled++
	s.InFlight++
}

// StepTask counts executions, expeditions and faults.
func (t *KindCountTracer) StepTask(task Task) {
	if len(task.Steps) == 0 {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	s := t.kind(task.Kind)

	switch task.Steps[0].What {
	case StepExecute:
		s.Executed++
	case StepExpedite:
		s.Expedited++
	case StepFault:
		s.Faulted++
	}
}

// EndTask counts completed and cancelled events.
func (t *KindCountTracer) EndTask(task Task) {
	t.lock.Lock()
	defer t.lock.Unlock()

	s := t.kind(task.Kind)

	switch task.What {
	case WhatCompleted:
		s.Completed++
	case WhatCancelled:
		s.Cancelled++
	}

	if s.InFlight > 0 {
		s.InFlight--
	}
}

// Stats returns a snapshot of the counters sorted by kind.
func (t *KindCountTracer) Stats() []KindStats {
	t.lock.Lock()
	defer t.lock.Unlock()

	stats := make([]KindStats, 0, len(t.stats))
	for _, s := range t.stats {
		stats = append(stats, *s)
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Kind < stats[j].Kind
	})

	return stats
}
