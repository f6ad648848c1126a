package tracing

import (
	"fmt"

	"github.com/fibula-mmo/fibula/sched"
)

// A TaskStep represents a milestone in the life of an event.
type TaskStep struct {
	Time sched.VTime `json:"time"`
	What string      `json:"what"`
}

// A Task is the traced life of one scheduled event, from the time it enters
// the queue until it completes or is cancelled.
type Task struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	What      string      `json:"what"`
	Where     string      `json:"where"`
	StartTime sched.VTime `json:"start_time"`
	EndTime   sched.VTime `json:"end_time"`
	Steps     []TaskStep  `json:"steps"`
	Detail    any         `json:"-"`
}

// TaskFilter is a function that can filter interesting tasks. If this function
// returns true, the task is considered useful.
type TaskFilter func(t Task) bool

// AllTasks is a TaskFilter that accepts every task.
func AllTasks(Task) bool {
	return true
}

// KindIs returns a TaskFilter that accepts the tasks of the given kinds.
func KindIs(kinds ...string) TaskFilter {
	return func(t Task) bool {
		for _, k := range kinds {
			if t.Kind == k {
				return true
			}
		}

		return false
	}
}

// Task steps and outcomes reported by the trace hook.
const (
	WhatScheduled = "scheduled"
	WhatCompleted = "completed"
	WhatCancelled = "cancelled"
	WhatFaulted   = "faulted"

	StepExecute  = "execute"
	StepExpedite = "expedite"
	StepFault    = "fault"
)

func taskFromEvent(evt sched.Event, what string) Task {
	return Task{
		ID:     evt.ID(),
		Kind:   sched.KindName(evt),
		What:   what,
		Where:  requestorName(evt.RequestorID()),
		Detail: evt,
	}
}

func requestorName(id uint32) string {
	if id == 0 {
		return "system"
	}

	return fmt.Sprintf("creature-%d", id)
}

func taskContainsStep(task Task, what string) bool {
	for _, s := range task.Steps {
		if s.What == what {
			return true
		}
	}

	return false
}
