package tracing

import (
	"sync"

	"github.com/fibula-mmo/fibula/datarecording"
	"github.com/fibula-mmo/fibula/sched"
	"github.com/tebeka/atexit"
)

// Tables written by the DBTracer.
const (
	TaskTable = "event_trace"
	StepTable = "event_trace_steps"
)

// TaskTableEntry is one row of the event trace table. Times are nanoseconds
// of simulation time.
type TaskTableEntry struct {
	ID        string
	Kind      string
	What      string
	Location  string
	StartTime int64
	EndTime   int64
	NumSteps  int
}

// StepTableEntry is one row of the step table.
type StepTableEntry struct {
	TaskID string
	Time   int64
	What   string
}

// DBTracer is a tracer that stores finished tasks into a DataRecorder.
type DBTracer struct {
	mu         sync.Mutex
	timeTeller sched.TimeTeller
	backend    datarecording.DataRecorder

	startTime, endTime sched.VTime

	tracingTasks map[string]Task
}

// NewDBTracer creates a new DBTracer.
func NewDBTracer(
	timeTeller sched.TimeTeller,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(TaskTable, TaskTableEntry{})
	dataRecorder.CreateTable(StepTable, StepTableEntry{})

	t := &DBTracer{
		timeTeller:   timeTeller,
		backend:      dataRecorder,
		tracingTasks: make(map[string]Task),
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits recording to the tasks that overlap [startTime,
// endTime]. A zero bound is open.
func (t *DBTracer) SetTimeRange(startTime, endTime sched.VTime) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// StartTask marks the start of a task.
func (t *DBTracer) StartTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	startingTaskMustBeValid(task)

	task.StartTime = t.timeTeller.CurrentTime()
	if t.endTime > 0 && task.StartTime > t.endTime {
		return
	}

	t.tracingTasks[task.ID] = task
}

func startingTaskMustBeValid(task Task) {
	if task.ID == "" {
		panic("task ID must be set")
	}

	if task.Kind == "" {
		panic("task kind must be set")
	}

	if task.Where == "" {
		panic("task location must be set")
	}
}

// StepTask appends the steps to a traced task. A step at the same time with
// the same name as the last one is recorded once.
func (t *DBTracer) StepTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	for _, step := range task.Steps {
		n := len(originalTask.Steps)
		if n > 0 && originalTask.Steps[n-1] == step {
			continue
		}

		originalTask.Steps = append(originalTask.Steps, step)
	}

	t.tracingTasks[task.ID] = originalTask
}

// EndTask writes the task with its steps.
func (t *DBTracer) EndTask(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	originalTask, ok := t.tracingTasks[task.ID]
	if !ok {
		return
	}

	delete(t.tracingTasks, task.ID)

	originalTask.EndTime = t.timeTeller.CurrentTime()
	if t.startTime > 0 && originalTask.EndTime < t.startTime {
		return
	}

	originalTask.What = task.What
	if taskContainsStep(originalTask, StepFault) {
		originalTask.What = WhatFaulted
	}

	t.writeTaskToDB(originalTask)
}

// Terminate writes the tasks still pending as unfinished and flushes the
// backend.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.timeTeller.CurrentTime()
	for _, task := range t.tracingTasks {
		task.EndTime = now
		t.writeTaskToDB(task)
	}

	t.tracingTasks = make(map[string]Task)
	t.backend.Flush()
}

func (t *DBTracer) writeTaskToDB(task Task) {
	t.backend.InsertData(TaskTable, TaskTableEntry{
		ID:        task.ID,
		Kind:      task.Kind,
		What:      task.What,
		Location:  task.Where,
		StartTime: int64(task.StartTime),
		EndTime:   int64(task.EndTime),
		NumSteps:  len(task.Steps),
	})

	for _, step := range task.Steps {
		t.backend.InsertData(StepTable, StepTableEntry{
			TaskID: task.ID,
			Time:   int64(step.Time),
			What:   step.What,
		})
	}
}
