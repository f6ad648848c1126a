// Package tracing follows scheduled events through their lifecycle and
// reports them to tracers.
package tracing

// A Tracer can collect task traces
type Tracer interface {
	StartTask(task Task)
	StepTask(task Task)
	EndTask(task Task)
}
