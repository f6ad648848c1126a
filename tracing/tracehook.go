package tracing

import (
	"fmt"
	"reflect"

	"github.com/fibula-mmo/fibula/hooking"
	"github.com/fibula-mmo/fibula/sched"
)

// CollectTrace lets the tracer collect the lifecycle of every event that
// passes through a scheduler.
func CollectTrace(domain hooking.Hookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf("domain already has tracer %s",
				reflect.TypeOf(tracer)))
		}
	}

	h := traceHook{t: tracer}
	domain.AcceptHook(&h)
}

// A traceHook translates scheduler hook positions into task calls.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx hooking.HookCtx) {
	evt, ok := ctx.Item.(sched.Event)
	if !ok {
		return
	}

	switch ctx.Pos {
	case sched.HookPosEventScheduled:
		h.t.StartTask(taskFromEvent(evt, WhatScheduled))
	case sched.HookPosBeforeEvent:
		h.step(ctx, evt, StepExecute)
	case sched.HookPosAfterEvent:
		if err, _ := ctx.Detail.(error); err != nil {
			h.step(ctx, evt, StepFault)
		}
	case sched.HookPosEventExpedited:
		h.step(ctx, evt, StepExpedite)
	case sched.HookPosEventCompleted:
		h.t.EndTask(taskFromEvent(evt, WhatCompleted))
	case sched.HookPosEventCancelled:
		h.t.EndTask(taskFromEvent(evt, WhatCancelled))
	}
}

func (h *traceHook) step(ctx hooking.HookCtx, evt sched.Event, what string) {
	var now sched.VTime
	if teller, ok := ctx.Domain.(sched.TimeTeller); ok {
		now = teller.CurrentTime()
	}

	task := taskFromEvent(evt, what)
	task.Steps = []TaskStep{{Time: now, What: what}}

	h.t.StepTask(task)
}
