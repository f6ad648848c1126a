package sched

import "github.com/fibula-mmo/fibula/hooking"

// HookPosEventScheduled marks an event entering the queue.
var HookPosEventScheduled = &hooking.HookPos{Name: "EventScheduled"}

// HookPosBeforeEvent marks the time right before an event runs.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent marks the time right after an event runs. The hook
// Detail carries the error the event returned, if any.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

// HookPosEventCancelled marks an event removed by Cancel.
var HookPosEventCancelled = &hooking.HookPos{Name: "EventCancelled"}

// HookPosEventExpedited marks an event moved forward by Expedite.
var HookPosEventExpedited = &hooking.HookPos{Name: "EventExpedited"}

// HookPosEventCompleted marks an event that finished without repeating.
var HookPosEventCompleted = &hooking.HookPos{Name: "EventCompleted"}
