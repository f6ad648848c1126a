package tracing

import (
	"context"
	"strings"
	"time"

	"github.com/fibula-mmo/fibula/datarecording"
)

// KindOutcomes sums how the recorded events of one kind ended.
type KindOutcomes struct {
	Kind      string
	Completed int
	Cancelled int
	Faulted   int

	// Unfinished events were still pending when the recording stopped.
	Unfinished int

	// AverageLifetime covers the events that ended, from scheduling to end.
	AverageLifetime time.Duration
}

// Total returns how many events of the kind were recorded.
func (o KindOutcomes) Total() int {
	return o.Completed + o.Cancelled + o.Faulted + o.Unfinished
}

// SummarizeTrace reads the tasks a DBTracer recorded and sums them per kind,
// in kind order. When kinds are given only those are read.
func SummarizeTrace(
	ctx context.Context,
	reader datarecording.DataReader,
	kinds ...string,
) ([]KindOutcomes, error) {
	reader.MapTable(TaskTable, TaskTableEntry{})

	params := datarecording.QueryParams{OrderBy: "Kind"}
	if len(kinds) > 0 {
		params.Where = "Kind IN (" +
			strings.TrimSuffix(strings.Repeat("?,", len(kinds)), ",") + ")"
		for _, k := range kinds {
			params.Args = append(params.Args, k)
		}
	}

	rows, _, err := reader.Query(ctx, TaskTable, params)
	if err != nil {
		return nil, err
	}

	summary := []KindOutcomes{}
	var lifetime time.Duration
	var ended int

	for _, row := range rows {
		entry := row.(TaskTableEntry)

		if len(summary) == 0 || summary[len(summary)-1].Kind != entry.Kind {
			closeAverage(summary, lifetime, ended)
			summary = append(summary, KindOutcomes{Kind: entry.Kind})
			lifetime, ended = 0, 0
		}

		current := &summary[len(summary)-1]
		switch entry.What {
		case WhatCompleted:
			current.Completed++
		case WhatCancelled:
			current.Cancelled++
		case WhatFaulted:
			current.Faulted++
		default:
			current.Unfinished++
			continue
		}

		lifetime += time.Duration(entry.EndTime - entry.StartTime)
		ended++
	}

	closeAverage(summary, lifetime, ended)

	return summary, nil
}

func closeAverage(summary []KindOutcomes, lifetime time.Duration, ended int) {
	if len(summary) == 0 || ended == 0 {
		return
	}

	summary[len(summary)-1].AverageLifetime = lifetime / time.Duration(ended)
}
