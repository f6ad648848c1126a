package sched

import "container/heap"

// ScheduledEntry is an event together with the time it should fire.
type ScheduledEntry struct {
	Event    Event
	FireTime VTime

	// Sequence is assigned at insertion and breaks ties between entries that
	// fire at the same time: the entry inserted first fires first.
	Sequence uint64

	index int
}

// Before tells if e fires before other.
func (e ScheduledEntry) Before(other ScheduledEntry) bool {
	if e.FireTime != other.FireTime {
		return e.FireTime < other.FireTime
	}

	return e.Sequence < other.Sequence
}

func compareEntries(a, b ScheduledEntry) int {
	switch {
	case a.Before(b):
		return -1
	case b.Before(a):
		return 1
	default:
		return 0
	}
}

type entryHeap []*ScheduledEntry

// Len returns the number of pending entries.
func (h entryHeap) Len() int {
	return len(h)
}

// Less returns true if the i-th entry fires before the j-th entry.
func (h entryHeap) Less(i, j int) bool {
	return h[i].Before(*h[j])
}

// Swap changes the position of two entries in the queue.
func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

// Push adds an entry into the queue.
func (h *entryHeap) Push(x any) {
	entry := x.(*ScheduledEntry)
	entry.index = len(*h)
	*h = append(*h, entry)
}

// Pop removes and returns the last entry of the backing slice.
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*h = old[0 : n-1]
	return entry
}

var _ heap.Interface = (*entryHeap)(nil)
