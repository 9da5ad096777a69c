package cmd

import (
	"container/heap"

	"github.com/sarchlab/timekeeper/timing"
)

// readyQueue pops due events, highest priority first. Events of equal
// priority come out in the order they were pushed.
type readyQueue struct {
	items readyHeap
	seq   uint64
}

func (q *readyQueue) Push(e *timing.PriorityCallbackEvent) {
	heap.Push(&q.items, readyItem{event: e, seq: q.seq})
	q.seq++
}

func (q *readyQueue) Pop() *timing.PriorityCallbackEvent {
	if q.items.Len() == 0 {
		return nil
	}

	return heap.Pop(&q.items).(readyItem).event
}

func (q *readyQueue) Len() int {
	return q.items.Len()
}

type readyItem struct {
	event *timing.PriorityCallbackEvent
	seq   uint64
}

type readyHeap []readyItem

func (h readyHeap) Len() int { return len(h) }

// Less puts the event with priority first. Since equal priorities are not
// ordered, ties fall back to the push order.
func (h readyHeap) Less(i, j int) bool {
	a, b := h[i].event, h[j].event
	if a.HasPriority(b) {
		return true
	}

	if b.HasPriority(a) {
		return false
	}

	return h[i].seq < h[j].seq
}

func (h readyHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *readyHeap) Push(x any) {
	*h = append(*h, x.(readyItem))
}

func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}
