package main

import (
	"container/heap"
	"time"
)

type eventKind int

const (
	evRespawn eventKind = iota
	evFlagReturn
	evMatchRestart
)

// scheduled is a deferred simulation event. Seq guards against stale events:
// a respawn carries the victim's death count, a flag return the flag's drop count.
type scheduled struct {
	At       time.Duration
	Kind     eventKind
	PlayerID string
	Team     Team
	Seq      uint64
	order    uint64
}

// eventQueue is a min-heap on (At, insertion order)
type eventQueue struct {
	items []scheduled
	next  uint64
}

func (q *eventQueue) Len() int { return len(q.items) }

func (q *eventQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.At != b.At {
		return a.At < b.At
	}
	return a.order < b.order
}

func (q *eventQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *eventQueue) Push(x interface{}) { q.items = append(q.items, x.(scheduled)) }

func (q *eventQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

// Schedule adds an event
func (q *eventQueue) Schedule(ev scheduled) {
	ev.order = q.next
	q.next++
	heap.Push(q, ev)
}

// PopDue removes and returns the earliest event due at or before now
func (q *eventQueue) PopDue(now time.Duration) (scheduled, bool) {
	if len(q.items) == 0 || q.items[0].At > now {
		return scheduled{}, false
	}
	return heap.Pop(q).(scheduled), true
}

// Drop removes every event of kind
func (q *eventQueue) Drop(kind eventKind) {
	kept := q.items[:0]
	for _, ev := range q.items {
		if ev.Kind != kind {
			kept = append(kept, ev)
		}
	}
	q.items = kept
	heap.Init(q)
}
