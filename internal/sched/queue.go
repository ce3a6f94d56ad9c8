package sched

import "container/heap"

// Task is a deferred action bound at scheduling time.
//
// Target and Op identify what the action acts on (e.g. "agent 17",
// "complete work") and appear in error messages. Run carries its own bound
// state; the scheduler never resolves operations by name.
type Task struct {
	Target string
	Op     string
	Run    func() error
}

// Handle refers to one scheduled Task. It can be used to withdraw the Task
// before it fires.
type Handle struct {
	time     float64
	priority int
	seq      int64
	task     Task
	index    int // position in the heap, -1 once fired or withdrawn
}

// Time returns the execution time of the Task.
func (h *Handle) Time() float64 { return h.time }

// Priority returns the Task's priority.
func (h *Handle) Priority() int { return h.priority }

// Seq returns the submission sequence number.
func (h *Handle) Seq() int64 { return h.seq }

// Task returns the scheduled Task.
func (h *Handle) Task() Task { return h.task }

// Pending reports whether the Task is still waiting to fire.
func (h *Handle) Pending() bool { return h != nil && h.index >= 0 }

// actionQueue is a binary heap of pending handles ordered by
// (time, priority, seq).
type actionQueue []*Handle

func (q actionQueue) Len() int { return len(q) }

func (q actionQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.time != b.time {
		return a.time < b.time
	}
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	return a.seq < b.seq
}

func (q actionQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *actionQueue) Push(x any) {
	h := x.(*Handle)
	h.index = len(*q)
	*q = append(*q, h)
}

func (q *actionQueue) Pop() any {
	old := *q
	n := len(old)
	h := old[n-1]
	// Nil out the slot so the popped handle's closure can be collected.
	old[n-1] = nil
	h.index = -1
	*q = old[:n-1]
	return h
}

func (q *actionQueue) push(h *Handle) { heap.Push(q, h) }

func (q *actionQueue) pop() *Handle { return heap.Pop(q).(*Handle) }

func (q *actionQueue) remove(h *Handle) { heap.Remove(q, h.index) }

func (q actionQueue) peek() *Handle {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
