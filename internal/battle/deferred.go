package battle

import "container/heap"

// timeEpsilon absorbs float drift when comparing accumulated simulation time.
const timeEpsilon = 1e-9

// deferredTask is an action bound to a unit that runs at a future simulation time.
type deferredTask struct {
	due   float64
	seq   uint64
	unit  UnitID
	label string
	run   func(u *Unit)
}

type taskHeap []*deferredTask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any) { *h = append(*h, x.(*deferredTask)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// deferredQueue orders tasks by due time, then by scheduling order.
type deferredQueue struct {
	tasks taskHeap
	seq   uint64
}

func (q *deferredQueue) schedule(due float64, unit UnitID, label string, run func(u *Unit)) {
	q.seq++
	heap.Push(&q.tasks, &deferredTask{due: due, seq: q.seq, unit: unit, label: label, run: run})
}

// popDue removes and returns the earliest task due at or before now, or nil.
func (q *deferredQueue) popDue(now float64) *deferredTask {
	if len(q.tasks) == 0 || q.tasks[0].due > now+timeEpsilon {
		return nil
	}
	return heap.Pop(&q.tasks).(*deferredTask)
}

// drain removes every pending task in due order.
func (q *deferredQueue) drain() []*deferredTask {
	out := make([]*deferredTask, 0, len(q.tasks))
	for len(q.tasks) > 0 {
		out = append(out, heap.Pop(&q.tasks).(*deferredTask))
	}
	return out
}

func (q *deferredQueue) Len() int { return len(q.tasks) }
