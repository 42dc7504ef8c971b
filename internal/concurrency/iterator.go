package concurrency

// TaskIterator is a lazy, possibly-unbounded sequence of tasks. It is the
// canonical contract the bounded-concurrency driver streams through the
// pool (spec.md §9's resolved Open Question: the iterator-based form
// subsumes the array-based overloads other source variants exposed).
type TaskIterator interface {
	// Next returns the next task and true, or (nil, false) once exhausted.
	Next() (Task, bool)
}

// SliceTaskIterator adapts a fixed slice of tasks into a TaskIterator, the
// convenience wrapper for the common finite-fan-out case.
type SliceTaskIterator struct {
	tasks []Task
	pos   int
}

// NewSliceTaskIterator wraps tasks for streaming through the driver.
func NewSliceTaskIterator(tasks []Task) *SliceTaskIterator {
	return &SliceTaskIterator{tasks: tasks}
}

// Next implements TaskIterator.
func (it *SliceTaskIterator) Next() (Task, bool) {
	if it.pos >= len(it.tasks) {
		return nil, false
	}
	t := it.tasks[it.pos]
	it.pos++
	return t, true
}

// FuncTaskIterator adapts a generator function into a TaskIterator.
type FuncTaskIterator struct {
	next func() (Task, bool)
}

// NewFuncTaskIterator wraps next as a TaskIterator.
func NewFuncTaskIterator(next func() (Task, bool)) *FuncTaskIterator {
	return &FuncTaskIterator{next: next}
}

// Next implements TaskIterator.
func (it *FuncTaskIterator) Next() (Task, bool) { return it.next() }

// pushbackIterator wraps a TaskIterator, holding at most one buffered
// element so the bounded-concurrency driver can "try submit, and if the
// pool rejects, put that task back for the next iteration" without
// consuming it. It is not safe for concurrent use and is owned solely by
// the driver goroutine that constructs it (spec.md §9).
type pushbackIterator struct {
	src      TaskIterator
	buffered Task
	has      bool
}

func newPushbackIterator(src TaskIterator) *pushbackIterator {
	return &pushbackIterator{src: src}
}

// Next returns the buffered task if one was pushed back, otherwise pulls
// from the underlying source.
func (p *pushbackIterator) Next() (Task, bool) {
	if p.has {
		p.has = false
		t := p.buffered
		p.buffered = nil
		return t, true
	}
	return p.src.Next()
}

// PushBack buffers t to be returned by the next call to Next, instead of
// pulling from the source.
func (p *pushbackIterator) PushBack(t Task) {
	p.buffered = t
	p.has = true
}
