package bridge

// requestQueue holds in-flight tasks of one kind in FIFO insertion order.
type requestQueue[T any] struct {
	tasks []*Task[T]
}

// push appends a task at the tail.
func (q *requestQueue[T]) push(t *Task[T]) {
	q.tasks = append(q.tasks, t)
}

// len reports the number of in-flight tasks.
func (q *requestQueue[T]) len() int {
	return len(q.tasks)
}

// clear discards every queued task and reports how many were dropped. The
// underlying operations keep running; only their results become
// unobservable.
func (q *requestQueue[T]) clear() int {
	n := len(q.tasks)
	for i := range q.tasks {
		q.tasks[i] = nil
	}
	q.tasks = q.tasks[:0]
	return n
}

// drain polls every task exactly once, removes the completed ones, and
// reports each completed result through fn in queue-position order. Tasks
// still pending keep their relative order for the next tick.
func (q *requestQueue[T]) drain(fn func(value T, err error)) {
	kept := q.tasks[:0]
	for _, t := range q.tasks {
		value, err, done := t.Poll()
		if done {
			fn(value, err)
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(q.tasks); i++ {
		q.tasks[i] = nil
	}
	q.tasks = kept
}
