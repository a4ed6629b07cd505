package sched

import (
	"fmt"
	"iter"
)

// Body is the code run by a task. It calls yield to hand control back to the
// scheduler. Once the task has been terminated yield returns false and the
// body should return as soon as possible.
//
// Returning nil ends the task normally. Returning an error aborts the whole
// run.
type Body func(t *Task, yield func() bool) error

// Task wraps one resumable unit of work.
type Task struct {
	ID   int
	Name string

	sched    *Scheduler
	parent   *Task
	children []*Task

	next func() (error, bool)
	stop func()
	done bool
}

func newTask(s *Scheduler, id int, name string, body Body) *Task {
	t := &Task{ID: id, Name: name, sched: s}
	seq := func(y func(error) bool) {
		err := body(t, func() bool { return y(nil) })
		if err != nil {
			y(err)
		}
	}
	t.next, t.stop = iter.Pull(iter.Seq[error](seq))
	return t
}

// Spawn registers a child of t. The child is terminated when t finishes.
func (t *Task) Spawn(name string, body Body) int {
	c := t.sched.register(name, body)
	c.parent = t
	t.children = append(t.children, c)
	return c.ID
}

// Done returns true once the task has finished or been terminated.
func (t *Task) Done() bool {
	return t.done
}

func (t *Task) String() string {
	return fmt.Sprintf("task %d (%s)", t.ID, t.Name)
}

// resume runs the task up to its next yield. yielded is false when the body
// has returned.
func (t *Task) resume() (err error, yielded bool) {
	return t.next()
}
