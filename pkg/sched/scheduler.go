package sched

import (
	"context"
	"fmt"

	"github.com/oisee/gbz80-sim/pkg/logger"
)

// TaskError is returned by Run when a task body fails.
type TaskError struct {
	ID   int
	Name string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s): %v", e.ID, e.Name, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Scheduler is a single-threaded cooperative executor.
//
// Tasks are taken from the back of the queue and, after yielding, put back at
// the front. Newly registered tasks go to the back, so the most recently
// registered task runs before older ones on the next pass.
type Scheduler struct {
	Log *logger.Logger

	nextID int
	queue  []*Task
	tasks  map[int]*Task
	steps  uint64
}

// New creates an empty scheduler.
func New() *Scheduler {
	return &Scheduler{tasks: make(map[int]*Task)}
}

// Register adds a top-level task and returns its ID.
func (s *Scheduler) Register(name string, body Body) int {
	return s.register(name, body).ID
}

func (s *Scheduler) register(name string, body Body) *Task {
	s.nextID++
	t := newTask(s, s.nextID, name, body)
	s.tasks[t.ID] = t
	s.queue = append(s.queue, t)
	return t
}

// Len returns the number of live tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Steps returns the number of task resumes performed so far.
func (s *Scheduler) Steps() uint64 {
	return s.steps
}

// Run resumes tasks until none remain. A task error, or cancellation of
// ctx, terminates every remaining task and is returned.
func (s *Scheduler) Run(ctx context.Context) error {
	for len(s.tasks) > 0 {
		if err := ctx.Err(); err != nil {
			s.terminateAll()
			return err
		}

		t := s.queue[len(s.queue)-1]
		s.queue = s.queue[:len(s.queue)-1]

		s.steps++
		err, yielded := t.resume()
		if !yielded {
			s.exit(t)
			continue
		}
		if err != nil {
			s.logf("%s failed: %v", t, err)
			s.terminateAll()
			return &TaskError{ID: t.ID, Name: t.Name, Err: err}
		}

		s.queue = append([]*Task{t}, s.queue...)
	}
	return nil
}

// exit removes a finished task and terminates its descendants.
func (s *Scheduler) exit(t *Task) {
	s.remove(t)
	if t.parent != nil {
		t.parent.children = without(t.parent.children, t)
	}
	for _, c := range t.children {
		s.terminate(c)
	}
	t.children = nil
}

// terminate force-closes t and all of its descendants.
func (s *Scheduler) terminate(t *Task) {
	if t.done {
		return
	}
	s.logf("terminating %s", t)
	s.remove(t)
	t.stop()
	for _, c := range t.children {
		s.terminate(c)
	}
	t.children = nil
}

func (s *Scheduler) terminateAll() {
	queued := append([]*Task(nil), s.queue...)
	for i := len(queued) - 1; i >= 0; i-- {
		s.terminate(queued[i])
	}
	for _, t := range s.tasks {
		s.terminate(t)
	}
	s.queue = nil
}

func (s *Scheduler) remove(t *Task) {
	t.done = true
	delete(s.tasks, t.ID)
	s.queue = without(s.queue, t)
}

func (s *Scheduler) logf(format string, args ...any) {
	if s.Log != nil {
		s.Log.Logf("sched", format, args...)
	}
}

func without(list []*Task, t *Task) []*Task {
	for i, x := range list {
		if x == t {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
