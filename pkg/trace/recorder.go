package trace

import (
	"fmt"
	"sync"
)

// Event is one action taken by a module during a T-state.
type Event struct {
	Cycle  uint64 `json:"cycle"`  // T-states elapsed
	MCycle int    `json:"mcycle"` // machine cycle
	T      int    `json:"t"`      // T-state within the machine cycle, 1-4
	Module string `json:"module"`
	Phase  string `json:"phase,omitempty"` // machine-cycle tag, e.g. M1R
	Action string `json:"action"`
	Value  uint16 `json:"value"`
}

func (e Event) String() string {
	return fmt.Sprintf("%6d M%-4d T%d %-6s %-4s %-8s %04X", e.Cycle, e.MCycle, e.T, e.Module, e.Phase, e.Action, e.Value)
}

// Recorder collects events. It is safe for concurrent use so one recorder
// can be shared by several machines.
type Recorder struct {
	mu      sync.Mutex
	max     int
	events  []Event
	dropped int
}

// NewRecorder creates a recorder that keeps at most max events. A max of zero
// or less keeps everything.
func NewRecorder(max int) *Recorder {
	return &Recorder{max: max}
}

// Add appends an event. Once the recorder is full further events are
// counted but not stored.
func (r *Recorder) Add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.events) >= r.max {
		r.dropped++
		return
	}
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events in the order they were added.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Filter returns the recorded events of one module.
func (r *Recorder) Filter(module string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Module == module {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of stored events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Dropped returns the number of events discarded because the recorder was
// full.
func (r *Recorder) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
