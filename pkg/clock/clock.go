package clock

// T-states per machine cycle.
const StatesPerCycle = 4

// enableState is the T-state on entry to which the clock-enable line toggles.
const enableState = 3

// Clock divides sub-ticks into T-states and T-states into machine cycles.
//
// T-state numbering is 1-based: State() is always in [1,4].
type Clock struct {
	speed  int
	tick   int
	state  int
	mcycle int
	cycles uint64
	enable bool
}

// New creates a clock in T1 of machine cycle 0. Speed is the number of
// Advance() calls per T-state; values below 1 are treated as 1.
func New(speed int) *Clock {
	if speed < 1 {
		speed = 1
	}
	return &Clock{speed: speed, state: 1}
}

// Advance moves the clock on by one sub-tick and returns true if a T-state
// boundary was crossed.
func (c *Clock) Advance() bool {
	c.tick++
	if c.tick < c.speed {
		return false
	}
	c.tick = 0
	c.state++
	c.cycles++
	if c.state == enableState {
		c.enable = !c.enable
	}
	if c.state > StatesPerCycle {
		c.state = 1
		c.mcycle++
	}
	return true
}

// Reset puts the clock back to T1 at the start of an instruction fetch. If
// the clock was part way through a machine cycle, that cycle is completed:
// its remaining T-states are counted as elapsed and a new cycle begins.
func (c *Clock) Reset() {
	if c.state != 1 {
		c.cycles += uint64(StatesPerCycle - c.state + 1)
		c.mcycle++
	}
	c.state = 1
	c.tick = 0
}

// Speed returns the number of sub-ticks per T-state.
func (c *Clock) Speed() int { return c.speed }

// Tick returns the sub-tick within the current T-state.
func (c *Clock) Tick() int { return c.tick }

// State returns the current T-state (1-4).
func (c *Clock) State() int { return c.state }

// MCycle returns the number of machine cycles started after the first.
func (c *Clock) MCycle() int { return c.mcycle }

// Cycles returns the total number of T-state boundaries crossed.
func (c *Clock) Cycles() uint64 { return c.cycles }

// Enable returns the level of the clock-enable line.
func (c *Clock) Enable() bool { return c.enable }
