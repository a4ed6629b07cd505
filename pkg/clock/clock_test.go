package clock

import "testing"

func TestAdvanceWraps(t *testing.T) {
	c := New(1)
	want := []int{2, 3, 4, 1, 2, 3, 4, 1}
	for i, w := range want {
		if !c.Advance() {
			t.Fatalf("step %d: no edge at speed 1", i)
		}
		if c.State() != w {
			t.Errorf("step %d: state %d, want %d", i, c.State(), w)
		}
		if c.State() < 1 || c.State() > StatesPerCycle {
			t.Fatalf("state out of range: %d", c.State())
		}
	}
	if c.MCycle() != 2 {
		t.Errorf("mcycle = %d, want 2", c.MCycle())
	}
	if c.Cycles() != uint64(len(want)) {
		t.Errorf("cycles = %d, want %d", c.Cycles(), len(want))
	}
}

func TestSpeedDivides(t *testing.T) {
	c := New(3)
	edges := 0
	for i := 0; i < 12; i++ {
		if c.Advance() {
			edges++
		}
	}
	if edges != 4 {
		t.Errorf("edges = %d, want 4", edges)
	}
	if c.State() != 1 || c.MCycle() != 1 {
		t.Errorf("state %d mcycle %d, want T1 of M1", c.State(), c.MCycle())
	}

	if New(0).Speed() != 1 {
		t.Error("speed below 1 not clamped")
	}
}

func TestEnableTogglesAtT3(t *testing.T) {
	c := New(1)
	c.Advance() // T2
	if c.Enable() {
		t.Fatal("enable set before T3")
	}
	c.Advance() // T3
	if !c.Enable() {
		t.Fatal("enable not toggled entering T3")
	}
	c.Advance() // T4
	c.Advance() // T1
	c.Advance() // T2
	c.Advance() // T3
	if c.Enable() {
		t.Error("enable not toggled back on second T3")
	}
}

func TestReset(t *testing.T) {
	c := New(2)
	c.Reset()
	if c.MCycle() != 0 {
		t.Errorf("reset at T1 counted a machine cycle")
	}

	c.Advance()
	c.Advance() // T2
	c.Advance() // half way
	c.Reset()
	if c.State() != 1 || c.Tick() != 0 {
		t.Errorf("after reset: state %d tick %d", c.State(), c.Tick())
	}
	if c.MCycle() != 1 || c.Cycles() != StatesPerCycle {
		t.Errorf("mcycle %d cycles %d, want 1, %d", c.MCycle(), c.Cycles(), StatesPerCycle)
	}
}

// TestResetMidT4 resets half way through T4 and checks that the machine
// cycle is counted in full, as if the clock had wrapped by itself.
func TestResetMidT4(t *testing.T) {
	for _, speed := range []int{2, 3, 7} {
		c := New(speed)
		for i := 0; i < 3*speed+1; i++ {
			c.Advance()
		}
		if c.State() != 4 || c.Tick() != 1 {
			t.Fatalf("speed %d: state %d tick %d, want T4 tick 1", speed, c.State(), c.Tick())
		}
		c.Reset()

		ref := New(speed)
		for i := 0; i < 4*speed; i++ {
			ref.Advance()
		}
		if c.State() != ref.State() || c.Cycles() != ref.Cycles() || c.MCycle() != ref.MCycle() {
			t.Errorf("speed %d: reset gives T%d cycles %d mcycle %d, wrap gives T%d cycles %d mcycle %d",
				speed, c.State(), c.Cycles(), c.MCycle(), ref.State(), ref.Cycles(), ref.MCycle())
		}
	}
}
