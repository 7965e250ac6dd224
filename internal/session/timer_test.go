package session

import "testing"

func TestTimerCountsDownAndLatches(t *testing.T) {
	tm := NewTimer(3, 10)

	prev := tm.Remaining()
	fires := 0
	for i := 0; i < 6; i++ {
		state, fired := tm.Tick()
		if state.RemainingSeconds < 0 || state.RemainingSeconds > prev {
			t.Fatalf("tick %d: remaining %d not in [0, %d]", i, state.RemainingSeconds, prev)
		}
		prev = state.RemainingSeconds
		if fired {
			fires++
			if state.RemainingSeconds != 0 {
				t.Errorf("fired with %d seconds remaining", state.RemainingSeconds)
			}
		}
	}
	if fires != 1 {
		t.Errorf("expiry fired %d times, want exactly 1", fires)
	}
	if !tm.Expired() {
		t.Error("latch should be set after expiry")
	}
}

func TestTimerResetClearsLatch(t *testing.T) {
	tm := NewTimer(1, 0)
	if _, fired := tm.Tick(); !fired {
		t.Fatal("expected expiry on first tick")
	}

	tm.Reset(2)
	if tm.Expired() {
		t.Error("Reset should clear the expiry latch")
	}
	if tm.Remaining() != 2 || tm.Allotted() != 2 {
		t.Errorf("Reset(2): remaining=%d allotted=%d", tm.Remaining(), tm.Allotted())
	}
	tm.Tick()
	if _, fired := tm.Tick(); !fired {
		t.Error("expiry should fire again after Reset")
	}
}

func TestTimerTotalLockstep(t *testing.T) {
	tm := NewTimer(5, 100)
	tm.Tick()
	tm.Tick()
	if tm.TotalRemaining() != 98 {
		t.Errorf("total = %d, want 98", tm.TotalRemaining())
	}

	// Server figure overrides the local decrement.
	tm.SetTotal(90)
	if tm.TotalRemaining() != 90 {
		t.Errorf("total = %d after SetTotal, want 90", tm.TotalRemaining())
	}

	tm.SetTotal(-1)
	if tm.TotalRemaining() != 90 {
		t.Error("negative SetTotal should be ignored")
	}
}

func TestTimerTotalNeverNegative(t *testing.T) {
	tm := NewTimer(10, 1)
	tm.Tick()
	tm.Tick()
	if tm.TotalRemaining() != 0 {
		t.Errorf("total = %d, want 0", tm.TotalRemaining())
	}
}

func TestClampAllotted(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{0, DefaultAllottedSeconds},
		{-7, DefaultAllottedSeconds},
		{10, MinAllottedSeconds},
		{30, 30},
		{45, 45},
		{180, 180},
		{600, MaxAllottedSeconds},
	}
	for _, c := range cases {
		if got := ClampAllotted(c.in); got != c.want {
			t.Errorf("ClampAllotted(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}
