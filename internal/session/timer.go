package session

// Per-question allotment bounds. Server-provided allotments outside this
// band are clamped before the countdown starts.
const (
	MinAllottedSeconds     = 30
	MaxAllottedSeconds     = 180
	DefaultAllottedSeconds = 45
)

// TimerState is a snapshot of both countdowns after a tick.
type TimerState struct {
	RemainingSeconds      int
	TotalRemainingSeconds int
}

// Timer drives the per-question countdown and the whole-session budget in
// lockstep. Tick is called once per second by the UI loop; when the
// per-question countdown reaches zero the expiry latch fires exactly once,
// and stays latched until Reset arms the next question.
type Timer struct {
	allotted  int
	remaining int
	total     int
	expired   bool
}

// ClampAllotted normalizes a server-provided allotment to the accepted band,
// substituting the default when the value is absent or nonsensical.
func ClampAllotted(seconds int) int {
	if seconds <= 0 {
		return DefaultAllottedSeconds
	}
	if seconds < MinAllottedSeconds {
		return MinAllottedSeconds
	}
	if seconds > MaxAllottedSeconds {
		return MaxAllottedSeconds
	}
	return seconds
}

// NewTimer returns a timer armed for the first question. total may be zero
// when the server does not enforce a whole-session budget.
func NewTimer(allotted, total int) *Timer {
	return &Timer{allotted: allotted, remaining: allotted, total: total}
}

// Tick advances both countdowns by one second. fired is true on exactly the
// tick that crosses the per-question countdown to zero; once latched,
// further ticks return false until Reset.
func (t *Timer) Tick() (state TimerState, fired bool) {
	if t.remaining > 0 {
		t.remaining--
		if t.remaining == 0 && !t.expired {
			t.expired = true
			fired = true
		}
	}
	if t.total > 0 {
		t.total--
	}
	return TimerState{RemainingSeconds: t.remaining, TotalRemainingSeconds: t.total}, fired
}

// Reset arms the timer for a new question, clearing the expiry latch.
func (t *Timer) Reset(allotted int) {
	t.allotted = allotted
	t.remaining = allotted
	t.expired = false
}

// SetTotal overwrites the session budget with the server's authoritative
// value. Local lockstep decrements drift; the server wins.
func (t *Timer) SetTotal(seconds int) {
	if seconds >= 0 {
		t.total = seconds
	}
}

// Allotted returns the current question's full allotment.
func (t *Timer) Allotted() int { return t.allotted }

// Remaining returns seconds left for the current question.
func (t *Timer) Remaining() int { return t.remaining }

// TotalRemaining returns seconds left in the session budget.
func (t *Timer) TotalRemaining() int { return t.total }

// Expired reports whether the per-question countdown has latched.
func (t *Timer) Expired() bool { return t.expired }
