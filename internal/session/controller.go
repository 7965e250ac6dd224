package session

// State is a phase of the interview session lifecycle.
type State int

const (
	// StateBootstrapping covers config load, camera probe, and the backend
	// handshake. No question is visible yet.
	StateBootstrapping State = iota
	// StateAwaitingConsent shows the media consent prompt. No question has
	// been fetched and no camera opened until the user decides.
	StateAwaitingConsent
	// StateQuestionActive is the steady state: a question on screen, the
	// countdown running, monitoring live.
	StateQuestionActive
	// StateSubmitting means an answer is in flight. The session accepts no
	// further submission triggers until the source responds.
	StateSubmitting
	// StateCompleted is terminal: the source signalled the session is done.
	StateCompleted
	// StateError is terminal: an unrecoverable failure occurred.
	StateError
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateAwaitingConsent:
		return "awaiting_consent"
	case StateQuestionActive:
		return "question_active"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Controller is the session state machine. It is synchronous and unlocked:
// all calls happen on the UI loop. Submission is two-phase — BeginAdvance
// claims the in-flight slot and yields the answer to send, FinishAdvance
// applies the source's verdict — so a timer expiry and an explicit submit
// can never both produce an answer for the same question.
type Controller struct {
	state    State
	timer    *Timer
	current  *Question
	progress Progress
	err      error
}

// NewController returns a controller in StateBootstrapping.
func NewController() *Controller {
	return &Controller{state: StateBootstrapping, timer: NewTimer(0, 0)}
}

// AwaitConsent moves to the media consent prompt. Nothing is fetched and no
// capture device is touched until the user grants access.
func (c *Controller) AwaitConsent() {
	if c.state != StateBootstrapping {
		return
	}
	c.state = StateAwaitingConsent
}

// GrantConsent returns to bootstrapping so the camera can be opened and the
// opening handshake performed.
func (c *Controller) GrantConsent() {
	if c.state != StateAwaitingConsent {
		return
	}
	c.state = StateBootstrapping
}

// FinishBootstrap records the opening handshake result, reveals the first
// question, and starts its countdown.
func (c *Controller) FinishBootstrap(first *Question, totalSeconds int, progress Progress) {
	if c.state != StateBootstrapping || first == nil {
		return
	}
	c.current = first
	c.progress = progress
	c.timer = NewTimer(ClampAllotted(first.AllottedSeconds), totalSeconds)
	c.state = StateQuestionActive
}

// TimerTick advances the countdowns by one second. fired is true only when
// the per-question expiry latches while a question is active and no answer
// is already in flight: that is the single trigger for a forced submission.
func (c *Controller) TimerTick() (state TimerState, fired bool) {
	switch c.state {
	case StateQuestionActive:
		return c.timer.Tick()
	case StateSubmitting:
		// The session budget keeps draining while an answer is in flight,
		// but an expiry during flight must not force a second submission.
		state, _ = c.timer.Tick()
		return state, false
	default:
		return TimerState{
			RemainingSeconds:      c.timer.Remaining(),
			TotalRemainingSeconds: c.timer.TotalRemaining(),
		}, false
	}
}

// BeginAdvance claims the submission slot for the current question and
// returns the answer to deliver. ok is false when no question is active or
// an answer is already in flight; callers must not submit in that case.
func (c *Controller) BeginAdvance(draft string, skip bool) (ans Answer, ok bool) {
	if c.state != StateQuestionActive || c.current == nil {
		return Answer{}, false
	}
	elapsed := c.timer.Allotted()
	if !skip {
		elapsed = c.timer.Allotted() - c.timer.Remaining()
		if elapsed < 1 {
			elapsed = 1
		}
		if elapsed > c.timer.Allotted() {
			elapsed = c.timer.Allotted()
		}
	}
	c.state = StateSubmitting
	return Answer{
		QuestionID:     c.current.ID,
		Text:           draft,
		Skipped:        skip,
		ElapsedSeconds: elapsed,
	}, true
}

// FinishAdvance applies the source's response to a submission started with
// BeginAdvance. A source error releases the slot and returns to the active
// question so the answer can be retried; success either reveals the next
// question or completes the session — completion happens only on the
// source's explicit signal, never by local counting.
func (c *Controller) FinishAdvance(adv Advance, err error) {
	if c.state != StateSubmitting {
		return
	}
	if err != nil {
		c.state = StateQuestionActive
		return
	}
	if adv.RemainingTotalSeconds > 0 {
		c.timer.SetTotal(adv.RemainingTotalSeconds)
	}
	if adv.Progress.MaxQuestions > 0 {
		c.progress = adv.Progress
	}
	if adv.Completed {
		c.state = StateCompleted
		c.current = nil
		return
	}
	c.current = adv.Next
	allotted := adv.Next.AllottedSeconds
	if adv.TimeLimitSeconds > 0 {
		allotted = adv.TimeLimitSeconds
	}
	c.timer.Reset(ClampAllotted(allotted))
	c.state = StateQuestionActive
}

// Fail moves to the terminal error state from anywhere.
func (c *Controller) Fail(err error) {
	if c.state == StateCompleted || c.state == StateError {
		return
	}
	c.err = err
	c.state = StateError
}

// State returns the current lifecycle phase.
func (c *Controller) State() State { return c.state }

// Current returns the active question, nil outside question states.
func (c *Controller) Current() *Question { return c.current }

// Progress returns the last known question-sequence position.
func (c *Controller) Progress() Progress { return c.progress }

// Timer exposes the countdown for display.
func (c *Controller) Timer() *Timer { return c.timer }

// Err returns the failure recorded by Fail, nil otherwise.
func (c *Controller) Err() error { return c.err }
