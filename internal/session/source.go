package session

import "context"

// Advance is what the question source reports after an answer lands: either
// the next question or the completion signal, plus the server's
// authoritative timing and progress figures. Next and Completed are
// mutually exclusive; zero-valued timing fields mean "no update".
type Advance struct {
	Next                  *Question
	Completed             bool
	TimeLimitSeconds      int
	RemainingTotalSeconds int
	Progress              Progress
}

// Source produces questions and accepts answers. The two variants — a
// server-generated progressive stream and a fixed pre-assigned list — sit
// behind this one interface so the controller never branches on which it
// is driving.
type Source interface {
	// Start opens the session and returns the first question along with
	// the session budget in seconds (zero when unenforced).
	Start(ctx context.Context) (first *Question, totalSeconds int, progress Progress, err error)

	// Submit delivers an answer and reports what comes next. A returned
	// error means the answer did not land; the caller may retry it.
	Submit(ctx context.Context, ans Answer) (Advance, error)
}
