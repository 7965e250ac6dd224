// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/vigil-dev/vigil/internal/client"
	"github.com/vigil-dev/vigil/internal/media"
	"github.com/vigil-dev/vigil/internal/proctor"
	"github.com/vigil-dev/vigil/internal/session"
)

// ============================================================================
// Bootstrap Messages
// ============================================================================

// CameraResultMsg carries the outcome of the camera acquisition attempt.
type CameraResultMsg struct {
	Camera media.Camera
	Err    error
}

// BootstrapResultMsg carries the outcome of the opening backend handshake.
type BootstrapResultMsg struct {
	First     *session.Question
	TotalSecs int
	Progress  session.Progress
	SessionID string
	Err       error
}

// ConsentDecisionMsg records the user's answer to the media consent prompt.
type ConsentDecisionMsg struct {
	Granted bool
}

// ============================================================================
// Timer and Monitor Messages
// ============================================================================

// TimerTickMsg arrives once per second while a question is active. Gen is
// compared against the app's generation counter so ticks from a torn-down
// session are discarded.
type TimerTickMsg struct {
	Gen int
}

// MonitorTickMsg arrives on the monitoring cadence. Same generation rule as
// TimerTickMsg.
type MonitorTickMsg struct {
	Gen int
}

// UploadResultMsg carries the outcome of one frame upload.
type UploadResultMsg struct {
	Gen    int
	Event  *proctor.MonitoringEvent
	Result *client.UploadResult
	Err    error
}

// ============================================================================
// Session Messages
// ============================================================================

// AdvanceResultMsg carries the backend's verdict on a submitted answer.
type AdvanceResultMsg struct {
	Answer session.Answer
	Adv    session.Advance
	Err    error
}

// ============================================================================
// Utility Messages
// ============================================================================

// NoticeExpireMsg clears the transient status line.
type NoticeExpireMsg struct{}

// CtrlCResetMsg resets the Ctrl+C confirmation state after timeout.
type CtrlCResetMsg struct{}
