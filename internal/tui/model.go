// Package tui implements the terminal user interface using Bubble Tea.
package tui

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"

	"github.com/vigil-dev/vigil/internal/config"
	"github.com/vigil-dev/vigil/internal/session"
)

// ViewState represents the screen currently shown. It tracks the session
// controller's phase plus the consent prompt, which is a UI concern.
type ViewState int

const (
	StateBootstrapping ViewState = iota
	StateConsent
	StateQuestion
	StateComplete
	StateError
)

// Notice is a transient status line shown under the question view, used for
// monitoring verdicts and upload failures.
type Notice struct {
	Text    string
	Warning bool
}

// Model is the main TUI model that holds shared application state.
type Model struct {
	// State management
	State ViewState
	Err   error

	// Configuration
	Cfg      *config.Config
	StateDir string

	// Session presentation state
	Current  *session.Question
	Progress session.Progress
	Timer    session.TimerState
	InFlight bool // an answer is traveling to the backend
	Notice   Notice

	// Monitoring presentation state
	Calibrating    bool
	UploadsPaused  bool
	LastEventType  string
	SuspiciousHits int

	// Bubbles components
	Textarea  textarea.Model
	Spinner   spinner.Model
	Countdown progress.Model

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool // True when waiting for second Ctrl+C press
}

// NewModel creates a new Model with the given configuration.
func NewModel(cfg *config.Config, stateDir string) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type your answer..."
	ta.CharLimit = 5000
	ta.SetWidth(80)
	ta.SetHeight(6)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	pb := progress.New(progress.WithDefaultGradient())
	pb.Width = 60

	return &Model{
		State:    StateBootstrapping,
		Cfg:      cfg,
		StateDir: stateDir,

		Textarea:  ta,
		Spinner:   sp,
		Countdown: pb,

		// Default dimensions (will be updated on WindowSizeMsg)
		Width:  80,
		Height: 24,
	}
}
