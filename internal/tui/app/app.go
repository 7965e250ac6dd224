// Package app provides the main TUI application that wires the session
// controller, camera monitor, backend client, and journal together behind
// one Bubble Tea update loop.
package app

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vigil-dev/vigil/internal/client"
	"github.com/vigil-dev/vigil/internal/config"
	"github.com/vigil-dev/vigil/internal/journal"
	"github.com/vigil-dev/vigil/internal/log"
	"github.com/vigil-dev/vigil/internal/media"
	"github.com/vigil-dev/vigil/internal/proctor"
	"github.com/vigil-dev/vigil/internal/session"
	"github.com/vigil-dev/vigil/internal/tui"
	"github.com/vigil-dev/vigil/internal/tui/commands"
	"github.com/vigil-dev/vigil/internal/tui/views"
)

// Deps are the collaborators the app drives. Journal, Snapshots, and Logger
// are optional; a nil value disables that concern without affecting the
// session.
type Deps struct {
	Cfg        *config.Config
	Variant    string // "progressive" or "fixed"
	Client     *client.Client
	Source     commands.Source
	Capability media.Capability
	Journal    *journal.Store
	Snapshots  *journal.Snapshots
	Logger     *log.Logger
}

// transcriptBuffer collects speech transcripts delivered on the engine's
// goroutine until the update loop drains them into the answer box.
type transcriptBuffer struct {
	mu    sync.Mutex
	parts []string
}

func (b *transcriptBuffer) add(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parts = append(b.parts, text)
}

func (b *transcriptBuffer) drain() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	parts := b.parts
	b.parts = nil
	return parts
}

// App is the main TUI application.
type App struct {
	model *tui.Model
	deps  Deps

	ctrl       *session.Controller
	monitor    *proctor.Monitor
	camera     media.Camera
	recognizer *media.Recognizer
	transcript transcriptBuffer

	// gen invalidates in-flight ticks: teardown bumps it, and any tick
	// carrying an older value is discarded.
	gen int

	journalID string
	torndown  bool

	// bootstrap holds the handshake result while baseline calibration runs;
	// the first question stays hidden until the identity shots are taken.
	bootstrap *tui.BootstrapResultMsg

	// pendingQuestion and pendingForced describe the submission in flight;
	// the controller has already moved on by the time the result arrives.
	pendingQuestion *session.Question
	pendingForced   bool

	consentView  views.ConsentModel
	questionView views.QuestionModel
}

// New creates the App.
func New(deps Deps) *App {
	model := tui.NewModel(deps.Cfg, config.Dir("."))
	a := &App{
		model: model,
		deps:  deps,
		ctrl:  session.NewController(),
	}
	a.consentView = views.NewConsentModel(false, model.Width, model.Height)
	a.questionView = views.NewQuestionModel(model)
	return a
}

// Init shows the consent prompt. Nothing is fetched and no device opened
// until the candidate agrees.
func (a *App) Init() tea.Cmd {
	a.ctrl.AwaitConsent()
	a.model.State = tui.StateConsent
	return nil
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		switch a.model.State {
		case tui.StateConsent:
			a.consentView, _ = a.consentView.Update(msg)
		case tui.StateQuestion:
			a.questionView, _ = a.questionView.Update(msg)
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == tui.KeyCtrlC {
			if a.model.CtrlCPending {
				a.teardown("interrupted")
				return a, tea.Quit
			}
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case tui.NoticeExpireMsg:
		a.model.Notice = tui.Notice{}
		return a, nil
	}

	switch a.model.State {
	case tui.StateConsent:
		return a.updateConsent(msg)
	case tui.StateBootstrapping:
		return a.updateBootstrapping(msg)
	case tui.StateQuestion:
		return a.updateQuestion(msg)
	case tui.StateComplete, tui.StateError:
		// Any key exits; teardown already ran.
		if _, ok := msg.(tea.KeyMsg); ok {
			return a, tea.Quit
		}
	}

	return a, nil
}

// ============================================================================
// State Update Handlers
// ============================================================================

func (a *App) updateConsent(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	a.consentView, cmd = a.consentView.Update(msg)

	if decision, ok := msg.(tui.ConsentDecisionMsg); ok {
		if !decision.Granted {
			a.logEvent(log.LogEvent{Event: log.EventConsentDenied})
			a.teardown("consent declined")
			return a, tea.Quit
		}

		a.logEvent(log.LogEvent{Event: log.EventConsentGranted})
		a.ctrl.GrantConsent()
		a.model.State = tui.StateBootstrapping
		return a, tea.Batch(
			a.model.Spinner.Tick,
			commands.AcquireCameraCmd(a.deps.Capability),
		)
	}

	return a, cmd
}

func (a *App) updateBootstrapping(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.model.Spinner, cmd = a.model.Spinner.Update(msg)
		return a, cmd

	case tui.CameraResultMsg:
		if msg.Err != nil {
			// The grant failed at the device. Offer another attempt rather
			// than killing the session.
			a.ctrl.AwaitConsent()
			a.model.State = tui.StateConsent
			a.consentView = views.NewConsentModel(true, a.model.Width, a.model.Height)
			return a, nil
		}

		a.camera = msg.Camera
		a.monitor = proctor.NewMonitor(a.camera, a.deps.Capability.FaceCounter(), a.thresholds())
		a.startRecognizer()
		return a, commands.BootstrapCmd(a.deps.Source)

	case tui.BootstrapResultMsg:
		if msg.Err != nil || msg.First == nil {
			if msg.Err == nil {
				msg.Err = fmt.Errorf("server returned no opening question")
			}
			a.fail(fmt.Errorf("opening session: %w", msg.Err))
			return a, nil
		}

		// Baseline seeding comes first: the question stays hidden and the
		// timer unarmed until the calibration shots are captured on the
		// monitoring cadence.
		a.bootstrap = &msg
		a.monitor.SetSession(msg.SessionID)
		a.openJournal(msg.SessionID)
		a.logEvent(log.LogEvent{Event: log.EventSessionStarted, SessionID: msg.SessionID})
		a.model.Calibrating = true
		return a, tea.Batch(
			a.model.Spinner.Tick,
			commands.MonitorTickCmd(a.gen, a.cadence()),
		)

	case tui.MonitorTickMsg:
		if msg.Gen != a.gen || a.monitor == nil || a.monitor.Stopped() {
			return a, nil
		}
		cmds := []tea.Cmd{commands.MonitorTickCmd(a.gen, a.cadence())}
		if cmd := a.handleMonitorTick(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		if !a.monitor.Calibrating() {
			if cmd := a.revealFirstQuestion(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return a, tea.Batch(cmds...)

	case tui.UploadResultMsg:
		return a, a.handleUploadResult(msg)
	}

	return a, nil
}

// revealFirstQuestion ends the calibration phase: the handshake result is
// applied, the first question appears, and its countdown starts.
func (a *App) revealFirstQuestion() tea.Cmd {
	if a.bootstrap == nil {
		return nil
	}
	msg := a.bootstrap
	a.bootstrap = nil

	a.ctrl.FinishBootstrap(msg.First, msg.TotalSecs, msg.Progress)
	a.monitor.SetQuestion(msg.First.ID)
	a.logEvent(log.LogEvent{Event: log.EventQuestionRevealed, SessionID: msg.SessionID, QuestionID: msg.First.ID})

	a.syncFromController()
	a.model.State = tui.StateQuestion
	a.model.Textarea.Focus()
	return commands.TimerTickCmd(a.gen)
}

func (a *App) updateQuestion(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.model.Spinner, cmd = a.model.Spinner.Update(msg)
		return a, cmd

	case tui.TimerTickMsg:
		if msg.Gen != a.gen {
			return a, nil
		}
		a.drainTranscripts()
		state, fired := a.ctrl.TimerTick()
		a.model.Timer = state

		cmds := []tea.Cmd{commands.TimerTickCmd(a.gen)}
		if fired {
			// Time is up: a non-empty draft goes out as a real answer; an
			// empty box is submitted as a skip so the backend never scores
			// a blank response.
			draft := strings.TrimSpace(a.model.Textarea.Value())
			a.logEvent(log.LogEvent{
				Event:      log.EventForcedSubmission,
				SessionID:  a.deps.Source.SessionID(),
				QuestionID: a.currentQuestionID(),
				Skipped:    draft == "",
			})
			if cmd := a.beginAdvance(draft == "", true); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return a, tea.Batch(cmds...)

	case tui.MonitorTickMsg:
		if msg.Gen != a.gen || a.monitor == nil || a.monitor.Stopped() {
			return a, nil
		}
		return a, tea.Batch(a.handleMonitorTick(), commands.MonitorTickCmd(a.gen, a.cadence()))

	case tui.UploadResultMsg:
		return a, a.handleUploadResult(msg)

	case views.SubmitRequestMsg:
		return a, a.beginAdvance(msg.Skip, false)

	case tui.AdvanceResultMsg:
		return a, a.handleAdvanceResult(msg)
	}

	var cmd tea.Cmd
	a.questionView, cmd = a.questionView.Update(msg)
	return a, cmd
}

// ============================================================================
// Session Flow
// ============================================================================

// beginAdvance claims the submission slot and schedules the network call.
// The controller's guard makes a forced and an explicit submission for the
// same question mutually exclusive.
func (a *App) beginAdvance(skip, forced bool) tea.Cmd {
	draft := strings.TrimSpace(a.model.Textarea.Value())
	ans, ok := a.ctrl.BeginAdvance(draft, skip)
	if !ok {
		return nil
	}
	a.pendingQuestion = a.ctrl.Current()
	a.pendingForced = forced
	a.model.InFlight = true
	return commands.SubmitAnswerCmd(a.deps.Source, ans)
}

func (a *App) handleAdvanceResult(msg tui.AdvanceResultMsg) tea.Cmd {
	a.ctrl.FinishAdvance(msg.Adv, msg.Err)
	a.model.InFlight = false

	if msg.Err != nil {
		a.setNotice(tui.Notice{Text: "Submission failed: " + msg.Err.Error() + " — Ctrl+S to retry", Warning: true})
		return commands.ExpireNoticeCmd()
	}

	a.recordAnswer(msg.Answer)
	a.pendingQuestion = nil
	a.pendingForced = false

	if a.ctrl.State() == session.StateCompleted {
		a.teardown("completed")
		a.setJournalStatus("completed")
		a.logEvent(log.LogEvent{Event: log.EventSessionCompleted, SessionID: a.deps.Source.SessionID()})
		a.model.State = tui.StateComplete
		return nil
	}

	// Next question revealed.
	a.syncFromController()
	a.model.Textarea.Reset()
	a.model.Textarea.Focus()
	if q := a.ctrl.Current(); q != nil {
		a.monitor.SetQuestion(q.ID)
		a.logEvent(log.LogEvent{
			Event:      log.EventQuestionRevealed,
			SessionID:  a.deps.Source.SessionID(),
			QuestionID: q.ID,
		})
	}
	return nil
}

func (a *App) recordAnswer(ans session.Answer) {
	a.logEvent(log.LogEvent{
		Event:      log.EventAnswerSubmitted,
		SessionID:  a.deps.Source.SessionID(),
		QuestionID: ans.QuestionID,
		Elapsed:    ans.ElapsedSeconds,
		Skipped:    ans.Skipped,
	})
	if a.deps.Journal == nil || a.journalID == "" {
		return
	}
	questionText := ""
	if a.pendingQuestion != nil {
		questionText = a.pendingQuestion.Text
	}
	_ = a.deps.Journal.SaveAnswer(journal.AnswerRecord{
		SessionID:      a.journalID,
		QuestionID:     ans.QuestionID,
		QuestionText:   questionText,
		AnswerText:     ans.Text,
		Skipped:        ans.Skipped,
		Forced:         a.pendingForced,
		Weak:           ans.Weak(),
		ElapsedSeconds: ans.ElapsedSeconds,
	})
}

// ============================================================================
// Monitoring Flow
// ============================================================================

func (a *App) handleMonitorTick() tea.Cmd {
	ev, err := a.monitor.Tick(time.Now())
	if err != nil {
		// Camera trouble is reported but never interrupts the interview.
		a.setNotice(tui.Notice{Text: "Camera read failed", Warning: true})
		return commands.ExpireNoticeCmd()
	}
	a.model.Calibrating = a.monitor.Calibrating()
	if ev == nil {
		return nil
	}

	a.model.LastEventType = string(ev.Type)
	if !a.monitor.BeginUpload(ev.CapturedAt) {
		// A submission is in flight or uploads are paused: the newer event
		// is dropped, never queued.
		a.saveEventRecord(ev, false)
		return nil
	}
	return commands.UploadFrameCmd(a.deps.Client, a.gen, ev)
}

func (a *App) handleUploadResult(msg tui.UploadResultMsg) tea.Cmd {
	if a.monitor == nil {
		return nil
	}
	a.monitor.FinishUpload(msg.Err == nil)
	if msg.Gen != a.gen {
		return nil
	}

	if msg.Err != nil {
		a.saveEventRecord(msg.Event, false)
		a.logEvent(log.LogEvent{
			Event:     log.EventUploadFailed,
			SessionID: msg.Event.SessionID,
			EventType: string(msg.Event.Type),
			Error:     msg.Err.Error(),
		})
		if a.monitor.Breaker().Paused() && !a.model.UploadsPaused {
			a.model.UploadsPaused = true
			a.logEvent(log.LogEvent{Event: log.EventUploadsPaused, SessionID: msg.Event.SessionID})
		}
		a.setNotice(tui.Notice{Text: "Monitoring upload failed", Warning: true})
		return commands.ExpireNoticeCmd()
	}

	a.model.UploadsPaused = false
	a.saveEventRecord(msg.Event, true)
	a.saveSnapshot(msg.Event)

	event := log.LogEvent{
		Event:       log.EventFrameUploaded,
		SessionID:   msg.Event.SessionID,
		QuestionID:  msg.Event.QuestionID,
		EventType:   string(msg.Event.Type),
		MotionScore: msg.Event.MotionScore,
		FacesCount:  msg.Event.FaceCount,
	}
	if msg.Event.Type == proctor.EventBaseline {
		event.Event = log.EventBaselineCaptured
	}
	a.logEvent(event)

	// The server may re-classify; its verdict wins for display.
	if msg.Result != nil && msg.Result.Suspicious {
		a.model.SuspiciousHits++
		a.model.LastEventType = msg.Result.EventType
		a.setNotice(tui.Notice{Text: "Monitoring flagged this moment for review", Warning: true})
		return commands.ExpireNoticeCmd()
	}
	return nil
}

func (a *App) saveEventRecord(ev *proctor.MonitoringEvent, uploaded bool) {
	if a.deps.Journal == nil || a.journalID == "" || ev == nil {
		return
	}
	_ = a.deps.Journal.SaveEvent(journal.EventRecord{
		SessionID:   a.journalID,
		EventType:   string(ev.Type),
		MotionScore: ev.MotionScore,
		FacesCount:  ev.FaceCount,
		Flags:       strings.Join(ev.Flags.Names(), ","),
		Uploaded:    uploaded,
	})
}

func (a *App) saveSnapshot(ev *proctor.MonitoringEvent) {
	if a.deps.Snapshots == nil || ev == nil {
		return
	}
	// Only identity and anomaly shots are kept; periodic traffic would fill
	// the disk for no review value.
	if ev.Type != proctor.EventBaseline && ev.Type != proctor.EventSuspicious {
		return
	}
	img, err := commands.EncodeFrame(ev.Image, ev.Width, ev.Height)
	if err != nil {
		return
	}
	_, _ = a.deps.Snapshots.Save(a.deps.Source.SessionID(), string(ev.Type), ev.CapturedAt, img)
}

// ============================================================================
// Lifecycle
// ============================================================================

func (a *App) startRecognizer() {
	a.recognizer = a.deps.Capability.Recognizer()
	if a.recognizer == nil {
		return
	}
	_ = a.recognizer.Start(a.transcript.add)
}

// drainTranscripts appends speech-to-text fragments to the answer box.
func (a *App) drainTranscripts() {
	for _, part := range a.transcript.drain() {
		if a.model.Textarea.Value() != "" {
			a.model.Textarea.InsertString(" ")
		}
		a.model.Textarea.InsertString(part)
	}
}

// teardown releases every capture resource. Safe to call more than once.
// Order matters: the monitor loop dies first (gen bump plus Stop), then the
// recognizer — whose Stop clears its restart latch before touching the
// engine — and the camera last.
func (a *App) teardown(reason string) {
	if a.torndown {
		return
	}
	a.torndown = true
	a.gen++

	if a.monitor != nil {
		a.monitor.Stop()
	}
	if a.recognizer != nil {
		a.recognizer.Stop()
	}
	if a.camera != nil {
		_ = a.camera.Release()
	}
	a.logEvent(log.LogEvent{Event: log.EventTeardown, Reason: reason})
}

func (a *App) fail(err error) {
	a.teardown("error")
	a.ctrl.Fail(err)
	a.model.Err = err
	a.model.State = tui.StateError
	a.setJournalStatus("error")
	a.logEvent(log.LogEvent{Event: log.EventSessionError, Error: err.Error()})
}

// ============================================================================
// Helpers
// ============================================================================

func (a *App) syncFromController() {
	a.model.Current = a.ctrl.Current()
	a.model.Progress = a.ctrl.Progress()
	a.model.Timer = session.TimerState{
		RemainingSeconds:      a.ctrl.Timer().Remaining(),
		TotalRemainingSeconds: a.ctrl.Timer().TotalRemaining(),
	}
}

func (a *App) currentQuestionID() int64 {
	if q := a.ctrl.Current(); q != nil {
		return q.ID
	}
	return 0
}

func (a *App) setNotice(n tui.Notice) {
	a.model.Notice = n
}

func (a *App) thresholds() proctor.Thresholds {
	t := proctor.DefaultThresholds()
	if m := a.deps.Cfg.Monitor; m.MotionThreshold > 0 {
		t.Motion = m.MotionThreshold
	}
	if m := a.deps.Cfg.Monitor; m.PeriodicSaveSeconds > 0 {
		t.PeriodicInterval = time.Duration(m.PeriodicSaveSeconds) * time.Second
	}
	if m := a.deps.Cfg.Monitor; m.BaselineShots > 0 {
		t.BaselineShots = m.BaselineShots
	}
	if m := a.deps.Cfg.Monitor; m.UploadFailureLimit > 0 {
		t.UploadFailureLimit = m.UploadFailureLimit
	}
	if m := a.deps.Cfg.Monitor; m.UploadRetrySeconds > 0 {
		t.UploadRetryCooldown = time.Duration(m.UploadRetrySeconds) * time.Second
	}
	return t
}

func (a *App) cadence() time.Duration {
	if ms := a.deps.Cfg.Monitor.CadenceMs; ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return proctor.DefaultCadence
}

func (a *App) openJournal(serverID string) {
	if a.deps.Journal == nil {
		return
	}
	if rec, err := a.deps.Journal.CreateSession(a.deps.Variant, serverID); err == nil {
		a.journalID = rec.ID
	}
}

func (a *App) setJournalStatus(status string) {
	if a.deps.Journal == nil || a.journalID == "" {
		return
	}
	_ = a.deps.Journal.SetSessionStatus(a.journalID, status)
}

func (a *App) logEvent(ev log.LogEvent) {
	if a.deps.Logger == nil {
		return
	}
	_ = a.deps.Logger.Append(ev)
}

// ============================================================================
// View
// ============================================================================

// View renders the current application state.
func (a *App) View() string {
	var content string

	switch a.model.State {
	case tui.StateConsent:
		content = a.consentView.View()
	case tui.StateBootstrapping:
		content = a.renderBootstrapView()
	case tui.StateQuestion:
		content = a.questionView.View()
	case tui.StateComplete:
		content = a.renderCompleteView()
	case tui.StateError:
		content = a.renderErrorView()
	default:
		content = "Unknown state"
	}

	if a.model.CtrlCPending {
		hint := tui.WarningStyle.Render("Press Ctrl+C again to exit")
		content = lipgloss.JoinVertical(lipgloss.Center, content, "", hint)
	}

	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

func (a *App) renderBootstrapView() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Preparing your interview..."))
	b.WriteString("\n\n")

	if a.bootstrap != nil {
		b.WriteString(fmt.Sprintf("%s Capturing baseline snapshots...", a.model.Spinner.View()))
		b.WriteString("\n\n")
		b.WriteString(tui.DimStyle.Render("  Stay centered in front of the camera."))
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render("  Your first question appears in a moment."))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("%s Connecting to the interview server...", a.model.Spinner.View()))
		b.WriteString("\n\n")
		hints := []string{
			"Opening the camera",
			"Requesting your first question",
		}
		for _, hint := range hints {
			b.WriteString(tui.DimStyle.Render("  - " + hint))
			b.WriteString("\n")
		}
	}

	return a.boxed(b.String(), 70)
}

func (a *App) renderCompleteView() string {
	var b strings.Builder

	b.WriteString(tui.SuccessStyle.Render("Interview complete!"))
	b.WriteString("\n\n")
	if a.model.Progress.MaxQuestions > 0 {
		b.WriteString(fmt.Sprintf("Questions answered: %d of %d\n", a.model.Progress.QuestionNumber, a.model.Progress.MaxQuestions))
	}
	if a.model.SuspiciousHits > 0 {
		b.WriteString(tui.WarningStyle.Render(fmt.Sprintf("Flagged moments: %d\n", a.model.SuspiciousHits)))
	}
	b.WriteString("\nYour answers have been recorded. The camera is off.\n")
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Press any key to exit..."))

	return a.boxed(b.String(), 70)
}

func (a *App) renderErrorView() string {
	var b strings.Builder

	b.WriteString(tui.ErrorStyle.Render("Session error"))
	b.WriteString("\n\n")
	if a.model.Err != nil {
		b.WriteString(a.model.Err.Error())
		b.WriteString("\n")
	}
	b.WriteString("\nThe camera has been released and nothing further is recorded.\n")
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("Press any key to exit..."))

	return a.boxed(b.String(), 70)
}

func (a *App) boxed(content string, maxWidth int) string {
	boxWidth := maxWidth
	if a.model.Width-4 < boxWidth {
		boxWidth = a.model.Width - 4
	}
	return tui.BoxStyle.
		Width(boxWidth).
		Render(content)
}
