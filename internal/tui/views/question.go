package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vigil-dev/vigil/internal/tui"
)

// maxQuestionWidth is the maximum width for the question box.
const maxQuestionWidth = 90

// SubmitRequestMsg asks the app to submit the current draft. Skip leaves the
// draft behind and reports the question as passed over.
type SubmitRequestMsg struct {
	Skip bool
}

// QuestionModel is the view model for the active-question screen. It renders
// from the shared model, which the app keeps current with timer ticks and
// monitoring results.
type QuestionModel struct {
	model *tui.Model
}

// NewQuestionModel creates a QuestionModel over the shared model.
func NewQuestionModel(m *tui.Model) QuestionModel {
	return QuestionModel{model: m}
}

// Init focuses the answer box.
func (m QuestionModel) Init() tea.Cmd {
	m.model.Textarea.Focus()
	return nil
}

// Update handles messages for the question view.
func (m QuestionModel) Update(msg tea.Msg) (QuestionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Submit):
			if m.model.InFlight {
				return m, nil
			}
			return m, func() tea.Msg { return SubmitRequestMsg{} }
		case key.Matches(msg, tui.DefaultKeyMap.Skip):
			if m.model.InFlight {
				return m, nil
			}
			return m, func() tea.Msg { return SubmitRequestMsg{Skip: true} }
		}

	case tea.WindowSizeMsg:
		m.model.Width = msg.Width
		m.model.Height = msg.Height
		m.model.Textarea.SetWidth(min(msg.Width-10, maxQuestionWidth-8))
		return m, nil
	}

	var cmd tea.Cmd
	m.model.Textarea, cmd = m.model.Textarea.Update(msg)
	return m, cmd
}

// View renders the question view.
func (m QuestionModel) View() string {
	mdl := m.model
	var b strings.Builder

	// Header: progress through the question sequence.
	header := "Interview"
	if mdl.Progress.MaxQuestions > 0 {
		header = fmt.Sprintf("Question %d of %d", mdl.Progress.QuestionNumber, mdl.Progress.MaxQuestions)
	}
	b.WriteString(tui.TitleStyle.Render(header))
	if q := mdl.Current; q != nil && q.Topic != "" {
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("  %s · %s", q.Topic, q.Difficulty)))
	}
	b.WriteString("\n\n")

	if q := mdl.Current; q != nil {
		b.WriteString(tui.QuestionStyle.Render(q.Text))
		b.WriteString("\n\n")
	}

	// Countdown bar plus numeric remainder.
	b.WriteString(m.renderCountdown())
	b.WriteString("\n\n")

	b.WriteString(mdl.Textarea.View())
	b.WriteString("\n\n")

	// Monitoring status and transient notice.
	b.WriteString(m.renderMonitorLine())
	if mdl.Notice.Text != "" {
		b.WriteString("\n")
		if mdl.Notice.Warning {
			b.WriteString(tui.WarningStyle.Render(mdl.Notice.Text))
		} else {
			b.WriteString(tui.DimStyle.Render(mdl.Notice.Text))
		}
	}
	b.WriteString("\n\n")

	// Footer
	if mdl.InFlight {
		b.WriteString(tui.DimStyle.Render(mdl.Spinner.View() + " Submitting..."))
	} else {
		b.WriteString(tui.DimStyle.Render("Ctrl+S submit · Ctrl+K skip · Ctrl+C exit"))
	}

	boxWidth := maxQuestionWidth
	if mdl.Width-4 < boxWidth {
		boxWidth = mdl.Width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}

func (m QuestionModel) renderCountdown() string {
	mdl := m.model
	allotted := 0
	if mdl.Current != nil {
		allotted = mdl.Current.AllottedSeconds
	}

	frac := 0.0
	if allotted > 0 {
		frac = float64(mdl.Timer.RemainingSeconds) / float64(allotted)
	}

	remaining := fmt.Sprintf("%d:%02d", mdl.Timer.RemainingSeconds/60, mdl.Timer.RemainingSeconds%60)
	if mdl.Timer.RemainingSeconds <= 10 {
		remaining = tui.ErrorStyle.Render(remaining)
	} else {
		remaining = tui.DimStyle.Render(remaining)
	}

	line := mdl.Countdown.ViewAs(frac) + "  " + remaining
	if mdl.Timer.TotalRemainingSeconds > 0 {
		line += tui.DimStyle.Render(fmt.Sprintf("   session %d:%02d",
			mdl.Timer.TotalRemainingSeconds/60, mdl.Timer.TotalRemainingSeconds%60))
	}
	return line
}

func (m QuestionModel) renderMonitorLine() string {
	mdl := m.model

	icon := tui.MonitorOK
	label := "monitoring"
	switch {
	case mdl.UploadsPaused:
		icon = tui.MonitorPaused
		label = "monitoring paused (upload failures)"
	case mdl.Calibrating:
		icon = tui.MonitorCalibrating
		label = "calibrating baseline"
	case mdl.LastEventType == "suspicious":
		icon = tui.MonitorFlagged
		label = "anomaly reported"
	}

	line := icon + " " + tui.DimStyle.Render(label)
	if mdl.SuspiciousHits > 0 {
		line += tui.DimStyle.Render(fmt.Sprintf(" · %d flagged", mdl.SuspiciousHits))
	}
	return line
}
