// Package views provides TUI view components for the vigil application.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vigil-dev/vigil/internal/tui"
)

// maxConsentWidth is the maximum width for the consent box.
const maxConsentWidth = 70

// ConsentModel is the view model for the media consent prompt. The first
// question is withheld until the candidate decides.
type ConsentModel struct {
	retry  bool // a previous grant failed at the camera; offer another go
	width  int
	height int
}

// NewConsentModel creates a new ConsentModel.
func NewConsentModel(retry bool, width, height int) ConsentModel {
	return ConsentModel{retry: retry, width: width, height: height}
}

// Init returns the initial command for the consent view.
func (m ConsentModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the consent view.
func (m ConsentModel) Update(msg tea.Msg) (ConsentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Grant):
			return m, func() tea.Msg {
				return tui.ConsentDecisionMsg{Granted: true}
			}
		case key.Matches(msg, tui.DefaultKeyMap.Deny):
			return m, func() tea.Msg {
				return tui.ConsentDecisionMsg{Granted: false}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the consent view.
func (m ConsentModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Camera and microphone access"))
	b.WriteString("\n\n")

	if m.retry {
		b.WriteString(tui.WarningStyle.Render("The camera could not be opened."))
		b.WriteString("\n\n")
	}

	b.WriteString("This interview is proctored. While you answer questions,\n")
	b.WriteString("periodic camera snapshots are sent to the interview server\n")
	b.WriteString("and your speech may be transcribed into the answer box.\n\n")
	b.WriteString("Nothing is captured before you agree, and the camera is\n")
	b.WriteString("released the moment the session ends.\n\n")

	b.WriteString(tui.SuccessStyle.Render("  y) Allow and start the interview"))
	b.WriteString("\n")
	b.WriteString(tui.DimStyle.Render("  n) Decline and exit"))
	b.WriteString("\n")

	boxWidth := maxConsentWidth
	if m.width-4 < boxWidth {
		boxWidth = m.width - 4
	}

	return tui.BoxStyle.
		Width(boxWidth).
		Render(b.String())
}
