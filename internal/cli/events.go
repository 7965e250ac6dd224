// events.go implements the "vigil events" command for inspecting the local
// session journal.
package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vigil-dev/vigil/internal/config"
	"github.com/vigil-dev/vigil/internal/journal"
)

var eventsLimitFlag int

var eventsCmd = &cobra.Command{
	Use:   "events [session-id]",
	Short: "Show recorded sessions and their monitoring events",
	Long: `Without arguments, list recent sessions from the local journal.
With a session id, show that session's answers and monitoring events.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().IntVar(&eventsLimitFlag, "limit", 20, "Maximum number of sessions to list")
}

func runEvents(cmd *cobra.Command, args []string) error {
	store, err := journal.NewStore(filepath.Join(config.Dir("."), "journal.db"))
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer store.Close()

	if len(args) == 1 {
		return showSession(store, args[0])
	}
	return listSessions(store)
}

func listSessions(store *journal.Store) error {
	summaries, err := store.ListSessions(eventsLimitFlag)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(summaries) == 0 {
		fmt.Println("No recorded sessions.")
		return nil
	}

	for _, s := range summaries {
		flagged := ""
		if s.Suspicious > 0 {
			flagged = fmt.Sprintf("  %d flagged", s.Suspicious)
		}
		fmt.Printf("%s  %-11s %-9s  %d answers%s  %s\n",
			s.ID, s.Variant, s.Status, s.Answers, flagged,
			s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func showSession(store *journal.Store, id string) error {
	rec, err := store.GetSession(id)
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}
	if rec == nil {
		return fmt.Errorf("no session %q in the journal", id)
	}

	fmt.Printf("Session %s (%s, %s)\n", rec.ID, rec.Variant, rec.Status)
	if rec.ServerID != "" {
		fmt.Printf("Server session: %s\n", rec.ServerID)
	}
	fmt.Printf("Started: %s\n\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))

	answers, err := store.GetAnswers(id)
	if err != nil {
		return fmt.Errorf("reading answers: %w", err)
	}
	fmt.Printf("Answers (%d):\n", len(answers))
	for _, a := range answers {
		var marks []string
		if a.Skipped {
			marks = append(marks, "skipped")
		}
		if a.Forced {
			marks = append(marks, "forced")
		}
		if a.Weak {
			marks = append(marks, "weak")
		}
		suffix := ""
		if len(marks) > 0 {
			suffix = "  [" + strings.Join(marks, ", ") + "]"
		}
		fmt.Printf("  q%d  %ds%s\n", a.QuestionID, a.ElapsedSeconds, suffix)
		if a.QuestionText != "" {
			fmt.Printf("      %s\n", a.QuestionText)
		}
	}

	events, err := store.GetEvents(id)
	if err != nil {
		return fmt.Errorf("reading events: %w", err)
	}
	fmt.Printf("\nMonitoring events (%d):\n", len(events))
	for _, e := range events {
		status := "uploaded"
		if !e.Uploaded {
			status = "dropped"
		}
		line := fmt.Sprintf("  %s  %-10s %s  motion %.3f",
			e.Timestamp.Local().Format("15:04:05"), e.EventType, status, e.MotionScore)
		if e.FacesCount >= 0 {
			line += fmt.Sprintf("  faces %d", e.FacesCount)
		}
		if e.Flags != "" {
			line += "  " + e.Flags
		}
		fmt.Println(line)
	}
	return nil
}
