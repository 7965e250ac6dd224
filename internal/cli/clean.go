// clean.go implements the "vigil clean" command for snapshot cleanup.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vigil-dev/vigil/internal/cleanup"
	"github.com/vigil-dev/vigil/internal/config"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old session snapshot directories",
	Long: `Remove old snapshot directories from .vigil/sessions/.

By default, removes sessions older than the configured max_age_days
(default 30). Use --keep to keep only the N most recent sessions
instead. Use --dry-run to preview what would be removed.`,
	RunE: runClean,
}

var (
	keepFlag   int
	dryRunFlag bool
)

func init() {
	cleanCmd.Flags().IntVar(&keepFlag, "keep", 0, "Keep only the last N sessions (0 = use age-based cleanup)")
	cleanCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Preview what would be removed without deleting")
}

func runClean(cmd *cobra.Command, args []string) error {
	stateDir := config.Dir(".")
	if _, err := os.Stat(stateDir); os.IsNotExist(err) {
		fmt.Println("No .vigil/ directory; nothing to clean.")
		return nil
	}

	sessionsDir := filepath.Join(stateDir, "sessions")

	var pruned []string
	var err error

	if keepFlag > 0 {
		pruned, err = cleanup.PruneKeepRecent(sessionsDir, keepFlag, dryRunFlag)
	} else {
		cfg, cfgErr := config.Load(".")
		if cfgErr != nil {
			return fmt.Errorf("reading config: %w", cfgErr)
		}

		maxAge := cfg.Retention.MaxAgeDays
		if maxAge <= 0 {
			maxAge = 30
		}
		pruned, err = cleanup.PruneByAge(sessionsDir, maxAge, dryRunFlag)
	}

	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	if len(pruned) == 0 {
		fmt.Println("No sessions to clean up.")
		return nil
	}

	verb := "Removed"
	if dryRunFlag {
		verb = "Would remove"
	}

	for _, name := range pruned {
		fmt.Printf("  %s %s\n", verb, name)
	}
	fmt.Printf("%s %d session(s).\n", verb, len(pruned))

	return nil
}
