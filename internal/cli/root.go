// Package cli defines Cobra command definitions for the vigil CLI.
// This file contains the root command, which runs an interview session.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vigil-dev/vigil/internal/client"
	"github.com/vigil-dev/vigil/internal/config"
	"github.com/vigil-dev/vigil/internal/journal"
	"github.com/vigil-dev/vigil/internal/log"
	"github.com/vigil-dev/vigil/internal/media"
	"github.com/vigil-dev/vigil/internal/tui"
	"github.com/vigil-dev/vigil/internal/tui/app"
	"github.com/vigil-dev/vigil/internal/tui/commands"
)

var (
	resultFlag   string
	tokenFlag    string
	simFacesFlag int
	version      = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Proctored technical interview client",
	Long: `Vigil runs a timed, camera-proctored interview session in the
terminal. Questions arrive one at a time from the interview server,
each with its own countdown; periodic camera snapshots and anomaly
frames are uploaded for review while you answer.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runInterview,
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&resultFlag, "result", "", "Screening result id to attach the session to")
	rootCmd.Flags().StringVar(&tokenFlag, "token", "", "Invite token for a fixed-list interview")
	rootCmd.Flags().IntVar(&simFacesFlag, "sim-faces", -1, "Synthetic camera: constant face count (-1 disables face detection)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(cleanCmd)
}

func runInterview(cmd *cobra.Command, args []string) error {
	if !tui.IsTTY() {
		fmt.Println("An interview session needs an interactive terminal.")
		fmt.Println("Use 'vigil events' to inspect past sessions.")
		return nil
	}

	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	stateDir := config.Dir(".")
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}

	c := client.New(cfg.Server.URL, client.WithAuthToken(cfg.Server.AuthToken))

	var src commands.Source
	variant := "progressive"
	if tokenFlag != "" {
		src = client.NewFixedSource(c, tokenFlag)
		variant = "fixed"
	} else {
		src = client.NewProgressiveSource(c, client.StartRequest{
			ResultID:           resultFlag,
			PerQuestionSeconds: cfg.Session.PerQuestionSeconds,
			TotalTimeSeconds:   cfg.Session.TotalTimeSeconds,
			MaxQuestions:       cfg.Session.MaxQuestions,
		})
	}

	// TODO: add a V4L2 capture backend; the synthetic camera is the only
	// frame source for now.
	capability := media.NewSimCapability()
	capability.Faces = simFacesFlag

	store, err := journal.NewStore(filepath.Join(stateDir, "journal.db"))
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer store.Close()

	logger, err := log.NewLogger(".")
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}

	tuiApp := app.New(app.Deps{
		Cfg:        cfg,
		Variant:    variant,
		Client:     c,
		Source:     src,
		Capability: capability,
		Journal:    store,
		Snapshots:  journal.NewSnapshots(filepath.Join(stateDir, "sessions")),
		Logger:     logger,
	})
	return tui.Run(tuiApp)
}
