// init.go implements the "vigil init" command that writes a starter config.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vigil-dev/vigil/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .vigil/ with a default configuration",
	Long: `Create the .vigil/ state directory and write a default config.yaml.
Edit it to point at your interview server, or set VIGIL_SERVER_URL and
VIGIL_AUTH_TOKEN in the environment or a .env file.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(config.Dir("."), "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := config.WriteConfig(".", config.DefaultConfig()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Set server.url (or VIGIL_SERVER_URL) before starting an interview.")
	return nil
}
