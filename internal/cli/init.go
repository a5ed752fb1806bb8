package cli

import (
	"os"

	"github.com/planforge/planforge/internal/config"
	"github.com/planforge/planforge/internal/store"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new planforge workspace",
	Long: `Initialize a new planforge workspace in the current directory.

Creates .planforge/ with:
  - config.yaml     Tunable pipeline constants
  - plans/          Compiled plan records
  - extensions/     Extension records
  - audit.jsonl     Append-only audit trail`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if err := store.Init(cwd, initForce); err != nil {
			return err
		}
		if err := config.WriteDefault(cwd); err != nil {
			return err
		}
		newDisplay().Success("workspace initialized")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing workspace")
	rootCmd.AddCommand(initCmd)
}
