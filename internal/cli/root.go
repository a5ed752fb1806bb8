package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "planforge",
	Short: "Goal-to-plan compiler and governed execution engine",
	Long: `Planforge turns a free-text goal into a structured, multi-phase
execution plan, runs that plan under governance oversight, and can
extend a finished plan with new capabilities without corrupting prior
work.

Get started:
  planforge init                   Initialize a workspace
  planforge plan "your goal"       Compile a goal into a plan
  planforge run <plan-id>          Execute a compiled plan
  planforge extend <plan-id> ...   Apply a goal increment to a finished plan`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.SetVersionTemplate(fmt.Sprintf("planforge version %s\n", version))
}
