package cmd

import (
	"github.com/spf13/cobra"
)

var (
	stopDaemon bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Pause message processing, or shut the agent down",
	Long: `
Pause processing in the running agent. Messages keep arriving but are
dropped until a later "spyglass run" resumes. With --daemon the whole
agent shuts down instead.

Examples:
  spyglass stop           # pause processing
  spyglass stop --daemon  # terminate the agent
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if stopDaemon {
			return callAgent("daemon_shutdown", nil)
		}
		return callAgent("sniffer_stop", nil)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Resume message processing in a paused agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("sniffer_start", nil)
	},
}

func init() {
	stopCmd.Flags().BoolVar(&stopDaemon, "daemon", false, "shut the whole agent down")
	rootCmd.AddCommand(runCmd)
}
