package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent status and counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("status", nil)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the agent's message counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("reset", nil)
	},
}
