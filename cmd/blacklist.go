package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spyglass-tools/spyglass/internal/command"
)

var blacklistCmd = &cobra.Command{
	Use:   "blacklist",
	Short: "Manage the message blacklist",
}

var blacklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List blacklist entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("blacklist_list", nil)
	},
}

var blacklistAddCmd = &cobra.Command{
	Use:   "add <name|opcode>",
	Short: "Add an entry to the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("blacklist_add", command.BlacklistParams{Entry: args[0]})
	},
}

var blacklistRemoveCmd = &cobra.Command{
	Use:   "remove <name|opcode>",
	Short: "Remove an entry from the blacklist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("blacklist_remove", command.BlacklistParams{Entry: args[0]})
	},
}

var blacklistToggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Enable or disable blacklist enforcement",
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("blacklist_toggle", nil)
	},
}

func init() {
	blacklistCmd.AddCommand(blacklistListCmd)
	blacklistCmd.AddCommand(blacklistAddCmd)
	blacklistCmd.AddCommand(blacklistRemoveCmd)
	blacklistCmd.AddCommand(blacklistToggleCmd)
}
