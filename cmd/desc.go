package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spyglass-tools/spyglass/internal/command"
)

var descCmd = &cobra.Command{
	Use:   "desc",
	Short: "Manage packet descriptions",
}

var descListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered packet descriptions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("desc_list", nil)
	},
}

var descToggleCmd = &cobra.Command{
	Use:   "toggle <name>",
	Short: "Enable or disable one packet description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("desc_toggle", command.DescToggleParams{Name: args[0]})
	},
}

var opcodeCmd = &cobra.Command{
	Use:   "opcode <number|substring>",
	Short: "Look up opcodes by number or name substring",
	Long: `
Look up opcode mappings in the running agent. A decimal argument is
resolved to its name (UNKNOWN_<n> when unmapped); anything else is a
case-insensitive substring search over the name table.

Examples:
  spyglass opcode 8732
  spyglass opcode spawn
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("opcode_lookup", command.OpcodeLookupParams{Query: args[0]})
	},
}

func init() {
	descCmd.AddCommand(descListCmd)
	descCmd.AddCommand(descToggleCmd)
}
