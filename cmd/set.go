package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spyglass-tools/spyglass/internal/command"
)

var setCmd = &cobra.Command{
	Use:   "set <setting> <true|false>",
	Short: "Toggle an output segment of the record line",
	Long: `
Toggle one segment of the per-message record line. Settings:
timestamp, direction, opcode_names, size, hex_dump, description.

Examples:
  spyglass set hex_dump false
  spyglass set description true
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("value must be true or false: %w", err)
		}
		return callAgent("set", command.SetParams{Name: args[0], Value: value})
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter <type> <value>",
	Short: "Update an admission filter setting",
	Long: `
Update one admission filter setting. Types:
  minsize <bytes>     reject messages shorter than this (0 disables)
  maxsize <bytes>     reject messages longer than this (0 disables)
  include <list>      comma-separated names/opcodes; empty admits all
  exclude <list>      comma-separated names/opcodes to reject

Examples:
  spyglass filter minsize 10
  spyglass filter include OP_ChatMessage,8732
  spyglass filter include ""
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return callAgent("filter_set", command.FilterSetParams{Type: args[0], Value: args[1]})
	},
}
