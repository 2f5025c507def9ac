// Package cmd implements the CLI commands using the cobra framework.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spyglass-tools/spyglass/internal/command"
)

var (
	// Global flags
	configFile string
	socketPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spyglass",
	Short: "Spyglass - schema-driven network message decoder",
	Long: `Spyglass watches a game-server message stream, filters it, decodes
each admitted message against versioned field schemas, and logs a
human-readable record per message.

The start command runs the agent; the remaining commands talk to a
running agent over its control socket.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "spyglass.yaml",
		"config file path")
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", "/var/run/spyglass.sock",
		"agent control socket path")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(blacklistCmd)
	rootCmd.AddCommand(descCmd)
	rootCmd.AddCommand(opcodeCmd)
}

// callAgent issues one control command and prints the result as
// indented JSON.
func callAgent(method string, params interface{}) error {
	client := command.NewUDSClient(socketPath, 10*time.Second)
	resp, err := client.Call(context.Background(), method, params)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(resp.Result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
