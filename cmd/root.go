// Package cmd wires the bridge's CLI surface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the bridge version reported to MCP clients.
const Version = "1.0.0"

var (
	configPath string
	dataDir    string
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "zappy",
		Short:        "Permission-gated WhatsApp bridge for MCP tool callers",
		SilenceUsage: true,
		// Running the bare binary serves, matching how MCP clients invoke it.
		RunE: runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to the JSON config with allowed recipients")
	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.config/zappy)")

	root.AddCommand(serveCmd())
	root.AddCommand(doctorCmd())
	return root
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
