package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for onionmonitor.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onionmonitor",
		Short: "Onion service directory and Onion-Location checker",
		Long: `onionmonitor lists onion services with their last known status, validates
v3 onion addresses and checks nginx and Apache configurations, Markdown
guides and HTML pages for a compliant Onion-Location header.

Service status is recorded by an external monitor; onionmonitor never
connects to the Tor network.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("config", "", "Configuration file (default: .onionmonitor in current or home directory)")

	cmd.AddCommand(NewListCmd())
	cmd.AddCommand(NewCheckAddressCmd())
	cmd.AddCommand(NewCheckConfigCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
