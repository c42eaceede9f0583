package main

import (
	"fmt"

	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/report"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List onion services with their last known status",
		Long: `List the services of a snapshot, optionally narrowed by a free-text
search and a status filter. Counts always describe the whole snapshot.

The search matches title, name, description, category and tags,
case-insensitively. The status filter matches the stored status exactly,
so services with an error status only appear under "all".

Examples:
  # Every service in the default snapshot
  onionmonitor list

  # Online services mentioning "news"
  onionmonitor list -q news -s online

  # Markdown report of a specific snapshot
  onionmonitor list -f services.json --markdown -o services.md`,
		Args: cobra.NoArgs,
		RunE: runListCmd,
	}

	cmd.Flags().StringP("file", "f", "", "Snapshot file (default: $XDG_DATA_HOME/onionmonitor/services.json)")
	cmd.Flags().StringP("query", "q", "", "Free-text search")
	cmd.Flags().StringP("status", "s", "", "Status filter: all, online, offline, unknown")
	cmd.Flags().Bool("quiet", false, "Omit descriptions from terminal output")
	addReportFlags(cmd)

	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	query, err := cmd.Flags().GetString("query")
	if err != nil {
		return err
	}
	tag := cfg.DefaultFilter
	if cmd.Flags().Changed("status") {
		status, err := cmd.Flags().GetString("status")
		if err != nil {
			return err
		}
		if tag, err = directory.ParseFilterTag(status); err != nil {
			return err
		}
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return err
	}

	services, err := directory.LoadSnapshot(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	logger.Debug("loaded snapshot", "file", cfg.DataFile, "services", len(services))

	for _, issue := range directory.Check(services) {
		logger.Warn("snapshot issue", "name", issue.Name, "kind", issue.Kind, "message", issue.Message)
	}

	view := directory.NewView(services, query, tag)
	return outputReport(cmd, cfg, func(w report.Writer) error {
		if sw, ok := w.(*report.SimpleWriter); ok {
			report.WithQuiet(quiet)(sw)
		}
		return w.WriteDirectory(view)
	})
}
