package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/onionmonitor/internal/config"
	"github.com/nao1215/onionmonitor/internal/log"
	"github.com/nao1215/onionmonitor/internal/report"
	"github.com/spf13/cobra"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// stringFlag returns the value of a flag that may not be defined on cmd.
func stringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags shared by several commands. Flags win over the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	// An explicit --config must exist; otherwise a missing file is fine.
	explicit := stringFlag(cmd, "config")
	if path := config.FindConfigFile(explicit); path != "" {
		file, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		file.Apply(cfg)
		cfg.ConfigFilePath = path
	} else if explicit != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, explicit)
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		cfg.DataFile = stringFlag(cmd, "file")
	}
	if flags.Changed("db-dir") {
		cfg.DBDir = stringFlag(cmd, "db-dir")
	}
	if flags.Changed("dialect") {
		cfg.Dialect = stringFlag(cmd, "dialect")
	}
	if flags.Lookup("json") != nil {
		if v, err := flags.GetBool("json"); err == nil {
			cfg.JSONReport = v
		}
	}
	if flags.Lookup("markdown") != nil {
		if v, err := flags.GetBool("markdown"); err == nil {
			cfg.MarkdownReport = v
		}
	}
	cfg.ReportFile = stringFlag(cmd, "output")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// setupLogger creates the structured logger for a command. Diagnostics go
// to the command's error stream so reports on stdout stay parseable.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logger := log.NewSecureLogger(cmd.ErrOrStderr(), verbose)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// outputReport writes a report in the configured format to the report file
// or to the command's output.
func outputReport(cmd *cobra.Command, cfg *config.Config, write func(report.Writer) error) (err error) {
	var output io.Writer = cmd.OutOrStdout()
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, openErr := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if openErr != nil {
			return fmt.Errorf("failed to create output file: %w", openErr)
		}
		defer func() {
			err = errors.Join(err, f.Close())
		}()
		output = f
	}

	return write(report.New(report.FormatFor(cfg.JSONReport, cfg.MarkdownReport), output))
}

// addReportFlags adds the output format flags.
func addReportFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Output report in JSON format")
	cmd.Flags().Bool("markdown", false, "Output report in Markdown format")
	cmd.Flags().StringP("output", "o", "", "Write report to file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}
