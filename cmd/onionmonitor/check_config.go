package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/onionmonitor/internal/onionlocation"
	"github.com/nao1215/onionmonitor/internal/report"
	"github.com/spf13/cobra"
)

// NewCheckConfigCmd creates the check-config command.
func NewCheckConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-config <file>",
		Short: "Check an Onion-Location header configuration",
		Long: `Check that a site advertises its onion mirror with a compliant
Onion-Location header. The file kind is chosen by extension:

  .md, .markdown   nginx and apache code blocks of a guide
  .html, .htm      <meta http-equiv="Onion-Location"> tags
  anything else    an nginx or Apache configuration

The server dialect is detected from the path and content unless --dialect
or the configuration file sets it. Best-practice advisories are reported
but never make a configuration non-compliant.

Exits with status 1 when the configuration is not compliant.

Examples:
  onionmonitor check-config /etc/nginx/sites-enabled/example.conf
  onionmonitor check-config --dialect apache site.conf
  onionmonitor check-config --markdown docs/onion-location.md`,
		Args: cobra.ExactArgs(1),
		RunE: runCheckConfigCmd,
	}

	cmd.Flags().String("dialect", "", "Server dialect: nginx or apache (default: detect)")
	addReportFlags(cmd)

	return cmd
}

func runCheckConfigCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	path := args[0]
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	c := &report.Compliance{Source: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		c.Results = onionlocation.ValidateMarkdown(data)
		for _, r := range c.Results {
			r.Source = path
		}
	case ".html", ".htm":
		if c.Meta, err = onionlocation.ValidateHTML(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		d := onionlocation.DetectDialect(path, string(data))
		if cfg.Dialect != "" {
			if d, err = onionlocation.ParseDialect(cfg.Dialect); err != nil {
				return err
			}
		}
		logger.Debug("validating server configuration", "file", path, "dialect", d.Name())
		r := onionlocation.Validate(string(data), d)
		r.Source = path
		c.Results = []*onionlocation.Result{r}
	}

	if err := outputReport(cmd, cfg, func(w report.Writer) error {
		return w.WriteCompliance(c)
	}); err != nil {
		return err
	}
	return complianceError(c)
}

// complianceError returns nil for a compliant source, or an error wrapping
// ErrNonCompliant for every failing result and meta tag.
func complianceError(c *report.Compliance) error {
	if c.OK() {
		return nil
	}
	if len(c.Results) == 0 && len(c.Meta) == 0 {
		return fmt.Errorf("%w: %s: no Onion-Location configuration found", onionlocation.ErrNonCompliant, c.Source)
	}

	var errs []error
	for _, r := range c.Results {
		if err := r.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range c.Meta {
		if m.Error != nil {
			errs = append(errs, fmt.Errorf("%w: %s: meta content %q: %w", onionlocation.ErrNonCompliant, c.Source, m.Value, m.Error))
		}
	}
	return errors.Join(errs...)
}
