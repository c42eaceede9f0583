package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/nao1215/onionmonitor/internal/database"
	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/model"
	"github.com/nao1215/onionmonitor/internal/report"
	"github.com/spf13/cobra"
)

// NewImportCmd creates the import command.
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <projects-dir>",
		Short: "Import onion services from project lists",
		Long: `Read every *.json project list in a directory and merge the projects
that publish an onion address into the snapshot.

Existing records keep their status and history; new records start with an
unknown status and are never checked until the monitor runs. The merged
snapshot is recorded in the history database unless --no-record is given.

Examples:
  onionmonitor import ./projects
  onionmonitor import -f services.json --no-record ./projects`,
		Args: cobra.ExactArgs(1),
		RunE: runImportCmd,
	}

	cmd.Flags().StringP("file", "f", "", "Snapshot file to merge into (default: $XDG_DATA_HOME/onionmonitor/services.json)")
	cmd.Flags().String("db-dir", "", "History database directory (default: $XDG_DATA_HOME/onionmonitor)")
	cmd.Flags().Bool("no-record", false, "Do not record the snapshot in the history database")
	cmd.Flags().Int("concurrency", 0, "Number of project files read in parallel")
	addReportFlags(cmd)

	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		if cfg.ImportConcurrency, err = cmd.Flags().GetInt("concurrency"); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}
	noRecord, err := cmd.Flags().GetBool("no-record")
	if err != nil {
		return err
	}
	if noRecord {
		cfg.RecordHistory = false
	}
	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signalContext(cmd)
	defer stop()

	existing, err := directory.LoadSnapshot(cfg.DataFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("creating new snapshot", "file", cfg.DataFile)
		existing = []model.Service{}
	case err != nil:
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	importer := directory.NewImporter(
		directory.WithImportConcurrency(cfg.ImportConcurrency),
		directory.WithImportLogger(logger),
	)
	incoming, err := importer.ImportDir(ctx, args[0])
	if err != nil {
		return err
	}

	merged := directory.Merge(existing, incoming)
	if err := directory.SaveSnapshot(cfg.DataFile, merged); err != nil {
		return err
	}
	sum := directory.Summarize(merged)
	logger.Info("saved snapshot", "file", cfg.DataFile,
		"total", sum.Total, "online", sum.Online, "offline", sum.Offline)

	to := cfg.DataFile
	if cfg.RecordHistory {
		meta, err := recordSnapshot(ctx, logger, cfg.DBDir, args[0], merged)
		if err != nil {
			return err
		}
		to = meta.ID
	}

	cs := &report.ChangeSet{From: cfg.DataFile, To: to, Changes: directory.Diff(existing, merged)}
	return outputReport(cmd, cfg, func(w report.Writer) error {
		return w.WriteChanges(cs)
	})
}

// recordSnapshot stores services in the history database in dbDir.
func recordSnapshot(ctx context.Context, logger *slog.Logger, dbDir, source string, services []model.Service) (database.SnapshotMeta, error) {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return database.SnapshotMeta{}, fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	meta, err := db.SaveSnapshot(ctx, source, services, time.Now())
	if err != nil {
		return database.SnapshotMeta{}, fmt.Errorf("failed to record snapshot: %w", err)
	}
	logger.Debug("recorded snapshot", "id", meta.ID, "db", db.Path())
	return meta, nil
}
