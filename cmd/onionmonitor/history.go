package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/onionmonitor/internal/database"
	"github.com/nao1215/onionmonitor/internal/directory"
	"github.com/nao1215/onionmonitor/internal/report"
	"github.com/spf13/cobra"
)

// ErrNotEnoughSnapshots is returned by history --diff with fewer than two
// recorded snapshots.
var ErrNotEnoughSnapshots = errors.New("at least two recorded snapshots are required")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "Show recorded snapshots and status changes",
		Long: `Show the snapshot history recorded by import.

Without arguments the recorded snapshots are listed, newest first. With a
service name its recorded statuses are shown. --diff lists the changes
between the two most recent snapshots, or between --from and --to.

Examples:
  onionmonitor history
  onionmonitor history --diff
  onionmonitor history --diff --from 01J0000000000000000000000A --to 01J0000000000000000000000B
  onionmonitor history example-news`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "", "History database directory (default: $XDG_DATA_HOME/onionmonitor)")
	cmd.Flags().Bool("list", false, "List recorded snapshots")
	cmd.Flags().Bool("diff", false, "Show changes between two snapshots")
	cmd.Flags().String("from", "", "Older snapshot ID for --diff")
	cmd.Flags().String("to", "", "Newer snapshot ID for --diff")
	addReportFlags(cmd)

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	diff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	if diff && (list || len(args) > 0) {
		return errors.New("--diff cannot be combined with --list or a service name")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()
	logger.Debug("opened history database", "path", db.Path())

	switch {
	case diff:
		cs, err := snapshotDiff(ctx, cmd, db)
		if err != nil {
			return err
		}
		return outputReport(cmd, cfg, func(w report.Writer) error {
			return w.WriteChanges(cs)
		})
	case len(args) == 1 && !list:
		entries, err := db.StatusHistory(ctx, args[0])
		if err != nil {
			return err
		}
		return outputReport(cmd, cfg, func(w report.Writer) error {
			return w.WriteTimeline(args[0], entries)
		})
	default:
		metas, err := db.ListSnapshots(ctx)
		if err != nil {
			return err
		}
		return outputReport(cmd, cfg, func(w report.Writer) error {
			return w.WriteSnapshots(metas)
		})
	}
}

// snapshotDiff compares the snapshots named by --from and --to, defaulting
// to the two most recent ones.
func snapshotDiff(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB) (*report.ChangeSet, error) {
	from := stringFlag(cmd, "from")
	to := stringFlag(cmd, "to")

	if from == "" || to == "" {
		latest, err := db.LatestSnapshots(ctx, 2)
		if err != nil {
			return nil, err
		}
		switch {
		case from == "" && to == "":
			if len(latest) < 2 {
				return nil, fmt.Errorf("%w: found %d", ErrNotEnoughSnapshots, len(latest))
			}
			from, to = latest[1].ID, latest[0].ID
		case to == "":
			if len(latest) == 0 {
				return nil, fmt.Errorf("%w: found none", ErrNotEnoughSnapshots)
			}
			to = latest[0].ID
		default:
			return nil, errors.New("--to requires --from")
		}
	}

	older, err := db.GetSnapshot(ctx, from)
	if err != nil {
		return nil, err
	}
	newer, err := db.GetSnapshot(ctx, to)
	if err != nil {
		return nil, err
	}
	return &report.ChangeSet{From: from, To: to, Changes: directory.Diff(older, newer)}, nil
}
