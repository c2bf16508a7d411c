package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heftdev/heft/internal/numeric"
	"github.com/heftdev/heft/internal/orchestrator"
	"github.com/heftdev/heft/internal/report"
	"github.com/heftdev/heft/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a saved snapshot",
	Long:  `Print a previously saved snapshot, or list every snapshot in the database.`,
	RunE:  runReport,
}

var (
	reportDBPath     string
	reportSnapshotID int64
	reportList       bool
	reportJSON       bool
)

func init() {
	reportCmd.Flags().StringVar(&reportDBPath, "db", defaultDBPath(), "Path to the snapshot database")
	reportCmd.Flags().Int64Var(&reportSnapshotID, "id", 0, "Snapshot id to show (0 = latest)")
	reportCmd.Flags().BoolVar(&reportList, "list", false, "List every snapshot instead of showing one")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print as JSON instead of a table")
}

func runReport(cmd *cobra.Command, args []string) error {
	st, err := store.Open(reportDBPath, false)
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to open database: %w", err))
	}
	defer st.Close()

	ctx := context.Background()

	if reportList {
		return listSnapshots(ctx, st)
	}

	var snap store.Snapshot
	if reportSnapshotID != 0 {
		snap, err = st.GetSnapshot(ctx, reportSnapshotID)
	} else {
		snap, err = st.GetLatestSnapshot(ctx)
	}
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to load snapshot: %w", err))
	}

	entries, err := st.LoadEntries(ctx, snap.ID)
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to load snapshot entries: %w", err))
	}

	if reportJSON {
		// A replayed snapshot carries no per-detector timing or memory
		// samples — those are ephemeral and the store never persists them.
		doc := report.NewScanJSON(fmt.Sprintf("%d", snap.ID), snap.ScannedAt, snap.DurationMs, entries, nil, orchestrator.Memory{}, nil)
		return wrapRuntime(report.WriteJSON(os.Stdout, doc))
	}

	fmt.Printf("Snapshot #%d — scanned %s (took %dms)\n", snap.ID, snap.ScannedAt.Format("2006-01-02 15:04:05"), snap.DurationMs)
	report.RenderTable(os.Stdout, entries, nil)
	return nil
}

func listSnapshots(ctx context.Context, st *store.Store) error {
	snaps, err := st.ListSnapshots(ctx)
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to list snapshots: %w", err))
	}
	if len(snaps) == 0 {
		fmt.Println("no snapshots saved yet")
		return nil
	}
	for _, s := range snaps {
		fmt.Printf("#%-4d  %s  total=%s  reclaimable=%s\n",
			s.ID,
			s.ScannedAt.Format("2006-01-02 15:04:05"),
			humanizeBytes(numeric.ClampNonNegative(s.TotalBytes)),
			humanizeBytes(numeric.ClampNonNegative(s.ReclaimableBytes)),
		)
	}
	return nil
}
