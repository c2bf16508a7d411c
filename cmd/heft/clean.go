package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/clean"
	"github.com/heftdev/heft/internal/platform"
	"github.com/heftdev/heft/internal/store"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete reclaimable entries from a snapshot",
	Long:  `Review and delete entries recorded in a saved snapshot, grouped by category.`,
	RunE:  runClean,
}

var (
	cleanDBPath     string
	cleanSnapshotID int64
	cleanDryRun     bool
	cleanYes        bool
	cleanCategories []string
)

func init() {
	cleanCmd.Flags().StringVar(&cleanDBPath, "db", defaultDBPath(), "Path to the snapshot database")
	cleanCmd.Flags().Int64Var(&cleanSnapshotID, "id", 0, "Snapshot id to clean (0 = latest)")
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Print what would be deleted without deleting")
	cleanCmd.Flags().BoolVar(&cleanYes, "yes", false, "Delete without prompting")
	cleanCmd.Flags().StringSliceVar(&cleanCategories, "category", nil, "Restrict to these categories (repeatable, default all)")
	cleanCmd.MarkFlagsMutuallyExclusive("dry-run", "yes")
}

func runClean(cmd *cobra.Command, args []string) error {
	categories, err := parseCategoryFilter(cleanCategories)
	if err != nil {
		return err
	}

	plat, err := platform.Detect()
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to detect platform: %w", err))
	}

	st, err := store.Open(cleanDBPath, false)
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to open database: %w", err))
	}
	defer st.Close()

	ctx := context.Background()
	var snap store.Snapshot
	if cleanSnapshotID != 0 {
		snap, err = st.GetSnapshot(ctx, cleanSnapshotID)
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

	mode := clean.Interactive
	switch {
	case cleanDryRun:
		mode = clean.DryRun
	case cleanYes:
		mode = clean.Yes
	}

	engine := clean.New(plat)
	result := engine.Run(ctx, entries, mode, categories, os.Stdin, os.Stdout)

	fmt.Printf("\nDeleted %d entries, freed %s\n", len(result.Deleted), humanizeBytes(result.BytesFreed))
	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "%d errors:\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
	}

	return nil
}

func parseCategoryFilter(names []string) (map[bloat.Category]bool, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := map[bloat.Category]bool{}
	for _, name := range names {
		cat, ok := bloat.ParseCategory(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown category %q", name)
		}
		out[cat] = true
	}
	return out, nil
}
