package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/heftdev/heft/internal/store"
	"github.com/heftdev/heft/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse a snapshot interactively",
	Long:  `Open an interactive browser over one saved snapshot's entries, grouped by category.`,
	RunE:  runTUI,
}

var (
	tuiDBPath     string
	tuiSnapshotID int64
)

func init() {
	tuiCmd.Flags().StringVar(&tuiDBPath, "db", defaultDBPath(), "Path to the snapshot database")
	tuiCmd.Flags().Int64Var(&tuiSnapshotID, "id", 0, "Snapshot id to browse (0 = latest)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	st, err := store.Open(tuiDBPath, false)
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to open database: %w", err))
	}
	defer st.Close()

	ctx := context.Background()
	var snap store.Snapshot
	if tuiSnapshotID != 0 {
		snap, err = st.GetSnapshot(ctx, tuiSnapshotID)
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

	label := fmt.Sprintf("#%d", snap.ID)
	model := tui.NewModel(label, snap.ScannedAt.Format("2006-01-02 15:04:05"), entries)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return wrapRuntime(fmt.Errorf("TUI error: %w", err))
	}

	return nil
}
