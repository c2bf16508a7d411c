package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heftdev/heft/internal/diff"
	"github.com/heftdev/heft/internal/numeric"
	"github.com/heftdev/heft/internal/report"
	"github.com/heftdev/heft/internal/store"
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two snapshots",
	Long:  `Classify every entry across two snapshots as grew, shrank, new, or gone.`,
	RunE:  runDiff,
}

var (
	diffDBPath string
	diffFrom   int64
	diffTo     int64
	diffJSON   bool
)

func init() {
	diffCmd.Flags().StringVar(&diffDBPath, "db", defaultDBPath(), "Path to the snapshot database")
	diffCmd.Flags().Int64Var(&diffFrom, "from", 0, "Earlier snapshot id (default: second-most-recent snapshot)")
	diffCmd.Flags().Int64Var(&diffTo, "to", 0, "Later snapshot id (default: most recent snapshot)")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "Print as JSON instead of a table")
	diffCmd.MarkFlagsRequiredTogether("from", "to")
}

func runDiff(cmd *cobra.Command, args []string) error {
	st, err := store.Open(diffDBPath, false)
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to open database: %w", err))
	}
	defer st.Close()

	ctx := context.Background()

	from, to := diffFrom, diffTo
	if from == 0 || to == 0 {
		snaps, err := st.ListSnapshots(ctx)
		if err != nil {
			return wrapRuntime(fmt.Errorf("failed to list snapshots: %w", err))
		}
		if len(snaps) < 2 {
			return fmt.Errorf("need at least two saved snapshots to default --from/--to; only %d saved", len(snaps))
		}
		// snaps is most-recent-first: snaps[0] is the latest, snaps[1] the
		// one before it.
		if to == 0 {
			to = snaps[0].ID
		}
		if from == 0 {
			from = snaps[1].ID
		}
	}

	fromEntries, err := st.LoadEntries(ctx, from)
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to load snapshot %d: %w", from, err))
	}
	toEntries, err := st.LoadEntries(ctx, to)
	if err != nil {
		return wrapRuntime(fmt.Errorf("failed to load snapshot %d: %w", to, err))
	}

	changes := diff.Compute(fromEntries, toEntries)

	if diffJSON {
		return wrapRuntime(report.WriteJSON(os.Stdout, report.NewDiffJSON(changes)))
	}

	if len(changes) == 0 {
		fmt.Println("no changes between the two snapshots")
		return nil
	}

	for _, c := range changes {
		sign := "+"
		if c.Delta < 0 {
			sign = "-"
		}
		fmt.Printf("%-8s %-18s %-30s %s%s\n", c.Status, c.Category, c.Name, sign, humanizeBytes(absUint64(c.Delta)))
	}
	return nil
}

func absUint64(v int64) uint64 {
	if v < 0 {
		return numeric.ClampNonNegative(-(v + 1)) + 1
	}
	return numeric.ClampNonNegative(v)
}
