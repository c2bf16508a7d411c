// Package report renders scan results as a categorized table or as JSON.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/numeric"
)

// RenderTable groups entries by category, sorts categories by total size
// descending and entries within a category by size descending, and writes a
// human-readable table.
func RenderTable(w io.Writer, entries []bloat.Entry, diagnostics []string) {
	grouped := map[bloat.Category][]bloat.Entry{}
	totals := map[bloat.Category]uint64{}
	for _, e := range entries {
		grouped[e.Category] = append(grouped[e.Category], e)
		totals[e.Category], _ = numeric.AddSaturatingUint64(totals[e.Category], e.SizeBytes)
	}

	var categories []bloat.Category
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return totals[categories[i]] > totals[categories[j]] })

	var grandTotal uint64
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cat := range categories {
		group := grouped[cat]
		sort.Slice(group, func(i, j int) bool { return group[i].SizeBytes > group[j].SizeBytes })

		fmt.Fprintf(tw, "\n%s\n", cat)
		fmt.Fprintln(tw, "----------------------------------------")
		var subtotal uint64
		for _, e := range group {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", truncate(e.Name, 40), humanize.Bytes(e.SizeBytes), e.Path)
			subtotal, _ = numeric.AddSaturatingUint64(subtotal, e.SizeBytes)
		}
		fmt.Fprintf(tw, "subtotal\t%s\t\n", humanize.Bytes(subtotal))
		grandTotal, _ = numeric.AddSaturatingUint64(grandTotal, subtotal)
	}
	fmt.Fprintf(tw, "\nTOTAL: %s\n", humanize.Bytes(grandTotal))
	tw.Flush()

	if len(diagnostics) > 0 {
		fmt.Fprintln(w, "\ndiagnostics:")
		for _, d := range diagnostics {
			fmt.Fprintf(w, "  - %s\n", d)
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
