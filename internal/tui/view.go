package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/numeric"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}

	var b strings.Builder
	headerLines := 0

	writeLine := func(line string) {
		b.WriteString(line)
		b.WriteString("\n")
		headerLines++
	}

	writeLine(titleStyle.Render("heft - disk space auditor"))
	writeLine(statsStyle.Render(fmt.Sprintf("Snapshot: %s | Scanned: %s", m.snapshotLabel, m.scannedAt)))

	if m.screen == screenCategories {
		m.renderCategories(&b, writeLine)
	} else {
		m.renderEntries(&b, writeLine)
	}

	help := m.helpLine()
	if n := m.listLen(); n > 0 {
		help = fmt.Sprintf("%s [%d/%d]", help, m.cursor()+1, n)
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m *Model) renderCategories(b *strings.Builder, writeLine func(string)) {
	var grandTotal uint64
	for _, row := range m.categories {
		grandTotal, _ = numeric.AddSaturatingUint64(grandTotal, row.totalSize)
	}
	writeLine(breadcrumbStyle.Render(fmt.Sprintf("All categories | Total: %s", FormatSize(grandTotal))))

	sizeLabel := "SIZE"
	reclaimLabel := "RECLAIMABLE"
	countLabel := "ITEMS"
	nameLabel := "CATEGORY"

	sizeWidth, reclaimWidth, countWidth := len(sizeLabel), len(reclaimLabel), len(countLabel)
	for _, row := range m.categories {
		if n := len(FormatSize(row.totalSize)); n > sizeWidth {
			sizeWidth = n
		}
		if n := len(FormatSize(row.totalReclaimable)); n > reclaimWidth {
			reclaimWidth = n
		}
		if n := len(FormatCount(row.count)); n > countWidth {
			countWidth = n
		}
	}

	header := fmt.Sprintf("%*s  %*s  %*s  %s", sizeWidth, sizeLabel, reclaimWidth, reclaimLabel, countWidth, countLabel, nameLabel)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	for i, row := range m.categories {
		line := fmt.Sprintf("%*s  %*s  %*s  %s",
			sizeWidth, FormatSize(row.totalSize),
			reclaimWidth, FormatSize(row.totalReclaimable),
			countWidth, FormatCount(row.count),
			categoryLabel(row.category),
		)
		bar := formatBar(row.totalSize, grandTotal)
		line = line + "  " + bar
		if i == m.catCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func (m *Model) renderEntries(b *strings.Builder, writeLine func(string)) {
	breadcrumb := fmt.Sprintf("%s | sort: %s", categoryLabel(m.activeCategory), m.sort)
	if m.filterActive {
		breadcrumb += fmt.Sprintf(" | filter: %s_", m.filter)
	} else if m.filter != "" {
		breadcrumb += fmt.Sprintf(" | filter: %s", m.filter)
	}
	writeLine(breadcrumbStyle.Render(breadcrumb))

	sizeLabel := headerLabel("SIZE", m.sort == SortBySize)
	reclaimLabel := headerLabel("RECLAIMABLE", m.sort == SortByReclaimable)
	nameLabel := headerLabel("NAME", m.sort == SortByName)

	sizeWidth, reclaimWidth := len(sizeLabel), len(reclaimLabel)
	for _, e := range m.entries {
		if n := len(FormatSize(e.SizeBytes)); n > sizeWidth {
			sizeWidth = n
		}
		if n := len(FormatSize(e.ReclaimableBytes)); n > reclaimWidth {
			reclaimWidth = n
		}
	}

	var categoryTotal uint64
	for _, e := range m.allInCategory {
		categoryTotal, _ = numeric.AddSaturatingUint64(categoryTotal, e.SizeBytes)
	}

	header := fmt.Sprintf("%*s  %*s  %s", sizeWidth, sizeLabel, reclaimWidth, reclaimLabel, nameLabel)
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(statusStyle.Render("(no entries)"))
		b.WriteString("\n")
		return
	}

	for i, e := range m.entries {
		name := fmt.Sprintf("%s (%s)", e.Name, e.Path)
		line := fmt.Sprintf("%*s  %*s  %s",
			sizeWidth, FormatSize(e.SizeBytes),
			reclaimWidth, FormatSize(e.ReclaimableBytes),
			name,
		)
		bar := formatBar(e.SizeBytes, categoryTotal)
		line = line + "  " + bar
		if i == m.entryCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func headerLabel(label string, active bool) string {
	if active {
		return label + "v"
	}
	return label
}

func categoryLabel(c bloat.Category) string {
	return c.String()
}

const barBlockWidth = 10

func formatBar(value, total uint64) string {
	if total == 0 || value == 0 {
		empty := strings.Repeat("░", barBlockWidth)
		return barEmptyStyle.Render(empty) + "   0%"
	}

	pct := float64(value) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}

	filled := int(math.Round(pct / 100 * float64(barBlockWidth)))
	if filled < 1 {
		filled = 1
	}
	if filled > barBlockWidth {
		filled = barBlockWidth
	}

	filledStr := barFilledStyle.Render(strings.Repeat("█", filled))
	emptyStr := barEmptyStyle.Render(strings.Repeat("░", barBlockWidth-filled))
	return fmt.Sprintf("%s%s %3d%%", filledStr, emptyStr, int(math.Round(pct)))
}
