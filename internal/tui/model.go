// Package tui implements the interactive browser (C12): a flat,
// snapshot-scoped view over one scan's bloat entries, grouped by category.
// Unlike a live filesystem browser, it never re-stats the disk — everything
// on screen comes from the []bloat.Entry slice it was constructed with.
package tui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/numeric"
)

// SortColumn is the active sort field within a category's entry list.
type SortColumn int

const (
	SortBySize SortColumn = iota
	SortByReclaimable
	SortByName
)

func (s SortColumn) String() string {
	switch s {
	case SortByReclaimable:
		return "reclaimable"
	case SortByName:
		return "name"
	default:
		return "size"
	}
}

// screen identifies which of the two views is active.
type screen int

const (
	screenCategories screen = iota
	screenEntries
)

// categoryRow is one row of the top-level category list.
type categoryRow struct {
	category         bloat.Category
	totalSize        uint64
	totalReclaimable uint64
	count            int
}

// Model holds the TUI state. It never touches the filesystem or a database
// connection directly — all data was loaded once, before the program starts.
type Model struct {
	snapshotLabel string
	scannedAt     string

	allEntries []bloat.Entry

	screen     screen
	categories []categoryRow
	catCursor  int

	activeCategory bloat.Category
	allInCategory  []bloat.Entry
	entries        []bloat.Entry
	entryCursor    int

	sort SortColumn

	width, height int

	filter       string
	filterActive bool

	err error
}

// NewModel builds a Model from one snapshot's entries. label and scannedAt
// are short human-readable identifiers shown in the header.
func NewModel(label, scannedAt string, entries []bloat.Entry) *Model {
	m := &Model{
		snapshotLabel: label,
		scannedAt:     scannedAt,
		allEntries:    entries,
		sort:          SortBySize,
	}
	m.rebuildCategories()
	return m
}

func (m *Model) rebuildCategories() {
	totals := map[bloat.Category]*categoryRow{}
	var order []bloat.Category
	for _, e := range m.allEntries {
		row, ok := totals[e.Category]
		if !ok {
			row = &categoryRow{category: e.Category}
			totals[e.Category] = row
			order = append(order, e.Category)
		}
		row.totalSize, _ = numeric.AddSaturatingUint64(row.totalSize, e.SizeBytes)
		row.totalReclaimable, _ = numeric.AddSaturatingUint64(row.totalReclaimable, e.ReclaimableBytes)
		row.count++
	}

	rows := make([]categoryRow, 0, len(order))
	for _, c := range order {
		rows = append(rows, *totals[c])
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].totalSize > rows[j].totalSize })
	m.categories = rows
}

// Init implements tea.Model. There is nothing to load asynchronously — all
// data arrived via NewModel — so it is a no-op.
func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) helpLine() string {
	if m.filterActive {
		return "Type to filter | Enter: apply | Esc: clear | q: quit"
	}
	if m.screen == screenCategories {
		return "↑/↓ move | Enter: open category | q: quit"
	}
	return "↑/↓ move | Backspace: back | s/r/n: sort | /: filter | q: quit"
}

func (m *Model) enterCategory(c bloat.Category) {
	var in []bloat.Entry
	for _, e := range m.allEntries {
		if e.Category == c {
			in = append(in, e)
		}
	}
	m.activeCategory = c
	m.allInCategory = in
	m.screen = screenEntries
	m.entryCursor = 0
	m.filter = ""
	m.filterActive = false
	m.applyFilter()
}

func (m *Model) backToCategories() {
	m.screen = screenCategories
	m.filter = ""
	m.filterActive = false
}

func (m *Model) applyFilter() {
	sortEntries(m.allInCategory, m.sort)
	if m.filter == "" {
		m.entries = m.allInCategory
	} else {
		needle := strings.ToLower(m.filter)
		filtered := make([]bloat.Entry, 0, len(m.allInCategory))
		for _, e := range m.allInCategory {
			if strings.Contains(strings.ToLower(e.Name), needle) {
				filtered = append(filtered, e)
			}
		}
		m.entries = filtered
	}
	if m.entryCursor >= len(m.entries) {
		m.entryCursor = 0
	}
}

func sortEntries(entries []bloat.Entry, by SortColumn) {
	sort.Slice(entries, func(i, j int) bool {
		switch by {
		case SortByReclaimable:
			return entries[i].ReclaimableBytes > entries[j].ReclaimableBytes
		case SortByName:
			return entries[i].Name < entries[j].Name
		default:
			return entries[i].SizeBytes > entries[j].SizeBytes
		}
	})
}
