package tui

import (
	"testing"

	"github.com/heftdev/heft/internal/bloat"
)

func sampleEntries() []bloat.Entry {
	return []bloat.Entry{
		{Category: bloat.PackageCache, Name: "npm cache", SizeBytes: 100, ReclaimableBytes: 100},
		{Category: bloat.PackageCache, Name: "cargo registry", SizeBytes: 300, ReclaimableBytes: 300},
		{Category: bloat.ProjectArtifact, Name: "app/node_modules", SizeBytes: 200, ReclaimableBytes: 200},
	}
}

func TestNewModelGroupsByCategoryDescending(t *testing.T) {
	m := NewModel("1", "now", sampleEntries())
	if len(m.categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(m.categories))
	}
	if m.categories[0].category != bloat.PackageCache || m.categories[0].totalSize != 400 {
		t.Fatalf("got top category %+v, want package-cache with total 400", m.categories[0])
	}
}

func TestEnterCategoryFiltersAndSorts(t *testing.T) {
	m := NewModel("1", "now", sampleEntries())
	m.enterCategory(bloat.PackageCache)
	if len(m.entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(m.entries))
	}
	if m.entries[0].Name != "cargo registry" {
		t.Fatalf("got first entry %q, want cargo registry (largest first)", m.entries[0].Name)
	}
}

func TestApplyFilterNarrowsEntries(t *testing.T) {
	m := NewModel("1", "now", sampleEntries())
	m.enterCategory(bloat.PackageCache)
	m.filter = "npm"
	m.applyFilter()
	if len(m.entries) != 1 || m.entries[0].Name != "npm cache" {
		t.Fatalf("got entries %+v, want only npm cache", m.entries)
	}
}

func TestBackToCategoriesClearsFilter(t *testing.T) {
	m := NewModel("1", "now", sampleEntries())
	m.enterCategory(bloat.PackageCache)
	m.filter = "npm"
	m.backToCategories()
	if m.screen != screenCategories || m.filter != "" {
		t.Fatalf("got screen %v filter %q, want categories screen and empty filter", m.screen, m.filter)
	}
}

func TestMoveCursorClampsToListBounds(t *testing.T) {
	m := NewModel("1", "now", sampleEntries())
	m.moveCursor(-5)
	if m.catCursor != 0 {
		t.Fatalf("got cursor %d, want clamped to 0", m.catCursor)
	}
	m.moveCursor(100)
	if m.catCursor != len(m.categories)-1 {
		t.Fatalf("got cursor %d, want clamped to %d", m.catCursor, len(m.categories)-1)
	}
}
