package bloat

import "testing"

func TestCategoryStringRoundTrip(t *testing.T) {
	cats := []Category{ProjectArtifact, PackageCache, ContainerData, IdeData, SystemCache}
	for _, c := range cats {
		s := c.String()
		got, ok := ParseCategory(s)
		if !ok {
			t.Fatalf("ParseCategory(%q) not ok", s)
		}
		if got != c {
			t.Fatalf("round trip mismatch: %v -> %q -> %v", c, s, got)
		}
	}
}

func TestParseCategoryUnknown(t *testing.T) {
	if _, ok := ParseCategory("not-a-category"); ok {
		t.Fatalf("expected unknown category string to fail to parse")
	}
}

func TestConfigDisable(t *testing.T) {
	cfg := &Config{Disabled: map[string]bool{"docker": true}}
	if !cfg.Disable("docker") {
		t.Fatalf("expected docker to be disabled")
	}
	if cfg.Disable("project-artifacts") {
		t.Fatalf("expected project-artifacts to not be disabled")
	}

	var empty Config
	if empty.Disable("anything") {
		t.Fatalf("expected nil Disabled map to report false")
	}
}
