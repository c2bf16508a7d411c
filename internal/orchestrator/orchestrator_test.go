package orchestrator

import (
	"context"
	"testing"

	"github.com/heftdev/heft/internal/bloat"
)

type stubDetector struct {
	name      string
	available bool
	entries   []bloat.Entry
	calls     *int
}

func (s *stubDetector) Name() string { return s.name }
func (s *stubDetector) Available(cfg *bloat.Config) bool { return s.available }
func (s *stubDetector) Scan(ctx context.Context, cfg *bloat.Config) bloat.DetectorResult {
	if s.calls != nil {
		*s.calls++
	}
	return bloat.DetectorResult{Entries: s.entries}
}

func TestRunSkipsUnavailableDetectors(t *testing.T) {
	calls := 0
	available := &stubDetector{name: "a", available: true, calls: &calls, entries: []bloat.Entry{{Name: "x"}}}
	unavailable := &stubDetector{name: "b", available: false, calls: &calls}

	o := New(Batch, available, unavailable)
	result := o.Run(context.Background(), &bloat.Config{})

	if calls != 1 {
		t.Fatalf("got %d detector calls, want 1 (unavailable detector must not run)", calls)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(result.Entries))
	}
	if result.RunID == "" {
		t.Fatalf("expected a non-empty run id")
	}
}

func TestRunEachDetectorExactlyOnce(t *testing.T) {
	calls := 0
	a := &stubDetector{name: "a", available: true, calls: &calls}
	b := &stubDetector{name: "b", available: true, calls: &calls}

	o := New(Batch, a, b)
	o.Run(context.Background(), &bloat.Config{})

	if calls != 2 {
		t.Fatalf("got %d total calls across 2 detectors, want 2", calls)
	}
}

func TestRunOrdersEntriesByDetectorThenCategoryThenName(t *testing.T) {
	a := &stubDetector{name: "a", available: true, entries: []bloat.Entry{
		{Category: bloat.PackageCache, Name: "z"},
		{Category: bloat.ProjectArtifact, Name: "a"},
	}}
	b := &stubDetector{name: "b", available: true, entries: []bloat.Entry{
		{Category: bloat.ProjectArtifact, Name: "aaa"},
	}}

	o := New(Batch, a, b)
	result := o.Run(context.Background(), &bloat.Config{})

	if len(result.Entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(result.Entries))
	}
	// detector a's entries (sorted by category then name) come before detector b's.
	if result.Entries[0].Category != bloat.ProjectArtifact || result.Entries[0].Name != "a" {
		t.Fatalf("got %+v first, want detector a's project-artifact entry", result.Entries[0])
	}
	if result.Entries[1].Category != bloat.PackageCache {
		t.Fatalf("got %+v second", result.Entries[1])
	}
	if result.Entries[2].Name != "aaa" {
		t.Fatalf("got %+v third", result.Entries[2])
	}
}
