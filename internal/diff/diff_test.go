package diff

import (
	"testing"

	"github.com/heftdev/heft/internal/bloat"
)

func TestComputeClassifiesGrewShrankNewGone(t *testing.T) {
	from := []bloat.Entry{
		{Category: bloat.PackageCache, Name: "npm cache", SizeBytes: 1_000_000_000},
		{Category: bloat.PackageCache, Name: "cargo registry", SizeBytes: 2_000_000_000},
	}
	to := []bloat.Entry{
		{Category: bloat.PackageCache, Name: "npm cache", SizeBytes: 1_500_000_000},
		{Category: bloat.ProjectArtifact, Name: "app/target", SizeBytes: 800_000_000},
	}

	changes := Compute(from, to)

	byName := map[string]Change{}
	for _, c := range changes {
		byName[c.Name] = c
	}

	if c := byName["npm cache"]; c.Status != Grew || c.Delta != 500_000_000 {
		t.Fatalf("got %+v, want grew +500000000", c)
	}
	if c := byName["cargo registry"]; c.Status != Gone || c.Delta != -2_000_000_000 {
		t.Fatalf("got %+v, want gone -2000000000", c)
	}
	if c := byName["app/target"]; c.Status != New || c.Delta != 800_000_000 {
		t.Fatalf("got %+v, want new +800000000", c)
	}
}

func TestComputeOmitsUnchanged(t *testing.T) {
	from := []bloat.Entry{{Category: bloat.PackageCache, Name: "npm cache", SizeBytes: 100}}
	to := []bloat.Entry{{Category: bloat.PackageCache, Name: "npm cache", SizeBytes: 100}}

	changes := Compute(from, to)
	if len(changes) != 0 {
		t.Fatalf("got %d changes, want 0 for an unchanged entry", len(changes))
	}
}

func TestComputeIsAntisymmetric(t *testing.T) {
	a := []bloat.Entry{
		{Category: bloat.PackageCache, Name: "npm cache", SizeBytes: 1000},
		{Category: bloat.PackageCache, Name: "cargo registry", SizeBytes: 2000},
	}
	b := []bloat.Entry{
		{Category: bloat.PackageCache, Name: "npm cache", SizeBytes: 1500},
		{Category: bloat.ProjectArtifact, Name: "app/target", SizeBytes: 800},
	}

	forward := Compute(a, b)
	backward := Compute(b, a)

	if len(forward) != len(backward) {
		t.Fatalf("got %d forward changes, %d backward, want equal", len(forward), len(backward))
	}

	forwardByName := map[string]Change{}
	for _, c := range forward {
		forwardByName[c.Name] = c
	}
	backwardByName := map[string]Change{}
	for _, c := range backward {
		backwardByName[c.Name] = c
	}

	swap := map[Status]Status{Grew: Shrank, Shrank: Grew, New: Gone, Gone: New}
	for name, fc := range forwardByName {
		bc, ok := backwardByName[name]
		if !ok {
			t.Fatalf("name %q missing from backward diff", name)
		}
		if swap[fc.Status] != bc.Status {
			t.Fatalf("%q: forward status %v, expected backward status %v, got %v", name, fc.Status, swap[fc.Status], bc.Status)
		}
		if fc.Delta != -bc.Delta {
			t.Fatalf("%q: forward delta %d, backward delta %d, want negation", name, fc.Delta, bc.Delta)
		}
	}
}
