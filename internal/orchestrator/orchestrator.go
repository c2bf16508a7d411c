// Package orchestrator runs the detector pipeline: selecting available
// detectors, running them (batch or progressive), and collecting timing and
// memory-delta diagnostics alongside the merged entry list.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/numeric"
)

// Memory captures Go heap (runtime.MemStats.HeapAlloc) sampling around a
// scan; the process resident set is not measured.
type Memory struct {
	PeakHeapBytes     uint64
	PerDetectorDeltas map[string]uint64
}

// Result is the orchestrator's aggregated output for one scan.
type Result struct {
	RunID          string
	Entries        []bloat.Entry
	DetectorTimings map[string]time.Duration
	Memory          Memory
	Duration        time.Duration
	ScannedAt       time.Time
	Diagnostics     []string
}

// Mode selects batch vs progressive detector execution.
type Mode uint8

const (
	Batch Mode = iota
	Progressive
)

// Orchestrator drives a fixed, ordered set of detectors.
type Orchestrator struct {
	Detectors []bloat.Detector
	Mode      Mode
}

// New returns an orchestrator over the given detectors, in registration
// order — that order also determines final entry ordering.
func New(mode Mode, detectors ...bloat.Detector) *Orchestrator {
	return &Orchestrator{Detectors: detectors, Mode: mode}
}

type detectorOutcome struct {
	index   int
	name    string
	elapsed time.Duration
	delta   uint64
	result  bloat.DetectorResult
}

// Run executes every available detector exactly once, concurrently, and
// merges their results in a stable, completion-order-independent sequence.
func (o *Orchestrator) Run(ctx context.Context, cfg *bloat.Config) Result {
	start := time.Now()

	runID := uuid.NewString()

	var selected []bloat.Detector
	for _, d := range o.Detectors {
		if d.Available(cfg) {
			selected = append(selected, d)
		}
	}

	outcomes := make([]detectorOutcome, len(selected))
	var wg sync.WaitGroup
	var peakHeap uint64
	var peakMu sync.Mutex

	for i, d := range selected {
		wg.Add(1)
		go func(i int, d bloat.Detector) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = detectorOutcome{
						index: i,
						name:  d.Name(),
						result: bloat.DetectorResult{
							Diagnostics: []string{fmt.Sprintf("detector %s panicked: %v", d.Name(), r)},
						},
					}
				}
			}()

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			t0 := time.Now()

			res := d.Scan(ctx, cfg)

			elapsed := time.Since(t0)
			runtime.ReadMemStats(&after)

			delta := uint64(0)
			if after.HeapAlloc > before.HeapAlloc {
				delta = after.HeapAlloc - before.HeapAlloc
			}

			peakMu.Lock()
			if after.HeapAlloc > peakHeap {
				peakHeap = after.HeapAlloc
			}
			peakMu.Unlock()

			outcomes[i] = detectorOutcome{index: i, name: d.Name(), elapsed: elapsed, delta: delta, result: res}

			if o.Mode == Progressive {
				var size uint64
				for _, e := range res.Entries {
					size, _ = numeric.AddSaturatingUint64(size, e.SizeBytes)
				}
				fmt.Fprintf(os.Stderr, "%s complete: %d items, %d bytes, %.1fs\n", d.Name(), len(res.Entries), size, elapsed.Seconds())
			}
		}(i, d)
	}
	wg.Wait()

	result := Result{
		RunID:           runID,
		DetectorTimings: make(map[string]time.Duration, len(outcomes)),
		Memory:          Memory{PerDetectorDeltas: make(map[string]uint64, len(outcomes))},
		ScannedAt:       start,
	}

	type indexedEntry struct {
		detectorIdx int
		entry       bloat.Entry
	}
	var indexed []indexedEntry

	for _, oc := range outcomes {
		result.Diagnostics = append(result.Diagnostics, oc.result.Diagnostics...)
		result.DetectorTimings[oc.name] = oc.elapsed
		result.Memory.PerDetectorDeltas[oc.name] = oc.delta
		for _, e := range oc.result.Entries {
			indexed = append(indexed, indexedEntry{detectorIdx: oc.index, entry: e})
		}
	}
	result.Memory.PeakHeapBytes = peakHeap
	result.Duration = time.Since(start)

	sort.SliceStable(indexed, func(i, j int) bool {
		a, b := indexed[i], indexed[j]
		if a.detectorIdx != b.detectorIdx {
			return a.detectorIdx < b.detectorIdx
		}
		if a.entry.Category != b.entry.Category {
			return a.entry.Category < b.entry.Category
		}
		return a.entry.Name < b.entry.Name
	})

	result.Entries = make([]bloat.Entry, len(indexed))
	for i, ie := range indexed {
		result.Entries[i] = ie.entry
	}

	return result
}
