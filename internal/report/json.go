package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/diff"
	"github.com/heftdev/heft/internal/numeric"
	"github.com/heftdev/heft/internal/orchestrator"
)

// EntryJSON is the wire shape of one bloat.Entry in JSON output.
type EntryJSON struct {
	Category         string `json:"category"`
	Name             string `json:"name"`
	Path             string `json:"path"`
	SizeBytes        uint64 `json:"size_bytes"`
	ReclaimableBytes uint64 `json:"reclaimable_bytes"`
	LastModifiedDays *int64 `json:"last_modified_days,omitempty"`
	Detector         string `json:"detector"`
}

func toEntryJSON(e bloat.Entry) EntryJSON {
	return EntryJSON{
		Category:         e.Category.String(),
		Name:             e.Name,
		Path:             e.Path,
		SizeBytes:        e.SizeBytes,
		ReclaimableBytes: e.ReclaimableBytes,
		LastModifiedDays: e.LastModifiedDays,
		Detector:         e.DetectorOrigin,
	}
}

// MemoryJSON is the wire shape of orchestrator.Memory. peak_rss_bytes carries
// PeakHeapBytes, the Go heap (HeapAlloc) peak, not the process resident set.
type MemoryJSON struct {
	PeakRSSBytes          uint64            `json:"peak_rss_bytes"`
	PerDetectorDeltaBytes map[string]uint64 `json:"per_detector_delta_bytes"`
}

// ScanJSON is the top-level JSON document for `heft scan --json`.
type ScanJSON struct {
	RunID            string           `json:"run_id"`
	ScannedAt        time.Time        `json:"scanned_at"`
	DurationMs       int64            `json:"duration_ms"`
	Entries          []EntryJSON      `json:"entries"`
	TotalBytes       uint64           `json:"total_bytes"`
	ReclaimableBytes uint64           `json:"reclaimable_bytes"`
	DetectorTimings  map[string]int64 `json:"detector_timings"`
	Memory           MemoryJSON       `json:"memory"`
	Diagnostics      []string         `json:"diagnostics,omitempty"`
}

// NewScanJSON builds a ScanJSON document from a flat entry list plus the
// orchestrator's per-detector timing and memory-delta diagnostics. timings
// and mem may be zero-valued (e.g. when replaying a persisted snapshot,
// which does not store them) and still marshal detector_timings/memory as
// empty objects rather than null.
func NewScanJSON(runID string, scannedAt time.Time, durationMs int64, entries []bloat.Entry, timings map[string]time.Duration, mem orchestrator.Memory, diagnostics []string) ScanJSON {
	doc := ScanJSON{
		RunID:           runID,
		ScannedAt:       scannedAt,
		DurationMs:      durationMs,
		Diagnostics:     diagnostics,
		DetectorTimings: make(map[string]int64, len(timings)),
		Memory: MemoryJSON{
			PeakRSSBytes:          mem.PeakHeapBytes,
			PerDetectorDeltaBytes: make(map[string]uint64, len(mem.PerDetectorDeltas)),
		},
	}
	for name, d := range timings {
		doc.DetectorTimings[name] = d.Milliseconds()
	}
	for name, delta := range mem.PerDetectorDeltas {
		doc.Memory.PerDetectorDeltaBytes[name] = delta
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, toEntryJSON(e))
		doc.TotalBytes, _ = numeric.AddSaturatingUint64(doc.TotalBytes, e.SizeBytes)
		doc.ReclaimableBytes, _ = numeric.AddSaturatingUint64(doc.ReclaimableBytes, e.ReclaimableBytes)
	}
	return doc
}

// WriteJSON marshals v as indented JSON to w.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ChangeJSON is the wire shape of one diff.Change.
type ChangeJSON struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	FromSize uint64 `json:"from_size_bytes"`
	ToSize   uint64 `json:"to_size_bytes"`
	Delta    int64  `json:"delta_bytes"`
}

// DiffJSON is the top-level JSON document for `heft diff --json`.
type DiffJSON struct {
	Changes []ChangeJSON `json:"changes"`
}

// NewDiffJSON builds a DiffJSON document from a classified change list.
func NewDiffJSON(changes []diff.Change) DiffJSON {
	doc := DiffJSON{}
	for _, c := range changes {
		doc.Changes = append(doc.Changes, ChangeJSON{
			Category: c.Category.String(),
			Name:     c.Name,
			Status:   c.Status.String(),
			FromSize: c.FromSize,
			ToSize:   c.ToSize,
			Delta:    c.Delta,
		})
	}
	return doc
}
