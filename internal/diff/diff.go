// Package diff implements the diff engine (C9): matching entries across two
// snapshots by (category, name) and classifying them into grew, shrank, new,
// or gone.
package diff

import (
	"sort"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/numeric"
)

// Status classifies one diff entry.
type Status uint8

const (
	Grew Status = iota
	Shrank
	New
	Gone
)

func (s Status) String() string {
	switch s {
	case Grew:
		return "grew"
	case Shrank:
		return "shrank"
	case New:
		return "new"
	case Gone:
		return "gone"
	default:
		return "unknown"
	}
}

// Change is one classified entry difference between two snapshots.
type Change struct {
	Category bloat.Category
	Name     string
	Status   Status
	FromSize uint64
	ToSize   uint64
	Delta    int64 // signed, positive for growth
}

func key(category bloat.Category, name string) string {
	return category.String() + ":" + name
}

// Compute classifies every entry present in either from or to.
func Compute(from, to []bloat.Entry) []Change {
	fromByKey := make(map[string]bloat.Entry, len(from))
	for _, e := range from {
		fromByKey[key(e.Category, e.Name)] = e
	}
	toByKey := make(map[string]bloat.Entry, len(to))
	for _, e := range to {
		toByKey[key(e.Category, e.Name)] = e
	}

	var changes []Change

	for k, fromEntry := range fromByKey {
		toEntry, ok := toByKey[k]
		if !ok {
			changes = append(changes, Change{
				Category: fromEntry.Category,
				Name:     fromEntry.Name,
				Status:   Gone,
				FromSize: fromEntry.SizeBytes,
				Delta:    numeric.DeltaSigned(fromEntry.SizeBytes, 0),
			})
			continue
		}
		if toEntry.SizeBytes == fromEntry.SizeBytes {
			continue
		}
		status := Grew
		if toEntry.SizeBytes < fromEntry.SizeBytes {
			status = Shrank
		}
		changes = append(changes, Change{
			Category: fromEntry.Category,
			Name:     fromEntry.Name,
			Status:   status,
			FromSize: fromEntry.SizeBytes,
			ToSize:   toEntry.SizeBytes,
			Delta:    numeric.DeltaSigned(fromEntry.SizeBytes, toEntry.SizeBytes),
		})
	}

	for k, toEntry := range toByKey {
		if _, ok := fromByKey[k]; ok {
			continue
		}
		changes = append(changes, Change{
			Category: toEntry.Category,
			Name:     toEntry.Name,
			Status:   New,
			ToSize:   toEntry.SizeBytes,
			Delta:    numeric.DeltaSigned(0, toEntry.SizeBytes),
		})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Category != changes[j].Category {
			return changes[i].Category < changes[j].Category
		}
		return absInt64(changes[i].Delta) > absInt64(changes[j].Delta)
	})

	return changes
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
