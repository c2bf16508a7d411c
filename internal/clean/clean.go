// Package clean implements the cleanup engine: pre-flight path validation,
// interactive/dry-run/yes execution modes, and typed delegation to external
// tools for aggregate Docker objects that have no single filesystem path.
package clean

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/platform"
)

// Mode selects how approved entries are handled.
type Mode uint8

const (
	Interactive Mode = iota
	DryRun
	Yes
)

// Result summarizes what a Clean invocation did.
type Result struct {
	Deleted    []string
	Errors     []string
	BytesFreed uint64
}

// Engine validates and deletes BloatEntries.
type Engine struct {
	Platform *platform.Platform
}

func New(p *platform.Platform) *Engine {
	return &Engine{Platform: p}
}

// Run filters entries to the requested categories, confirms per-category in
// Interactive mode, and deletes (or, in DryRun, only reports) approved
// entries.
func (e *Engine) Run(ctx context.Context, entries []bloat.Entry, mode Mode, categories map[bloat.Category]bool, in io.Reader, out io.Writer) Result {
	var result Result

	grouped := map[bloat.Category][]bloat.Entry{}
	var order []bloat.Category
	for _, entry := range entries {
		if categories != nil && len(categories) > 0 && !categories[entry.Category] {
			continue
		}
		if _, ok := grouped[entry.Category]; !ok {
			order = append(order, entry.Category)
		}
		grouped[entry.Category] = append(grouped[entry.Category], entry)
	}

	reader := bufio.NewReader(in)

	for _, cat := range order {
		group := grouped[cat]
		var total uint64
		for _, e := range group {
			total += e.ReclaimableBytes
		}

		approved := true
		switch mode {
		case Interactive:
			if !isInteractiveCapable(in) {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: refusing to delete non-interactively; pass --yes or --dry-run", cat))
				continue
			}
			fmt.Fprintf(out, "%s: %d item(s), %d bytes reclaimable. Delete? [y/N] ", cat, len(group), total)
			line, _ := reader.ReadString('\n')
			approved = strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "y")
		case DryRun:
			approved = true
		case Yes:
			approved = true
		}

		if !approved {
			continue
		}

		for _, entry := range group {
			if mode == DryRun {
				fmt.Fprintf(out, "would delete %s (%s, %d bytes)\n", entry.Path, entry.Name, entry.ReclaimableBytes)
				result.BytesFreed += entry.ReclaimableBytes
				continue
			}

			if err := e.deleteEntry(ctx, entry); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Path, err))
				continue
			}
			result.Deleted = append(result.Deleted, entry.Path)
			result.BytesFreed += entry.ReclaimableBytes
		}
	}

	return result
}

func (e *Engine) deleteEntry(ctx context.Context, entry bloat.Entry) error {
	switch entry.Kind {
	case bloat.KindFilesystemPath:
		if err := ValidatePath(entry.Path, e.Platform); err != nil {
			return err
		}
		return os.RemoveAll(entry.Path)

	case bloat.KindDockerImages:
		return runPrune(ctx, "image", "prune", "-a", "-f")
	case bloat.KindDockerContainers:
		return runPrune(ctx, "container", "prune", "-f")
	case bloat.KindDockerVolumes:
		return runPrune(ctx, "volume", "prune", "-f")
	case bloat.KindDockerBuildCache:
		return runPrune(ctx, "builder", "prune", "-a", "-f")
	case bloat.KindVMDiskImage:
		return fmt.Errorf("reclaiming the docker desktop vm disk image requires compacting it through docker desktop, not a file deletion")
	default:
		return fmt.Errorf("unsupported entry kind")
	}
}

// pruneTimeout bounds each docker prune invocation; on expiry the child is
// killed and reaped by exec.CommandContext.
const pruneTimeout = 30 * time.Second

func runPrune(ctx context.Context, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, pruneTimeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, "docker", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("docker %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ValidatePath runs the five pre-flight checks required before any
// filesystem deletion. It re-checks existence and directory-ness itself
// (check 5), so callers should call it immediately before RemoveAll rather
// than caching its result.
func ValidatePath(path string, p *platform.Platform) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path is not absolute: %s", path)
	}

	home := filepath.Clean(p.Home())
	clean := filepath.Clean(path)
	if clean == home {
		return fmt.Errorf("refusing to delete the home directory")
	}

	parent := filepath.Dir(clean)
	realParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return fmt.Errorf("resolve parent %s: %w", parent, err)
	}
	temp := filepath.Clean(p.Temp())
	if !hasPrefix(realParent, home) && !hasPrefix(realParent, temp) {
		return fmt.Errorf("path %s is not under home or temp", path)
	}

	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to delete a symlink: %s", path)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	return nil
}

func hasPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+string(filepath.Separator))
}

func isInteractiveCapable(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
