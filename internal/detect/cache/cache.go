// Package cache implements the package-cache detector: a static table of
// per-OS tool cache locations, each probed for existence and sized, plus a
// spawn+poll+timeout probe for Homebrew's cache on platforms that have it.
package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/heftdev/heft/internal/bloat"
	"github.com/heftdev/heft/internal/platform"
	"github.com/heftdev/heft/internal/sizer"
)

const detectorName = "package-cache"

var tools = []struct {
	key      string
	label    string
	category bloat.Category
}{
	{"npm", "npm cache", bloat.PackageCache},
	{"yarn", "yarn cache", bloat.PackageCache},
	{"pnpm", "pnpm store", bloat.PackageCache},
	{"pip", "pip cache", bloat.PackageCache},
	{"cargo-registry", "cargo registry", bloat.PackageCache},
	{"cargo-git", "cargo git checkouts", bloat.PackageCache},
	{"go-modcache", "go module cache", bloat.PackageCache},
	{"gradle", "gradle cache", bloat.PackageCache},
	{"maven", "maven repository", bloat.PackageCache},
	{"vscode", "vscode application data", bloat.IdeData},
}

// Detector is the package-cache detector (C4).
type Detector struct {
	Sizer *sizer.Sizer
}

func New() *Detector {
	return &Detector{Sizer: sizer.New(4)}
}

func (d *Detector) Name() string { return detectorName }

func (d *Detector) Available(cfg *bloat.Config) bool { return !cfg.Disable(detectorName) }

func (d *Detector) Scan(ctx context.Context, cfg *bloat.Config) bloat.DetectorResult {
	var result bloat.DetectorResult

	for _, tool := range tools {
		path, ok := cfg.CacheOverrides[tool.key]
		if !ok {
			path, ok = cfg.Platform.CachePath(tool.key)
		}
		if !ok {
			continue
		}
		if info, err := os.Stat(path); err != nil || !info.IsDir() {
			continue
		}

		size, diags := d.Sizer.Size(ctx, path)
		result.Diagnostics = append(result.Diagnostics, diags...)
		result.Entries = append(result.Entries, bloat.Entry{
			Category:         tool.category,
			Name:             tool.label,
			Path:             path,
			Kind:             bloat.KindFilesystemPath,
			SizeBytes:        size,
			ReclaimableBytes: size,
			DetectorOrigin:   detectorName,
		})
	}

	if size, diag, ok := d.homebrewCache(ctx, cfg); ok {
		result.Entries = append(result.Entries, bloat.Entry{
			Category:         bloat.PackageCache,
			Name:             "homebrew cache",
			Path:             size.path,
			Kind:             bloat.KindFilesystemPath,
			SizeBytes:        size.bytes,
			ReclaimableBytes: size.bytes,
			DetectorOrigin:   detectorName,
		})
	} else if diag != "" {
		result.Diagnostics = append(result.Diagnostics, diag)
	}

	return result
}

type homebrewResult struct {
	path  string
	bytes uint64
}

// homebrewCache shells out to `brew --cache` using spawn+poll+timeout —
// never a blocking Output() call — so a hung brew invocation cannot stall
// the whole scan.
func (d *Detector) homebrewCache(ctx context.Context, cfg *bloat.Config) (homebrewResult, string, bool) {
	if cfg.Platform.OS == platform.Windows {
		return homebrewResult{}, "", false
	}

	timeout := cfg.SubprocessTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "brew", "--cache")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return homebrewResult{}, "", false
		}
		return homebrewResult{}, fmt.Sprintf("brew --cache: %v", err), false
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return homebrewResult{}, "", false
		}
	case <-runCtx.Done():
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
		<-done
		return homebrewResult{}, "brew --cache timed out", false
	}

	path := trimTrailingNewline(stdout.String())
	if path == "" {
		return homebrewResult{}, "", false
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return homebrewResult{}, "", false
	}

	size, diags := d.Sizer.Size(ctx, path)
	_ = diags
	return homebrewResult{path: path, bytes: size}, "", true
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}
